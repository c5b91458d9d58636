package strategy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
	"github.com/kyungsooNa/Investment-sub000/internal/strategyconfig"
)

func TestScan_BreakoutBuy(t *testing.T) {
	env := newTestEnv(t, breakoutItem("005930"))
	env.md.quotes["005930"] = breakoutQuote("005930")
	s := env.strategy(t, defaultStrategyConfig())

	signals := s.Scan(context.Background())

	require.Len(t, signals, 1)
	sig := signals[0]
	assert.Equal(t, contracts.ActionBuy, sig.Action)
	assert.Equal(t, "005930", sig.Code)
	assert.Equal(t, int64(71_000), sig.Price)
	assert.Equal(t, int64(14), sig.Quantity)
	assert.Equal(t, contracts.MarketKOSPI, sig.Market)
	assert.NotEmpty(t, sig.ID)
	assert.Contains(t, sig.Reason, "돌파 매수")

	pos, ok := s.Positions()["005930"]
	require.True(t, ok)
	assert.Equal(t, contracts.PositionState{
		EntryPrice:    71_000,
		EntryDate:     "20240105",
		PeakPrice:     71_000,
		BreakoutLevel: 70_000,
	}, pos)
}

func TestScan_HeldSymbolSkipped(t *testing.T) {
	env := newTestEnv(t, breakoutItem("005930"))
	env.md.quotes["005930"] = breakoutQuote("005930")
	s := env.strategy(t, defaultStrategyConfig())

	require.Len(t, s.Scan(context.Background()), 1)
	assert.Empty(t, s.Scan(context.Background()), "held symbol must not be re-entered")
}

func TestScan_AtSessionOpen(t *testing.T) {
	env := newTestEnv(t, breakoutItem("005930"))
	env.md.quotes["005930"] = breakoutQuote("005930")
	env.clock = clockAt(9, 0)
	s := env.strategy(t, defaultStrategyConfig())

	assert.Empty(t, s.Scan(context.Background()))
	assert.Empty(t, s.Positions())
}

func TestScan_EntryConditions(t *testing.T) {
	tests := []struct {
		name    string
		cfg     func(*strategyconfig.StrategyConfig)
		item    func(*contracts.WatchlistItem)
		quote   func(*contracts.Quote)
		timing  bool
		wantBuy bool
	}{
		{name: "all conditions", timing: true, wantBuy: true},
		{name: "market timing off", timing: false, wantBuy: false},
		{
			name:    "price equal to 20d high",
			quote:   func(q *contracts.Quote) { q.Price = 70_000 },
			timing:  true,
			wantBuy: false,
		},
		{
			name:    "projected volume exactly at threshold",
			quote:   func(q *contracts.Quote) { q.CumulativeVolume = 75_000 },
			timing:  true,
			wantBuy: true,
		},
		{
			name:    "projected volume below threshold",
			quote:   func(q *contracts.Quote) { q.CumulativeVolume = 74_999 },
			timing:  true,
			wantBuy: false,
		},
		{
			name:    "program buy at floor",
			quote:   func(q *contracts.Quote) { q.NetProgramBuyQty = 0 },
			timing:  true,
			wantBuy: false,
		},
		{
			name:    "program net selling",
			quote:   func(q *contracts.Quote) { q.NetProgramBuyQty = -500 },
			timing:  true,
			wantBuy: false,
		},
		{
			name:    "squeeze required and at tolerance",
			cfg:     func(c *strategyconfig.StrategyConfig) { c.Variant = strategyconfig.VariantSqueezeBreakout },
			item:    func(it *contracts.WatchlistItem) { it.BBWidthLatest = 6 },
			timing:  true,
			wantBuy: true,
		},
		{
			name:    "squeeze required and too wide",
			cfg:     func(c *strategyconfig.StrategyConfig) { c.Variant = strategyconfig.VariantSqueezeBreakout },
			item:    func(it *contracts.WatchlistItem) { it.BBWidthLatest = 6.1 },
			timing:  true,
			wantBuy: false,
		},
		{
			name:    "squeeze ignored by breakout variant",
			item:    func(it *contracts.WatchlistItem) { it.BBWidthLatest = 20 },
			timing:  true,
			wantBuy: true,
		},
		{
			name: "program value filter passes",
			cfg: func(c *strategyconfig.StrategyConfig) {
				c.Entry.ProgramValueFilter = true
				c.Entry.ProgramValuePctOfTrading = 0.3
				c.Entry.ProgramValuePctOfMarketCap = 0.005
			},
			timing:  true,
			wantBuy: true,
		},
		{
			name: "program value below traded value ratio",
			cfg: func(c *strategyconfig.StrategyConfig) {
				c.Entry.ProgramValueFilter = true
				c.Entry.ProgramValuePctOfTrading = 1
			},
			timing:  true,
			wantBuy: false,
		},
		{
			name: "program value below market cap ratio",
			cfg: func(c *strategyconfig.StrategyConfig) {
				c.Entry.ProgramValueFilter = true
				c.Entry.ProgramValuePctOfMarketCap = 0.01
			},
			timing:  true,
			wantBuy: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := breakoutItem("005930")
			if tt.item != nil {
				tt.item(&item)
			}
			quote := breakoutQuote("005930")
			if tt.quote != nil {
				tt.quote(&quote)
			}
			cfg := defaultStrategyConfig()
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}

			env := newTestEnv(t, item)
			env.md.quotes["005930"] = quote
			env.universe.timing[contracts.MarketKOSPI] = tt.timing
			s := env.strategy(t, cfg)

			signals := s.Scan(context.Background())

			if tt.wantBuy {
				require.Len(t, signals, 1)
				assert.Contains(t, s.Positions(), "005930")
			} else {
				assert.Empty(t, signals)
				assert.NotContains(t, s.Positions(), "005930")
			}
		})
	}
}

func TestScan_QuoteFailureSkipsOnlyThatSymbol(t *testing.T) {
	env := newTestEnv(t, breakoutItem("005930"), breakoutItem("000660"))
	env.md.quotes["000660"] = breakoutQuote("000660")
	s := env.strategy(t, defaultStrategyConfig())

	signals := s.Scan(context.Background())

	require.Len(t, signals, 1)
	assert.Equal(t, "000660", signals[0].Code)
}

func TestScan_FixedSizing(t *testing.T) {
	env := newTestEnv(t, breakoutItem("005930"))
	env.md.quotes["005930"] = breakoutQuote("005930")
	cfg := defaultStrategyConfig()
	cfg.Sizing.Mode = strategyconfig.SizingFixed
	cfg.Sizing.FixedQty = 7
	s := env.strategy(t, cfg)

	signals := s.Scan(context.Background())

	require.Len(t, signals, 1)
	assert.Equal(t, int64(7), signals[0].Quantity)
}
