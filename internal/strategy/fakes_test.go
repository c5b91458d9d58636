package strategy

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
	"github.com/kyungsooNa/Investment-sub000/internal/marketclock"
	"github.com/kyungsooNa/Investment-sub000/internal/strategyconfig"
	"github.com/kyungsooNa/Investment-sub000/pkg/logger"
)

var errQuote = errors.New("quote 500")

// fakeUniverse is a static WatchlistSource
type fakeUniverse struct {
	watchlist contracts.Watchlist
	timing    map[contracts.Market]bool
}

func newFakeUniverse(items ...contracts.WatchlistItem) *fakeUniverse {
	w := contracts.Watchlist{}
	for _, it := range items {
		w[it.Code] = it
	}
	return &fakeUniverse{
		watchlist: w,
		timing:    map[contracts.Market]bool{contracts.MarketKOSPI: true, contracts.MarketKOSDAQ: true},
	}
}

func (f *fakeUniverse) GetWatchlist(ctx context.Context) contracts.Watchlist {
	return f.watchlist
}

func (f *fakeUniverse) IsMarketTimingOk(ctx context.Context, market contracts.Market) bool {
	return f.timing[market]
}

func (f *fakeUniverse) Current() contracts.Watchlist {
	return f.watchlist
}

// fakeDirectory answers IsKosdaq from a fixed table
type fakeDirectory struct {
	kosdaq map[string]bool
}

func (f *fakeDirectory) AllListed(ctx context.Context) ([]contracts.ListedSymbol, error) {
	return nil, nil
}

func (f *fakeDirectory) IsKosdaq(ctx context.Context, code string) (bool, error) {
	k, ok := f.kosdaq[code]
	if !ok {
		return false, contracts.ErrDataInsufficient
	}
	return k, nil
}

// fakeMarketData serves quotes and bars only
type fakeMarketData struct {
	mu       sync.Mutex
	quotes   map[string]contracts.Quote
	bars     map[string]contracts.Bars
	barCalls map[string]int
}

func newFakeMarketData() *fakeMarketData {
	return &fakeMarketData{
		quotes:   map[string]contracts.Quote{},
		bars:     map[string]contracts.Bars{},
		barCalls: map[string]int{},
	}
}

func (f *fakeMarketData) CurrentQuote(ctx context.Context, code string) (contracts.Quote, error) {
	q, ok := f.quotes[code]
	if !ok {
		return contracts.Quote{}, errQuote
	}
	return q, nil
}

func (f *fakeMarketData) RecentDailyBars(ctx context.Context, code string, limit int) (contracts.Bars, error) {
	f.mu.Lock()
	f.barCalls[code]++
	f.mu.Unlock()
	return f.bars[code].Tail(limit), nil
}

func (f *fakeMarketData) TopTradedValue(ctx context.Context) ([]contracts.RankedSymbol, error) {
	return nil, nil
}

func (f *fakeMarketData) TopGainers(ctx context.Context) ([]contracts.RankedSymbol, error) {
	return nil, nil
}

func (f *fakeMarketData) TopVolume(ctx context.Context) ([]contracts.RankedSymbol, error) {
	return nil, nil
}

func (f *fakeMarketData) FinancialRatio(ctx context.Context, code string) (contracts.FinancialRatio, error) {
	return contracts.FinancialRatio{}, nil
}

// clockAt returns a fixed clock on Friday 2024-01-05 (KST)
func clockAt(hour, min int) *marketclock.Fixed {
	return marketclock.NewFixed(time.Date(2024, 1, 5, hour, min, 0, 0, marketclock.Seoul()))
}

// dailyBars builds n consecutive calendar-day bars starting at from
func dailyBars(from string, n int, close, high, low, volume int64) contracts.Bars {
	start, err := time.ParseInLocation(marketclock.DateLayout, from, marketclock.Seoul())
	if err != nil {
		panic(err)
	}
	bars := make(contracts.Bars, n)
	for i := 0; i < n; i++ {
		bars[i] = contracts.Bar{
			Date:   start.AddDate(0, 0, i).Format(marketclock.DateLayout),
			Open:   close,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: volume,
		}
	}
	return bars
}

// breakoutItem is the reference watchlist entry: high20 70,000 / avg vol 100,000
func breakoutItem(code string) contracts.WatchlistItem {
	return contracts.WatchlistItem{
		Code:          code,
		Name:          "테스트" + code,
		Market:        contracts.MarketKOSPI,
		High20D:       70_000,
		AvgVol20D:     100_000,
		BBWidthMin20:  5,
		BBWidthLatest: 5.5,
		MarketCap:     1_000_000_000_000,
	}
}

// breakoutQuote passes every entry condition at a 50% elapsed session
func breakoutQuote(code string) contracts.Quote {
	return contracts.Quote{
		Code:                   code,
		Price:                  71_000,
		CumulativeVolume:       200_000,
		CumulativeTradingValue: 14_200_000_000,
		NetProgramBuyQty:       1_000,
		NetProgramBuyValue:     71_000_000,
	}
}

type testEnv struct {
	universe *fakeUniverse
	md       *fakeMarketData
	dir      *fakeDirectory
	clock    *marketclock.Fixed
	path     string
}

func newTestEnv(t *testing.T, items ...contracts.WatchlistItem) *testEnv {
	return &testEnv{
		universe: newFakeUniverse(items...),
		md:       newFakeMarketData(),
		dir:      &fakeDirectory{kosdaq: map[string]bool{}},
		clock:    clockAt(12, 15),
		path:     filepath.Join(t.TempDir(), "positions.json"),
	}
}

func (e *testEnv) strategy(t *testing.T, cfg strategyconfig.StrategyConfig) *Breakout {
	t.Helper()
	s, err := New(cfg, Deps{
		Universe:   e.universe,
		MarketData: e.md,
		Clock:      e.clock,
		StatePath:  e.path,
		Directory:  e.dir,
	}, logger.NewNop())
	require.NoError(t, err)
	return s
}

func defaultStrategyConfig() strategyconfig.StrategyConfig {
	return strategyconfig.Default().Strategy
}

func variantConfig(variant string) strategyconfig.StrategyConfig {
	cfg := defaultStrategyConfig()
	cfg.Variant = variant
	return cfg
}
