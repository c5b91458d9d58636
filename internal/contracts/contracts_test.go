package contracts

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchlistItem_ApplyScores(t *testing.T) {
	item := WatchlistItem{Code: "005930"}
	item.ApplyScores(50, 30)
	assert.Equal(t, 80.0, item.TotalScore)

	item.ApplyScores(0, 30)
	assert.Equal(t, item.RSScore+item.ProfitGrowthScore, item.TotalScore)
}

func TestWatchlistItem_TurnoverRatio(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		marketCap int64
		want      float64
	}{
		{"normal", 1_000_000_000, 100_000_000_000, 0.01},
		{"zero market cap", 1_000_000_000, 0, 0},
		{"negative market cap", 1_000_000_000, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := WatchlistItem{AvgTradingValue5D: tt.value, MarketCap: tt.marketCap}
			assert.InDelta(t, tt.want, item.TurnoverRatio(), 1e-12)
		})
	}
}

func TestSortByRank(t *testing.T) {
	items := []WatchlistItem{
		{Code: "A", TotalScore: 30, AvgTradingValue5D: 1, MarketCap: 100},
		{Code: "B", TotalScore: 80, AvgTradingValue5D: 1, MarketCap: 100},
		{Code: "C", TotalScore: 30, AvgTradingValue5D: 5, MarketCap: 100},
		{Code: "D", TotalScore: 30, AvgTradingValue5D: 5, MarketCap: 0},
	}

	SortByRank(items)

	codes := make([]string, len(items))
	for i, it := range items {
		codes[i] = it.Code
	}
	assert.Equal(t, []string{"B", "C", "A", "D"}, codes)
}

func TestWatchlist_Ranked(t *testing.T) {
	wl := Watchlist{
		"X": {Code: "X", TotalScore: 0},
		"Y": {Code: "Y", TotalScore: 50},
	}
	ranked := wl.Ranked()
	require.Len(t, ranked, 2)
	assert.Equal(t, "Y", ranked[0].Code)
}

func TestBars_Before(t *testing.T) {
	bars := Bars{{Date: "20240103", Close: 1}, {Date: "20240104", Close: 2}, {Date: "20240105", Close: 3}}
	assert.Equal(t, []float64{1, 2}, bars.Before("20240105").Closes())
	assert.Empty(t, bars.Before("20240101"))
	assert.Len(t, bars.Before("20240106"), 3)
}

func TestBars_Tail(t *testing.T) {
	bars := Bars{{Close: 1}, {Close: 2}, {Close: 3}}
	assert.Equal(t, []float64{2, 3}, bars.Tail(2).Closes())
	assert.Len(t, bars.Tail(10), 3)
}

func TestRejection_Unwrap(t *testing.T) {
	err := fmt.Errorf("analyze: %w", Reject("005930", RejectTrend, ErrFilteredOut, "close %d <= ma20 %.0f", 100, 110.0))

	assert.True(t, errors.Is(err, ErrFilteredOut))
	assert.False(t, errors.Is(err, ErrUpstreamUnavailable))

	r, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectTrend, r.Reason)
	assert.Contains(t, r.Error(), "close 100 <= ma20 110")
}

func TestParseMarket(t *testing.T) {
	m, ok := ParseMarket("kosdaq")
	assert.True(t, ok)
	assert.Equal(t, MarketKOSDAQ, m)

	_, ok = ParseMarket("nyse")
	assert.False(t, ok)
}
