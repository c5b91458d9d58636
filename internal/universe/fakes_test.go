package universe

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
	"github.com/kyungsooNa/Investment-sub000/internal/indicator"
	"github.com/kyungsooNa/Investment-sub000/internal/marketclock"
	"github.com/kyungsooNa/Investment-sub000/internal/strategyconfig"
	"github.com/kyungsooNa/Investment-sub000/pkg/logger"
)

var errUpstream = errors.New("upstream 500")

// fakeMarketData is an in-memory MarketDataPort
type fakeMarketData struct {
	mu sync.Mutex

	bars     map[string]contracts.Bars
	barsErr  map[string]error
	quotes   map[string]contracts.Quote
	quoteErr map[string]error
	ratios   map[string]contracts.FinancialRatio
	ratioErr map[string]error

	tradedValue, gainers, volume          []contracts.RankedSymbol
	tradedValueErr, gainersErr, volumeErr error

	barCalls     map[string]int
	rankingCalls int
}

func newFakeMarketData() *fakeMarketData {
	return &fakeMarketData{
		bars:     map[string]contracts.Bars{},
		barsErr:  map[string]error{},
		quotes:   map[string]contracts.Quote{},
		quoteErr: map[string]error{},
		ratios:   map[string]contracts.FinancialRatio{},
		ratioErr: map[string]error{},
		barCalls: map[string]int{},
	}
}

func (f *fakeMarketData) CurrentQuote(ctx context.Context, code string) (contracts.Quote, error) {
	if err := f.quoteErr[code]; err != nil {
		return contracts.Quote{}, err
	}
	q, ok := f.quotes[code]
	if !ok {
		return contracts.Quote{}, errUpstream
	}
	return q, nil
}

func (f *fakeMarketData) RecentDailyBars(ctx context.Context, code string, limit int) (contracts.Bars, error) {
	f.mu.Lock()
	f.barCalls[code]++
	f.mu.Unlock()

	if err := f.barsErr[code]; err != nil {
		return nil, err
	}
	return f.bars[code].Tail(limit), nil
}

func (f *fakeMarketData) TopTradedValue(ctx context.Context) ([]contracts.RankedSymbol, error) {
	f.mu.Lock()
	f.rankingCalls++
	f.mu.Unlock()
	return f.tradedValue, f.tradedValueErr
}

func (f *fakeMarketData) TopGainers(ctx context.Context) ([]contracts.RankedSymbol, error) {
	return f.gainers, f.gainersErr
}

func (f *fakeMarketData) TopVolume(ctx context.Context) ([]contracts.RankedSymbol, error) {
	return f.volume, f.volumeErr
}

func (f *fakeMarketData) FinancialRatio(ctx context.Context, code string) (contracts.FinancialRatio, error) {
	if err := f.ratioErr[code]; err != nil {
		return contracts.FinancialRatio{}, err
	}
	return f.ratios[code], nil
}

func (f *fakeMarketData) rebuilds() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rankingCalls
}

func (f *fakeMarketData) barCallsFor(code string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.barCalls[code]
}

// addHealthy registers a candidate that passes every AnalyzeCandidate filter
func (f *fakeMarketData) addHealthy(code string, step int64) {
	bars := trendBars(90, 10_000, step, 200_000)
	last := bars[len(bars)-1].Close
	f.bars[code] = bars
	f.quotes[code] = contracts.Quote{
		Code:      code,
		Price:     last,
		MarketCap: 500_000_000_000,
		W52High:   last + last/20,
	}
}

// fakeIndicators wraps the real talib adapter with error injection
type fakeIndicators struct {
	*indicator.Talib
	rsErr error
}

func newFakeIndicators() *fakeIndicators {
	return &fakeIndicators{Talib: indicator.New()}
}

func (f *fakeIndicators) RelativeStrength(ctx context.Context, code string, periodDays int, bars contracts.Bars) (contracts.RelativeStrength, error) {
	if f.rsErr != nil {
		return contracts.RelativeStrength{}, f.rsErr
	}
	return f.Talib.RelativeStrength(ctx, code, periodDays, bars)
}

// fakeDirectory is an in-memory SymbolDirectory
type fakeDirectory struct {
	listed  []contracts.ListedSymbol
	kosdaq  map[string]bool
	listErr error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{kosdaq: map[string]bool{}}
}

func (f *fakeDirectory) AllListed(ctx context.Context) ([]contracts.ListedSymbol, error) {
	return f.listed, f.listErr
}

func (f *fakeDirectory) IsKosdaq(ctx context.Context, code string) (bool, error) {
	return f.kosdaq[code], nil
}

// trendBars builds n ascending daily bars; close_i = start + i*step
func trendBars(n int, start, step, volume int64) contracts.Bars {
	bars := make(contracts.Bars, n)
	day := time.Date(2023, 8, 1, 0, 0, 0, 0, marketclock.Seoul())
	for i := 0; i < n; i++ {
		c := start + int64(i)*step
		bars[i] = contracts.Bar{
			Date:   day.AddDate(0, 0, i).Format(marketclock.DateLayout),
			Open:   c,
			High:   c + 10,
			Low:    c - 10,
			Close:  c,
			Volume: volume,
		}
	}
	return bars
}

func fixedClockAt(hour, min int) *marketclock.Fixed {
	return marketclock.NewFixed(time.Date(2024, 1, 5, hour, min, 0, 0, marketclock.Seoul()))
}

func testUniverseConfig() strategyconfig.UniverseConfig {
	cfg := strategyconfig.Default().Universe
	cfg.Batch.ChunkDelay = 0
	return cfg
}

func newTestEngine(t *testing.T, md *fakeMarketData, ind contracts.IndicatorPort, dir *fakeDirectory, clock contracts.MarketClock) *Engine {
	return newTestEngineWith(t, testUniverseConfig(), md, ind, dir, clock)
}

func newTestEngineWith(t *testing.T, cfg strategyconfig.UniverseConfig, md *fakeMarketData, ind contracts.IndicatorPort, dir *fakeDirectory, clock contracts.MarketClock) *Engine {
	t.Helper()
	e, err := New(cfg, Deps{
		MarketData: md,
		Indicators: ind,
		Directory:  dir,
		Clock:      clock,
		PoolAPath:  filepath.Join(t.TempDir(), "pool_a.json"),
	}, logger.NewNop())
	require.NoError(t, err)
	return e
}
