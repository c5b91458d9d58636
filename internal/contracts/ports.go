package contracts

import (
	"context"
	"time"
)

// MarketDataPort provides normalized quotes, bars, rankings and financials
// ⭐ SSOT: 시세 조회 인터페이스 (KIS 어댑터, 캐시 데코레이터가 구현)
type MarketDataPort interface {
	CurrentQuote(ctx context.Context, code string) (Quote, error)
	// RecentDailyBars returns up to limit bars ordered ascending by date
	RecentDailyBars(ctx context.Context, code string, limit int) (Bars, error)
	TopTradedValue(ctx context.Context) ([]RankedSymbol, error)
	TopGainers(ctx context.Context) ([]RankedSymbol, error)
	TopVolume(ctx context.Context) ([]RankedSymbol, error)
	FinancialRatio(ctx context.Context, code string) (FinancialRatio, error)
}

// IndicatorPort computes indicator series over a given bar history
type IndicatorPort interface {
	// BollingerBands returns one Band per bar (aligned), invalid before the lookback
	BollingerBands(ctx context.Context, code string, period int, stdDev float64, bars Bars) ([]Band, error)
	RelativeStrength(ctx context.Context, code string, periodDays int, bars Bars) (RelativeStrength, error)
}

// SymbolDirectory is the full listed-symbol table
type SymbolDirectory interface {
	AllListed(ctx context.Context) ([]ListedSymbol, error)
	IsKosdaq(ctx context.Context, code string) (bool, error)
}

// MarketClock provides the current time and today's session bounds
type MarketClock interface {
	Now() time.Time
	SessionOpen() time.Time
	SessionClose() time.Time
}

// HoldingsProvider returns the currently held positions
type HoldingsProvider interface {
	Holdings(ctx context.Context) ([]Holding, error)
}

// SignalSink receives emitted signals (journal)
type SignalSink interface {
	SaveSignals(ctx context.Context, signals []TradeSignal) error
}
