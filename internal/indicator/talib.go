package indicator

import (
	"context"
	"fmt"

	"github.com/markcheno/go-talib"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
)

// Talib implements contracts.IndicatorPort with go-talib
// ⭐ SSOT: 볼린저/RS 계산은 여기서만
type Talib struct{}

// New creates the talib indicator adapter
func New() *Talib {
	return &Talib{}
}

// BollingerBands returns SMA-based bands aligned to bars
func (t *Talib) BollingerBands(ctx context.Context, code string, period int, stdDev float64, bars contracts.Bars) ([]contracts.Band, error) {
	if period < 2 || len(bars) < period {
		return nil, fmt.Errorf("bollinger %s: %d bars for period %d: %w", code, len(bars), period, contracts.ErrDataInsufficient)
	}

	upper, middle, lower := talib.BBands(bars.Closes(), period, stdDev, stdDev, talib.SMA)

	bands := make([]contracts.Band, len(bars))
	for i := range bars {
		bands[i] = contracts.Band{
			Upper:  upper[i],
			Middle: middle[i],
			Lower:  lower[i],
			Valid:  i >= period-1,
		}
	}
	return bands, nil
}

// RelativeStrength returns the trailing rate of change (%) over periodDays
func (t *Talib) RelativeStrength(ctx context.Context, code string, periodDays int, bars contracts.Bars) (contracts.RelativeStrength, error) {
	if periodDays <= 0 || len(bars) <= periodDays {
		return contracts.RelativeStrength{}, fmt.Errorf("relative strength %s: %d bars for %d days: %w",
			code, len(bars), periodDays, contracts.ErrDataInsufficient)
	}

	roc := talib.Roc(bars.Closes(), periodDays)
	return contracts.RelativeStrength{ReturnPct: roc[len(roc)-1]}, nil
}

// SMA returns the simple moving average series; entries before the lookback are 0
func SMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	return talib.Sma(values, period)
}

// LastSMA returns the most recent SMA value
func LastSMA(values []float64, period int) (float64, bool) {
	series := SMA(values, period)
	if len(series) == 0 {
		return 0, false
	}
	return series[len(series)-1], true
}

// TrailingSMA returns the last n SMA values (oldest first)
func TrailingSMA(values []float64, period, n int) ([]float64, bool) {
	if n <= 0 || len(values) < period+n-1 {
		return nil, false
	}
	series := SMA(values, period)
	return series[len(series)-n:], true
}
