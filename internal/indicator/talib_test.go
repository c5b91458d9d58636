package indicator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
)

func barsFromCloses(closes ...int64) contracts.Bars {
	bars := make(contracts.Bars, len(closes))
	for i, c := range closes {
		bars[i] = contracts.Bar{Close: c, High: c, Low: c, Open: c, Volume: 1}
	}
	return bars
}

func TestBollingerBands_FlatSeriesHasZeroWidth(t *testing.T) {
	closes := make([]int64, 25)
	for i := range closes {
		closes[i] = 1000
	}

	bands, err := New().BollingerBands(context.Background(), "T", 20, 2, barsFromCloses(closes...))
	require.NoError(t, err)
	require.Len(t, bands, 25)

	assert.False(t, bands[18].Valid)
	assert.True(t, bands[19].Valid)
	assert.InDelta(t, 1000, bands[24].Middle, 1e-9)
	assert.InDelta(t, 0, bands[24].Width(), 1e-9)
}

func TestBollingerBands_WidensWithVolatility(t *testing.T) {
	closes := make([]int64, 0, 40)
	for i := 0; i < 20; i++ {
		closes = append(closes, 1000)
	}
	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			closes = append(closes, 1100)
		} else {
			closes = append(closes, 900)
		}
	}

	bands, err := New().BollingerBands(context.Background(), "T", 20, 2, barsFromCloses(closes...))
	require.NoError(t, err)
	assert.Greater(t, bands[39].Width(), bands[19].Width())
}

func TestBollingerBands_Insufficient(t *testing.T) {
	_, err := New().BollingerBands(context.Background(), "T", 20, 2, barsFromCloses(1, 2, 3))
	assert.True(t, errors.Is(err, contracts.ErrDataInsufficient))
}

func TestRelativeStrength(t *testing.T) {
	rs, err := New().RelativeStrength(context.Background(), "T", 2, barsFromCloses(100, 110, 120))
	require.NoError(t, err)
	assert.InDelta(t, 20.0, rs.ReturnPct, 1e-9)

	_, err = New().RelativeStrength(context.Background(), "T", 3, barsFromCloses(100, 110, 120))
	assert.True(t, errors.Is(err, contracts.ErrDataInsufficient))
}

func TestSMAHelpers(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	last, ok := LastSMA(values, 3)
	require.True(t, ok)
	assert.InDelta(t, 4.0, last, 1e-9)

	trail, ok := TrailingSMA(values, 3, 3)
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{2, 3, 4}, trail, 1e-9)

	_, ok = TrailingSMA(values, 3, 4)
	assert.False(t, ok)

	_, ok = LastSMA(values, 6)
	assert.False(t, ok)
}
