package universe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
	"github.com/kyungsooNa/Investment-sub000/internal/marketclock"
)

func TestIsMarketTimingOk(t *testing.T) {
	flatThenUp := append(trendBars(40, 10_000, 0, 1), trendBars(3, 10_100, 100, 1)...)

	tests := []struct {
		name string
		bars contracts.Bars
		want bool
	}{
		{"rising ma", trendBars(40, 10_000, 10, 1), true},
		{"flat ma", trendBars(40, 10_000, 0, 1), false},
		{"falling ma", trendBars(40, 10_000, -10, 1), false},
		// MA20 + M=2 → 22 봉 필요
		{"insufficient bars", trendBars(21, 10_000, 10, 1), false},
		{"exactly enough bars", trendBars(22, 10_000, 10, 1), true},
		{"recent turn up", flatThenUp, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := newFakeMarketData()
			md.bars["069500"] = tt.bars

			e := newTestEngine(t, md, newFakeIndicators(), newFakeDirectory(), fixedClockAt(9, 30))
			assert.Equal(t, tt.want, e.IsMarketTimingOk(context.Background(), contracts.MarketKOSPI))
		})
	}
}

func TestIsMarketTimingOk_CachedPerDayPerMarket(t *testing.T) {
	md := newFakeMarketData()
	md.bars["069500"] = trendBars(40, 10_000, 10, 1)
	md.bars["229200"] = trendBars(40, 10_000, -10, 1)

	clock := fixedClockAt(9, 30)
	e := newTestEngine(t, md, newFakeIndicators(), newFakeDirectory(), clock)

	assert.True(t, e.IsMarketTimingOk(context.Background(), contracts.MarketKOSPI))
	assert.False(t, e.IsMarketTimingOk(context.Background(), contracts.MarketKOSDAQ))

	// 같은 날 데이터가 바뀌어도 캐시 유지
	md.bars["069500"] = trendBars(40, 10_000, -10, 1)
	assert.True(t, e.IsMarketTimingOk(context.Background(), contracts.MarketKOSPI))
	assert.Equal(t, 1, md.barCallsFor("069500"))

	// 다음날 재계산
	clock.Set(time.Date(2024, 1, 8, 9, 30, 0, 0, marketclock.Seoul()))
	assert.False(t, e.IsMarketTimingOk(context.Background(), contracts.MarketKOSPI))
	assert.Equal(t, 2, md.barCallsFor("069500"))
}

func TestIsMarketTimingOk_UpstreamErrorNotCached(t *testing.T) {
	md := newFakeMarketData()
	md.barsErr["069500"] = errUpstream

	e := newTestEngine(t, md, newFakeIndicators(), newFakeDirectory(), fixedClockAt(9, 30))
	assert.False(t, e.IsMarketTimingOk(context.Background(), contracts.MarketKOSPI))

	delete(md.barsErr, "069500")
	md.bars["069500"] = trendBars(40, 10_000, 10, 1)
	assert.True(t, e.IsMarketTimingOk(context.Background(), contracts.MarketKOSPI))
}

func TestIsMarketTimingOk_UnknownMarket(t *testing.T) {
	e := newTestEngine(t, newFakeMarketData(), newFakeIndicators(), newFakeDirectory(), fixedClockAt(9, 30))
	assert.False(t, e.IsMarketTimingOk(context.Background(), contracts.Market("NYSE")))
}
