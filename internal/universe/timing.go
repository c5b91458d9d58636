package universe

import (
	"context"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
	"github.com/kyungsooNa/Investment-sub000/internal/indicator"
	"github.com/kyungsooNa/Investment-sub000/internal/marketclock"
)

type timingEntry struct {
	day string
	ok  bool
}

// timingSlack: 휴장일 등으로 빠진 봉을 고려한 여유분
const timingSlack = 10

// IsMarketTimingOk reports whether the market proxy ETF's N-day SMA rose
// strictly on each of the last M comparisons. Cached once per day per market.
// Any shortfall yields false.
func (e *Engine) IsMarketTimingOk(ctx context.Context, market contracts.Market) bool {
	e.timingMu.Lock()
	defer e.timingMu.Unlock()

	today := marketclock.Today(e.clock)
	if entry, ok := e.timing[market]; ok && entry.day == today {
		return entry.ok
	}

	ok, cacheable := e.computeTiming(ctx, market)
	if cacheable {
		e.timing[market] = timingEntry{day: today, ok: ok}
	}
	return ok
}

// computeTiming returns (result, cacheable). Upstream failures are not cached
// so the next call retries.
func (e *Engine) computeTiming(ctx context.Context, market contracts.Market) (bool, bool) {
	mt := e.cfg.MarketTiming

	var proxy string
	switch market {
	case contracts.MarketKOSPI:
		proxy = mt.KospiProxy
	case contracts.MarketKOSDAQ:
		proxy = mt.KosdaqProxy
	default:
		e.log.WithField("market", string(market)).Warn("market timing: unknown market")
		return false, true
	}

	log := e.log.WithFields(map[string]interface{}{
		"market": string(market),
		"proxy":  proxy,
	})

	bars, err := e.md.RecentDailyBars(ctx, proxy, mt.MAPeriod+mt.RisingDays+timingSlack)
	if err != nil {
		log.WithError(err).Warn("market timing: proxy bars unavailable")
		return false, false
	}

	smas, ok := indicator.TrailingSMA(bars.Closes(), mt.MAPeriod, mt.RisingDays+1)
	if !ok {
		log.WithField("bars", len(bars)).Info("market timing: insufficient bars")
		return false, true
	}

	for i := 1; i < len(smas); i++ {
		if !(smas[i] > smas[i-1]) {
			log.WithField("sma", smas).Info("market timing: NO-GO")
			return false, true
		}
	}

	log.WithField("sma", smas).Info("market timing: GO")
	return true, true
}
