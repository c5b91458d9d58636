package universe

import (
	"context"
	"fmt"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
	"github.com/kyungsooNa/Investment-sub000/internal/indicator"
	"github.com/kyungsooNa/Investment-sub000/internal/marketclock"
)

const (
	widthSamples  = 20 // 볼린저 폭 최소 샘플 / rolling-min 구간
	highWindow    = 20
	avgVolWindow  = 20
	tradingWindow = 5
	shortMAPeriod = 20
	longMAPeriod  = 50
)

// AnalyzeCandidate runs the per-symbol filter chain and returns a populated item
// with zero scores. A *contracts.Rejection error explains a dropped candidate.
func (e *Engine) AnalyzeCandidate(ctx context.Context, code, name string) (*contracts.WatchlistItem, error) {
	f := e.cfg.Filters

	// 1. 일봉
	bars, err := e.md.RecentDailyBars(ctx, code, f.BarsLookback)
	if err != nil {
		return nil, contracts.Reject(code, contracts.RejectBarsFetch, contracts.ErrUpstreamUnavailable, "%v", err)
	}
	// 당일 미완성 봉 제외: 돌파선(20일 고가)과 평균 거래량은 완성 봉 기준
	bars = bars.Before(marketclock.Today(e.clock))
	if len(bars) < f.MinBars {
		return nil, contracts.Reject(code, contracts.RejectInsufficientBars, contracts.ErrDataInsufficient,
			"%d bars < %d", len(bars), f.MinBars)
	}

	// 2. 추세 지표
	closes := bars.Closes()
	ma20, _ := indicator.LastSMA(closes, shortMAPeriod)
	ma50, _ := indicator.LastSMA(closes, longMAPeriod)

	var high20 int64
	var volSum float64
	for _, b := range bars.Tail(highWindow) {
		if b.High > high20 {
			high20 = b.High
		}
	}
	for _, b := range bars.Tail(avgVolWindow) {
		volSum += float64(b.Volume)
	}
	avgVol20 := volSum / float64(len(bars.Tail(avgVolWindow)))

	var valueSum float64
	recent := bars.Tail(tradingWindow)
	for _, b := range recent {
		valueSum += b.TradingValue()
	}
	avgValue5 := valueSum / float64(len(recent))

	// 3. 거래대금 하한
	if avgValue5 < f.MinAvgTradingValue5D {
		return nil, contracts.Reject(code, contracts.RejectLowTradingValue, contracts.ErrFilteredOut,
			"avg value 5d %.0f < %.0f", avgValue5, f.MinAvgTradingValue5D)
	}

	// 4. 정배열: close > MA20 > MA50
	last := float64(bars[len(bars)-1].Close)
	if !(last > ma20 && ma20 > ma50) {
		return nil, contracts.Reject(code, contracts.RejectTrend, contracts.ErrFilteredOut,
			"close %.0f, ma20 %.1f, ma50 %.1f", last, ma20, ma50)
	}

	// 5. 52주 신고가 근접도
	quote, err := e.md.CurrentQuote(ctx, code)
	if err != nil {
		return nil, contracts.Reject(code, contracts.RejectQuoteFetch, contracts.ErrUpstreamUnavailable, "%v", err)
	}
	if quote.W52High <= 0 {
		return nil, contracts.Reject(code, contracts.RejectFar52WHigh, contracts.ErrDataInsufficient, "w52 high missing")
	}
	distPct := (float64(quote.W52High) - last) / float64(quote.W52High) * 100
	if distPct > f.Near52WHighPct {
		return nil, contracts.Reject(code, contracts.RejectFar52WHigh, contracts.ErrFilteredOut,
			"%.2f%% below 52w high %d (limit %.2f%%)", distPct, quote.W52High, f.Near52WHighPct)
	}

	// 6. 볼린저 폭 (스퀴즈 판단은 전략에서)
	bands, err := e.ind.BollingerBands(ctx, code, f.BollingerPeriod, f.BollingerStdDev, bars)
	if err != nil {
		return nil, contracts.Reject(code, contracts.RejectBollinger, contracts.ErrDataInsufficient, "%v", err)
	}
	widths := make([]float64, 0, len(bands))
	for _, b := range bands {
		if b.Valid {
			widths = append(widths, b.Width())
		}
	}
	if len(widths) < widthSamples {
		return nil, contracts.Reject(code, contracts.RejectBollinger, contracts.ErrDataInsufficient,
			"%d width samples < %d", len(widths), widthSamples)
	}
	minWidth := widths[len(widths)-widthSamples]
	for _, w := range widths[len(widths)-widthSamples:] {
		if w < minWidth {
			minWidth = w
		}
	}

	// 7. RS (실패 시 0)
	rsReturn := 0.0
	if rs, err := e.ind.RelativeStrength(ctx, code, e.cfg.Scoring.RSPeriodDays, bars); err != nil {
		e.log.WithField("code", code).WithError(err).Debug("relative strength unavailable, using 0")
	} else {
		rsReturn = rs.ReturnPct
	}

	return &contracts.WatchlistItem{
		Code:              code,
		Name:              name,
		Market:            e.classify(ctx, code),
		MA20:              ma20,
		MA50:              ma50,
		High20D:           high20,
		AvgVol20D:         avgVol20,
		BBWidthMin20:      minWidth,
		BBWidthLatest:     widths[len(widths)-1],
		W52High:           quote.W52High,
		AvgTradingValue5D: avgValue5,
		MarketCap:         quote.MarketCap,
		RSReturn:          rsReturn,
	}, nil
}

// classify resolves the market; lookup failure falls back to KOSPI
func (e *Engine) classify(ctx context.Context, code string) contracts.Market {
	kosdaq, err := e.dir.IsKosdaq(ctx, code)
	if err != nil {
		e.log.WithField("code", code).WithError(err).Warn("market classification failed, assuming KOSPI")
		return contracts.MarketKOSPI
	}
	if kosdaq {
		return contracts.MarketKOSDAQ
	}
	return contracts.MarketKOSPI
}

// logRejection writes one structured line per dropped candidate
func (e *Engine) logRejection(stage string, code string, err error) {
	fields := map[string]interface{}{
		"stage": stage,
		"code":  code,
	}
	if r, ok := contracts.AsRejection(err); ok {
		fields["reason"] = string(r.Reason)
		fields["detail"] = r.Detail
		e.log.WithFields(fields).Debug("candidate rejected")
		return
	}
	fields["error"] = fmt.Sprint(err)
	e.log.WithFields(fields).Warn("candidate analysis failed")
}
