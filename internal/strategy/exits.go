package strategy

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
	"github.com/kyungsooNa/Investment-sub000/internal/indicator"
	"github.com/kyungsooNa/Investment-sub000/internal/marketclock"
)

// avgVolumeWindow: 추세 이탈 거래량 확인용 20일 평균
const avgVolumeWindow = 20

// CheckExits evaluates every held position and emits SELL signals (HELD → WATCHING).
// Priority (first match wins):
// 1. Stop-loss
// 2. Time-box (횡보)
// 3. Trailing stop
// 4. Trend exit (variant)
// 5. Fake breakout (variant)
func (s *Breakout) CheckExits(ctx context.Context, holdings []contracts.Holding) []contracts.TradeSignal {
	signals := make([]contracts.TradeSignal, 0)

	for _, h := range holdings {
		if h.Quantity <= 0 {
			continue
		}
		log := s.log.WithField("code", h.Code)

		pos, ok := s.position(h.Code)

		quote, err := s.deps.MarketData.CurrentQuote(ctx, h.Code)
		if err != nil {
			log.WithError(err).Warn("exit check skipped: quote unavailable")
			continue
		}

		if !ok {
			adopted, ok := s.adopt(h, quote.Price)
			if !ok {
				continue
			}
			pos = adopted
		}

		// HWM 갱신은 청산 판단과 무관하게 즉시 반영
		if quote.Price > pos.PeakPrice {
			pos.PeakPrice = quote.Price
			s.setPosition(h.Code, pos)
		}

		reason, detail := s.evaluateExit(ctx, h.Code, pos, quote)
		if reason == "" {
			continue
		}

		s.removePosition(h.Code)

		log.WithFields(map[string]interface{}{
			"exit_reason": string(reason),
			"price":       quote.Price,
			"entry_price": pos.EntryPrice,
			"peak_price":  pos.PeakPrice,
		}).Info("exit triggered")

		signals = append(signals, contracts.TradeSignal{
			ID:         uuid.NewString(),
			Code:       h.Code,
			Name:       h.Name,
			Market:     s.marketOf(ctx, h.Code),
			Action:     contracts.ActionSell,
			Price:      quote.Price,
			Quantity:   h.Quantity,
			Reason:     detail,
			ExitReason: reason,
			Strategy:   s.cfg.Name,
			CreatedAt:  s.deps.Clock.Now(),
		})
	}

	return signals
}

// marketOf resolves the market of a held symbol: 게시된 워치리스트 → 종목 디렉토리.
// 판별 실패 시 빈 값 (시그널 발행은 막지 않는다)
func (s *Breakout) marketOf(ctx context.Context, code string) contracts.Market {
	if item, ok := s.deps.Universe.Current()[code]; ok && item.Market != "" {
		return item.Market
	}
	if s.deps.Directory == nil {
		return ""
	}
	kosdaq, err := s.deps.Directory.IsKosdaq(ctx, code)
	if err != nil {
		s.log.WithField("code", code).WithError(err).Debug("market lookup failed for exit signal")
		return ""
	}
	if kosdaq {
		return contracts.MarketKOSDAQ
	}
	return contracts.MarketKOSPI
}

// adopt creates a PositionState for a holding the strategy never saw enter
// (수동 매수, 상태 파일 유실). 평균단가가 없으면 건너뛴다.
func (s *Breakout) adopt(h contracts.Holding, price int64) (contracts.PositionState, bool) {
	if h.AvgPrice <= 0 {
		s.log.WithField("code", h.Code).Warn("untracked holding without average price, skipped")
		return contracts.PositionState{}, false
	}

	peak := h.AvgPrice
	if price > peak {
		peak = price
	}
	pos := contracts.PositionState{
		EntryPrice: h.AvgPrice,
		EntryDate:  marketclock.Today(s.deps.Clock),
		PeakPrice:  peak,
	}
	s.setPosition(h.Code, pos)

	s.log.WithFields(map[string]interface{}{
		"code":      h.Code,
		"avg_price": h.AvgPrice,
	}).Info("untracked holding adopted")
	return pos, true
}

// evaluateExit returns the first matching exit reason in priority order
func (s *Breakout) evaluateExit(ctx context.Context, code string, pos contracts.PositionState, q contracts.Quote) (contracts.ExitReason, string) {
	ex := s.cfg.Exit
	price := float64(q.Price)
	bars := s.lazyBars(ctx, code)

	// 1. 손절
	if pos.EntryPrice > 0 {
		pnl := (price - float64(pos.EntryPrice)) / float64(pos.EntryPrice) * 100
		if pnl <= ex.StopLossPct {
			return contracts.ExitStopLoss, fmt.Sprintf("손절: 수익률 %.2f%% <= %.2f%%", pnl, ex.StopLossPct)
		}
	}

	// 2. 타임박스 (당일 진입은 제외)
	today := marketclock.Today(s.deps.Clock)
	if pos.EntryDate != "" && pos.EntryDate < today {
		if b, ok := bars(); ok {
			age := tradingDaysSince(b, pos.EntryDate, today)
			if age >= ex.TimeBoxDays && len(b) >= ex.TimeBoxDays {
				rangePct := boxRangePct(b.Tail(ex.TimeBoxDays))
				if rangePct < ex.TimeBoxRangePct {
					return contracts.ExitTimeBox, fmt.Sprintf("타임박스: 보유 %d거래일, 박스폭 %.2f%% < %.2f%%",
						age, rangePct, ex.TimeBoxRangePct)
				}
			}
		}
	}

	// 3. 트레일링 스탑
	if pos.PeakPrice > 0 {
		drawdown := (price - float64(pos.PeakPrice)) / float64(pos.PeakPrice) * 100
		if drawdown <= -ex.TrailingStopPct {
			return contracts.ExitTrailingStop, fmt.Sprintf("트레일링: 고점 %d 대비 %.2f%% <= -%.2f%%",
				pos.PeakPrice, drawdown, ex.TrailingStopPct)
		}
	}

	// 4. 추세 이탈 (변형)
	if s.toggles.TrendExit {
		if b, ok := bars(); ok {
			completed := b.Before(today)
			ma, maOK := indicator.LastSMA(completed.Closes(), ex.TrendMAPeriod)
			avgVol, volOK := averageVolume(completed, avgVolumeWindow)
			ratio := marketclock.ElapsedRatio(s.deps.Clock)
			if maOK && volOK && ratio > 0 && price < ma {
				projected := float64(q.CumulativeVolume) / ratio
				if projected >= avgVol {
					return contracts.ExitTrendBreak, fmt.Sprintf("추세 이탈: 현재가 %d < MA%d %.1f, 예상거래량 %.0f >= 평균 %.0f",
						q.Price, ex.TrendMAPeriod, ma, projected, avgVol)
				}
			}
		}
	}

	// 5. 가짜 돌파 (변형)
	if s.toggles.FakeBreakoutExit && pos.BreakoutLevel > 0 && q.Price <= pos.BreakoutLevel {
		return contracts.ExitFakeBreakout, fmt.Sprintf("가짜 돌파: 현재가 %d <= 돌파선 %d", q.Price, pos.BreakoutLevel)
	}

	return "", ""
}

// lazyBars fetches the daily bars at most once per evaluation
func (s *Breakout) lazyBars(ctx context.Context, code string) func() (contracts.Bars, bool) {
	var (
		bars    contracts.Bars
		fetched bool
		ok      bool
	)
	limit := s.cfg.Exit.TimeBoxDays
	if s.cfg.Exit.TrendMAPeriod > limit {
		limit = s.cfg.Exit.TrendMAPeriod
	}
	if avgVolumeWindow > limit {
		limit = avgVolumeWindow
	}
	limit += 10

	return func() (contracts.Bars, bool) {
		if fetched {
			return bars, ok
		}
		fetched = true

		b, err := s.deps.MarketData.RecentDailyBars(ctx, code, limit)
		if err != nil {
			s.log.WithField("code", code).WithError(err).Warn("daily bars unavailable, bar-based exits skipped")
			return nil, false
		}
		bars, ok = b, true
		return bars, ok
	}
}

// tradingDaysSince counts trading days after entryDate up to and including today
func tradingDaysSince(bars contracts.Bars, entryDate, today string) int {
	days := 0
	sawToday := false
	for _, b := range bars {
		if b.Date > entryDate && b.Date <= today {
			days++
			if b.Date == today {
				sawToday = true
			}
		}
	}
	// 당일 봉이 아직 없으면 오늘을 한 거래일로 센다
	if !sawToday && today > entryDate {
		days++
	}
	return days
}

// boxRangePct = (max high - min low) / avg close × 100
func boxRangePct(bars contracts.Bars) float64 {
	if len(bars) == 0 {
		return 0
	}
	hi, lo := bars[0].High, bars[0].Low
	var closeSum float64
	for _, b := range bars {
		if b.High > hi {
			hi = b.High
		}
		if b.Low < lo {
			lo = b.Low
		}
		closeSum += float64(b.Close)
	}
	avgClose := closeSum / float64(len(bars))
	if avgClose <= 0 {
		return 0
	}
	return float64(hi-lo) / avgClose * 100
}

func averageVolume(bars contracts.Bars, window int) (float64, bool) {
	if len(bars) < window {
		return 0, false
	}
	var sum float64
	for _, b := range bars.Tail(window) {
		sum += float64(b.Volume)
	}
	return sum / float64(window), true
}
