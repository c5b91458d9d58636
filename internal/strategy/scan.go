package strategy

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
	"github.com/kyungsooNa/Investment-sub000/internal/marketclock"
)

// Entry rejection reasons (structured log)
const (
	rejectMarketTiming = "market_timing"
	rejectNoSqueeze    = "no_squeeze"
	rejectQuoteFetch   = "quote_fetch"
	rejectNoBreakout   = "no_breakout"
	rejectVolume       = "volume"
	rejectSmartMoney   = "smart_money"
	rejectQuantity     = "quantity"
)

// Scan evaluates every watchlist symbol that is not held and emits BUY signals
// (WATCHING → HELD). Conditions short-circuit on the first failure.
func (s *Breakout) Scan(ctx context.Context) []contracts.TradeSignal {
	ratio := marketclock.ElapsedRatio(s.deps.Clock)
	if ratio <= 0 {
		s.log.WithField("elapsed_ratio", ratio).Debug("scan skipped before session open")
		return nil
	}

	watchlist := s.deps.Universe.GetWatchlist(ctx)

	signals := make([]contracts.TradeSignal, 0)
	for _, item := range watchlist.Ranked() {
		if _, held := s.position(item.Code); held {
			continue
		}

		sig, reject, detail := s.evaluateEntry(ctx, item, ratio)
		if sig == nil {
			s.log.WithFields(map[string]interface{}{
				"code":   item.Code,
				"reason": reject,
				"detail": detail,
			}).Debug("entry rejected")
			continue
		}
		signals = append(signals, *sig)
	}

	if len(signals) > 0 {
		s.log.WithFields(map[string]interface{}{
			"watchlist": len(watchlist),
			"signals":   len(signals),
		}).Info("scan emitted BUY signals")
	}
	return signals
}

// evaluateEntry returns a BUY signal or (nil, reason, detail)
func (s *Breakout) evaluateEntry(ctx context.Context, item contracts.WatchlistItem, ratio float64) (*contracts.TradeSignal, string, string) {
	entry := s.cfg.Entry

	// 1. 시장 타이밍
	if !s.deps.Universe.IsMarketTimingOk(ctx, item.Market) {
		return nil, rejectMarketTiming, string(item.Market)
	}

	// 2. 스퀴즈 (변형에 따라)
	if s.toggles.RequireSqueeze {
		limit := item.BBWidthMin20 * entry.SqueezeTolerance
		if !(item.BBWidthLatest <= limit) {
			return nil, rejectNoSqueeze, fmt.Sprintf("width %.2f > %.2f", item.BBWidthLatest, limit)
		}
	}

	// 3. 가격 돌파
	quote, err := s.deps.MarketData.CurrentQuote(ctx, item.Code)
	if err != nil {
		return nil, rejectQuoteFetch, err.Error()
	}
	if !(quote.Price > item.High20D) {
		return nil, rejectNoBreakout, fmt.Sprintf("price %d <= high20 %d", quote.Price, item.High20D)
	}

	// 4. 시간 정규화 거래량 돌파
	projected := float64(quote.CumulativeVolume) / ratio
	required := item.AvgVol20D * entry.VolumeMultiplier
	if !(projected >= required) {
		return nil, rejectVolume, fmt.Sprintf("projected %.0f < %.0f", projected, required)
	}

	// 5. 스마트머니
	if ok, detail := s.smartMoneyOk(quote, item); !ok {
		return nil, rejectSmartMoney, detail
	}

	qty := orderQuantity(s.cfg.Sizing, quote.Price)
	if qty <= 0 {
		return nil, rejectQuantity, fmt.Sprintf("qty %d at price %d", qty, quote.Price)
	}

	today := marketclock.Today(s.deps.Clock)
	s.setPosition(item.Code, contracts.PositionState{
		EntryPrice:    quote.Price,
		EntryDate:     today,
		PeakPrice:     quote.Price,
		BreakoutLevel: item.High20D,
	})

	reason := fmt.Sprintf("돌파 매수: 현재가 %d > 20일 고가 %d, 예상거래량 %.0f >= %.0f (x%.2f), 프로그램 순매수 %d주",
		quote.Price, item.High20D, projected, required, entry.VolumeMultiplier, quote.NetProgramBuyQty)

	return &contracts.TradeSignal{
		ID:        uuid.NewString(),
		Code:      item.Code,
		Name:      item.Name,
		Market:    item.Market,
		Action:    contracts.ActionBuy,
		Price:     quote.Price,
		Quantity:  qty,
		Reason:    reason,
		Strategy:  s.cfg.Name,
		CreatedAt: s.deps.Clock.Now(),
	}, "", ""
}

// smartMoneyOk: 프로그램 순매수 수량 > floor, 선택적으로 금액 비율 필터
func (s *Breakout) smartMoneyOk(q contracts.Quote, item contracts.WatchlistItem) (bool, string) {
	entry := s.cfg.Entry

	if !(q.NetProgramBuyQty > entry.ProgramBuyQtyFloor) {
		return false, fmt.Sprintf("program qty %d <= %d", q.NetProgramBuyQty, entry.ProgramBuyQtyFloor)
	}
	if !entry.ProgramValueFilter {
		return true, ""
	}

	if q.CumulativeTradingValue <= 0 {
		return false, "traded value unknown"
	}
	pctTrading := float64(q.NetProgramBuyValue) / float64(q.CumulativeTradingValue) * 100
	if !(pctTrading > entry.ProgramValuePctOfTrading) {
		return false, fmt.Sprintf("program value %.3f%% of traded <= %.3f%%", pctTrading, entry.ProgramValuePctOfTrading)
	}

	marketCap := q.MarketCap
	if marketCap <= 0 {
		marketCap = item.MarketCap
	}
	if marketCap <= 0 {
		return false, "market cap unknown"
	}
	pctCap := float64(q.NetProgramBuyValue) / float64(marketCap) * 100
	if !(pctCap > entry.ProgramValuePctOfMarketCap) {
		return false, fmt.Sprintf("program value %.4f%% of market cap <= %.4f%%", pctCap, entry.ProgramValuePctOfMarketCap)
	}
	return true, ""
}
