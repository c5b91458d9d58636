package contracts

import "sort"

// WatchlistItem is a scored candidate snapshot
// ⭐ SSOT: 워치리스트 항목 (Pool A 파일 포맷과 동일)
type WatchlistItem struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Market Market `json:"market"`

	// 추세
	MA20      float64 `json:"ma20"`
	MA50      float64 `json:"ma50"`
	High20D   int64   `json:"high_20d"`
	AvgVol20D float64 `json:"avg_vol_20d"`

	// 변동성 (스퀴즈 판단용)
	BBWidthMin20  float64 `json:"bb_width_min_20"`
	BBWidthLatest float64 `json:"bb_width_latest"`

	// 컨텍스트
	W52High           int64   `json:"w52_high"`
	AvgTradingValue5D float64 `json:"avg_trading_value_5d"`
	MarketCap         int64   `json:"market_cap"`

	// 점수 (배치 단위로 매 빌드마다 재계산)
	RSReturn          float64 `json:"rs_return"`
	RSScore           float64 `json:"rs_score"`
	ProfitGrowthScore float64 `json:"profit_growth_score"`
	TotalScore        float64 `json:"total_score"`
}

// ApplyScores sets both component scores and the total in one place
// total_score 는 항상 rs_score + profit_growth_score
func (w *WatchlistItem) ApplyScores(rs, growth float64) {
	w.RSScore = rs
	w.ProfitGrowthScore = growth
	w.TotalScore = rs + growth
}

// TurnoverRatio is avg_trading_value_5d / market_cap (0 when market cap unknown)
func (w WatchlistItem) TurnoverRatio() float64 {
	if w.MarketCap <= 0 {
		return 0
	}
	return w.AvgTradingValue5D / float64(w.MarketCap)
}

// SortByRank orders items by total score desc, then turnover desc
func SortByRank(items []WatchlistItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].TotalScore != items[j].TotalScore {
			return items[i].TotalScore > items[j].TotalScore
		}
		ti, tj := items[i].TurnoverRatio(), items[j].TurnoverRatio()
		if ti != tj {
			return ti > tj
		}
		return items[i].Code < items[j].Code
	})
}

// Watchlist is the merged, ranked candidate set keyed by code.
// A published Watchlist is never mutated; rebuilds swap in a new one.
type Watchlist map[string]WatchlistItem

// Ranked returns the items in rank order
func (w Watchlist) Ranked() []WatchlistItem {
	items := make([]WatchlistItem, 0, len(w))
	for _, item := range w {
		items = append(items, item)
	}
	SortByRank(items)
	return items
}

// PoolASnapshot is the persisted daily-batch universe
type PoolASnapshot struct {
	GeneratedDate string          `json:"generated_date"` // YYYYMMDD
	Kospi         []WatchlistItem `json:"kospi"`
	Kosdaq        []WatchlistItem `json:"kosdaq"`
}

// Items returns KOSPI then KOSDAQ items
func (p PoolASnapshot) Items() []WatchlistItem {
	items := make([]WatchlistItem, 0, len(p.Kospi)+len(p.Kosdaq))
	items = append(items, p.Kospi...)
	return append(items, p.Kosdaq...)
}
