package contracts

// PositionState is the durable per-symbol record of a held breakout position
// ⭐ SSOT: 포지션 상태 파일 포맷
type PositionState struct {
	EntryPrice    int64  `json:"entry_price"`
	EntryDate     string `json:"entry_date"` // YYYYMMDD
	PeakPrice     int64  `json:"peak_price"` // 진입 이후 단조 증가
	BreakoutLevel int64  `json:"breakout_level"`
}

// Holding is one held position as reported by the account (or paper book)
type Holding struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
	AvgPrice int64  `json:"avg_price"`
}
