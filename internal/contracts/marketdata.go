package contracts

// Quote is a normalized live snapshot of one symbol
type Quote struct {
	Code                   string `json:"code"`
	Price                  int64  `json:"price"`
	CumulativeVolume       int64  `json:"cumulative_volume"`
	CumulativeTradingValue int64  `json:"cumulative_trading_value"` // 누적 거래대금 (원)
	NetProgramBuyQty       int64  `json:"net_program_buy_qty"`      // 프로그램 순매수 수량
	NetProgramBuyValue     int64  `json:"net_program_buy_value"`    // 프로그램 순매수 금액 (원)
	MarketCap              int64  `json:"market_cap"`               // 시가총액 (원)
	W52High                int64  `json:"w52_high"`
}

// Bar is one daily OHLCV candle
type Bar struct {
	Date   string `json:"date"` // YYYYMMDD
	Open   int64  `json:"open"`
	High   int64  `json:"high"`
	Low    int64  `json:"low"`
	Close  int64  `json:"close"`
	Volume int64  `json:"volume"`
}

// TradingValue approximates the day's traded value as volume × close
func (b Bar) TradingValue() float64 {
	return float64(b.Volume) * float64(b.Close)
}

// Bars is a series of daily candles ordered ascending by date
type Bars []Bar

// Closes returns the close series as float64
func (bs Bars) Closes() []float64 {
	out := make([]float64, len(bs))
	for i, b := range bs {
		out[i] = float64(b.Close)
	}
	return out
}

// Tail returns the last n bars (or all of them if fewer)
func (bs Bars) Tail(n int) Bars {
	if n >= len(bs) {
		return bs
	}
	return bs[len(bs)-n:]
}

// Before returns the bars dated strictly before date (YYYYMMDD).
// 장중에는 당일 미완성 봉을 걸러내는 데 쓴다
func (bs Bars) Before(date string) Bars {
	out := make(Bars, 0, len(bs))
	for _, b := range bs {
		if b.Date < date {
			out = append(out, b)
		}
	}
	return out
}

// FinancialRatio is the normalized financial-ratio payload
// 응답 형태(객체/배열/필드명)는 어댑터 경계에서 정규화된다
type FinancialRatio struct {
	OperatingProfitGrowth float64 `json:"operating_profit_growth"` // 영업이익 증가율 (%)
	Found                 bool    `json:"found"`
}

// Band is one Bollinger band sample aligned to a bar
type Band struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
	Valid  bool    `json:"valid"` // lookback 이전 구간은 false
}

// Width returns upper - lower
func (b Band) Width() float64 {
	return b.Upper - b.Lower
}

// RelativeStrength is the trailing return over a window
type RelativeStrength struct {
	ReturnPct float64 `json:"return_pct"`
}
