package kis

// Balance represents account balance summary
type Balance struct {
	TotalDeposit    int64   `json:"total_deposit"`     // 예수금
	TotalPurchase   int64   `json:"total_purchase"`    // 매입금액합계
	TotalEvaluation int64   `json:"total_evaluation"`  // 평가금액합계
	TotalProfitLoss int64   `json:"total_profit_loss"` // 평가손익합계
	ProfitLossRate  float64 `json:"profit_loss_rate"`  // 수익률
	TotalAsset      int64   `json:"total_asset"`       // 총자산
}

// Position represents a stock position
type Position struct {
	StockCode    string `json:"stock_code"`
	StockName    string `json:"stock_name"`
	Quantity     int64  `json:"quantity"`      // 보유수량
	AvgBuyPrice  int64  `json:"avg_buy_price"` // 평균매입가
	CurrentPrice int64  `json:"current_price"` // 현재가
}
