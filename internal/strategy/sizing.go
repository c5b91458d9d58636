package strategy

import (
	"github.com/shopspring/decimal"

	"github.com/kyungsooNa/Investment-sub000/internal/strategyconfig"
)

// orderQuantity computes the BUY quantity at price
// budget: floor(budget × pct / price), 최소 수량 보장
func orderQuantity(sz strategyconfig.Sizing, price int64) int64 {
	if price <= 0 {
		return 0
	}

	if sz.Mode == strategyconfig.SizingFixed {
		return sz.FixedQty
	}

	alloc := decimal.NewFromInt(sz.PortfolioBudget).
		Mul(decimal.NewFromFloat(sz.PositionSizePct)).
		Div(decimal.NewFromInt(100))
	qty := alloc.Div(decimal.NewFromInt(price)).Floor().IntPart()

	if qty < sz.MinQty {
		return sz.MinQty
	}
	return qty
}
