package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kyungsooNa/Investment-sub000/internal/strategyconfig"
)

func TestOrderQuantity(t *testing.T) {
	budget := strategyconfig.Sizing{
		Mode:            strategyconfig.SizingBudget,
		FixedQty:        3,
		PortfolioBudget: 10_000_000,
		PositionSizePct: 10,
		MinQty:          1,
	}
	fixed := budget
	fixed.Mode = strategyconfig.SizingFixed

	tests := []struct {
		name  string
		sz    strategyconfig.Sizing
		price int64
		want  int64
	}{
		{"budget floors", budget, 71_000, 14},
		{"budget exact", budget, 100_000, 10},
		{"budget below min qty", budget, 2_000_000, 1},
		{"fixed", fixed, 71_000, 3},
		{"zero price", budget, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, orderQuantity(tt.sz, tt.price))
		})
	}
}
