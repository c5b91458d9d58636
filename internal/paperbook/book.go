package paperbook

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
	"github.com/kyungsooNa/Investment-sub000/internal/statefile"
	"github.com/kyungsooNa/Investment-sub000/pkg/logger"
)

// Book is a simulated account for paper mode.
// 시그널을 즉시 체결된 것으로 간주하고 보유 수량/평균단가를 관리한다
type Book struct {
	path string
	log  *logger.Logger

	mu       sync.Mutex
	holdings map[string]contracts.Holding
}

var _ contracts.HoldingsProvider = (*Book)(nil)
var _ contracts.SignalSink = (*Book)(nil)

// Open loads the book from path (missing file → empty book)
func Open(path string, log *logger.Logger) (*Book, error) {
	b := &Book{
		path:     path,
		log:      log.WithField("component", "paperbook"),
		holdings: make(map[string]contracts.Holding),
	}
	if _, err := statefile.Read(path, &b.holdings); err != nil {
		return nil, err
	}
	if b.holdings == nil {
		b.holdings = make(map[string]contracts.Holding)
	}
	return b, nil
}

// Holdings returns the simulated holdings sorted by code
func (b *Book) Holdings(ctx context.Context) ([]contracts.Holding, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]contracts.Holding, 0, len(b.holdings))
	for _, h := range b.holdings {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// SaveSignals applies fills: BUY 는 평균단가 가중 평균, SELL 은 수량 차감
func (b *Book) SaveSignals(ctx context.Context, signals []contracts.TradeSignal) error {
	if len(signals) == 0 {
		return nil
	}

	b.mu.Lock()
	for _, sig := range signals {
		b.apply(sig)
	}
	snapshot := make(map[string]contracts.Holding, len(b.holdings))
	for k, v := range b.holdings {
		snapshot[k] = v
	}
	b.mu.Unlock()

	return statefile.Write(b.path, snapshot)
}

func (b *Book) apply(sig contracts.TradeSignal) {
	h := b.holdings[sig.Code]

	switch sig.Action {
	case contracts.ActionBuy:
		if sig.Quantity <= 0 {
			return
		}
		cost := decimal.NewFromInt(h.AvgPrice).Mul(decimal.NewFromInt(h.Quantity)).
			Add(decimal.NewFromInt(sig.Price).Mul(decimal.NewFromInt(sig.Quantity)))
		h.Code = sig.Code
		if sig.Name != "" {
			h.Name = sig.Name
		}
		h.Quantity += sig.Quantity
		h.AvgPrice = cost.Div(decimal.NewFromInt(h.Quantity)).Round(0).IntPart()
		b.holdings[sig.Code] = h

	case contracts.ActionSell:
		h.Quantity -= sig.Quantity
		if h.Quantity <= 0 {
			delete(b.holdings, sig.Code)
			return
		}
		b.holdings[sig.Code] = h
	}

	b.log.WithFields(map[string]interface{}{
		"code":     sig.Code,
		"action":   string(sig.Action),
		"price":    sig.Price,
		"quantity": sig.Quantity,
	}).Info("paper fill")
}
