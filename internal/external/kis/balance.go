package kis

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
)

// TR IDs for balance queries
const (
	// 실전
	TRIDBalanceReal = "TTTC8434R"
	// 모의
	TRIDBalanceVirtual = "VTTC8434R"
)

const pathBalance = "/uapi/domestic-stock/v1/trading/inquire-balance"

// GetBalance returns account balance and positions
func (c *Client) GetBalance(ctx context.Context) (*Balance, []Position, error) {
	trID := TRIDBalanceReal
	if c.cfg.IsVirtual {
		trID = TRIDBalanceVirtual
	}

	// Account number format: first 8 digits + last 2 digits
	accountNo := c.cfg.AccountNo
	if len(accountNo) < 10 {
		return nil, nil, fmt.Errorf("invalid account number format")
	}

	res, err := c.get(ctx, pathBalance, trID, url.Values{
		"CANO":                  {accountNo[:8]},
		"ACNT_PRDT_CD":          {accountNo[8:10]},
		"AFHR_FLPR_YN":          {"N"},
		"OFL_YN":                {""},
		"INQR_DVSN":             {"02"},
		"UNPR_DVSN":             {"01"},
		"FUND_STTL_ICLD_YN":     {"N"},
		"FNCG_AMT_AUTO_RDPT_YN": {"N"},
		"PRCS_DVSN":             {"00"},
		"CTX_AREA_FK100":        {""},
		"CTX_AREA_NK100":        {""},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("balance request: %w", err)
	}

	balance := &Balance{}
	if out := res.Get("output2.0"); out.Exists() {
		balance.TotalDeposit = num(out.Get("dnca_tot_amt"))
		balance.TotalPurchase = num(out.Get("pchs_amt_smtl_amt"))
		balance.TotalEvaluation = num(out.Get("evlu_amt_smtl_amt"))
		balance.TotalProfitLoss = num(out.Get("evlu_pfls_smtl_amt"))
		balance.TotalAsset = num(out.Get("tot_evlu_amt"))

		if balance.TotalPurchase > 0 {
			balance.ProfitLossRate = float64(balance.TotalProfitLoss) / float64(balance.TotalPurchase) * 100
		}
	}

	positions := make([]Position, 0)
	res.Get("output1").ForEach(func(_, out gjson.Result) bool {
		qty := num(out.Get("hldg_qty"))
		if qty == 0 {
			return true // Skip zero quantity positions
		}
		positions = append(positions, Position{
			StockCode:    out.Get("pdno").String(),
			StockName:    out.Get("prdt_name").String(),
			Quantity:     qty,
			AvgBuyPrice:  num(out.Get("pchs_avg_pric")),
			CurrentPrice: num(out.Get("prpr")),
		})
		return true
	})

	c.logger.WithFields(map[string]interface{}{
		"total_asset":     balance.TotalAsset,
		"positions_count": len(positions),
	}).Debug("Balance fetched")

	return balance, positions, nil
}

// Holdings implements contracts.HoldingsProvider over the account balance
func (c *Client) Holdings(ctx context.Context) ([]contracts.Holding, error) {
	_, positions, err := c.GetBalance(ctx)
	if err != nil {
		return nil, err
	}

	holdings := make([]contracts.Holding, 0, len(positions))
	for _, p := range positions {
		holdings = append(holdings, contracts.Holding{
			Code:     p.StockCode,
			Name:     p.StockName,
			Quantity: p.Quantity,
			AvgPrice: p.AvgBuyPrice,
		})
	}
	return holdings, nil
}
