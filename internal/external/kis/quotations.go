package kis

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"sort"

	"github.com/tidwall/gjson"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
	"github.com/kyungsooNa/Investment-sub000/internal/marketclock"
)

// TR IDs for quotations
const (
	TRIDCurrentPrice  = "FHKST01010100" // 국내주식 현재가
	TRIDProgramTrade  = "FHPPG04650101" // 종목별 프로그램매매추이
	TRIDDailyChart    = "FHKST03010100" // 국내주식 기간별 시세
	TRIDVolumeRank    = "FHPST01710000" // 거래량/거래대금 순위
	TRIDFluctuation   = "FHPST01700000" // 등락률 순위
	TRIDFinancialRate = "FHKST66430300" // 재무비율
)

const (
	pathCurrentPrice = "/uapi/domestic-stock/v1/quotations/inquire-price"
	pathProgramTrade = "/uapi/domestic-stock/v1/quotations/program-trade-by-stock"
	pathDailyChart   = "/uapi/domestic-stock/v1/quotations/inquire-daily-itemchartprice"
	pathVolumeRank   = "/uapi/domestic-stock/v1/quotations/volume-rank"
	pathFluctuation  = "/uapi/domestic-stock/v1/ranking/fluctuation"
	pathFinancial    = "/uapi/domestic-stock/v1/finance/financial-ratio"

	// 기간별 시세 1회 최대 100건
	maxChartRows = 100
	// hts_avls 단위: 억원
	marketCapUnit = 100_000_000
)

// volume-rank 정렬 구분 (FID_BLNG_CLS_CODE)
const (
	rankByVolume       = "0"
	rankByTradingValue = "3"
)

// CurrentQuote returns the live snapshot with program-trade flow merged in
func (c *Client) CurrentQuote(ctx context.Context, code string) (contracts.Quote, error) {
	price, err := c.get(ctx, pathCurrentPrice, TRIDCurrentPrice, url.Values{
		"fid_cond_mrkt_div_code": {"J"},
		"fid_input_iscd":         {code},
	})
	if err != nil {
		return contracts.Quote{}, fmt.Errorf("current price %s: %w", code, err)
	}

	out := price.Get("output")
	if !out.Exists() {
		return contracts.Quote{}, fmt.Errorf("current price %s: no output: %w", code, contracts.ErrMalformedPayload)
	}

	q := contracts.Quote{
		Code:                   code,
		Price:                  num(out.Get("stck_prpr")),
		CumulativeVolume:       num(out.Get("acml_vol")),
		CumulativeTradingValue: num(out.Get("acml_tr_pbmn")),
		MarketCap:              num(out.Get("hts_avls")) * marketCapUnit,
		W52High:                num(out.Get("w52_hgpr")),
	}

	program, err := c.get(ctx, pathProgramTrade, TRIDProgramTrade, url.Values{
		"fid_cond_mrkt_div_code": {"J"},
		"fid_input_iscd":         {code},
	})
	if err != nil {
		return contracts.Quote{}, fmt.Errorf("program trade %s: %w", code, err)
	}

	// 최신 체결이 output[0]
	latest := program.Get("output.0")
	q.NetProgramBuyQty = num(latest.Get("whol_smtn_ntby_qty"))
	q.NetProgramBuyValue = num(latest.Get("whol_smtn_ntby_tr_pbmn"))

	return q, nil
}

// RecentDailyBars returns up to limit daily bars ascending by date
func (c *Client) RecentDailyBars(ctx context.Context, code string, limit int) (contracts.Bars, error) {
	if limit <= 0 {
		return contracts.Bars{}, nil
	}
	if limit > maxChartRows {
		limit = maxChartRows
	}

	to := c.now().In(marketclock.Seoul())
	// 주말/휴장일 여유분 포함 달력일 범위
	from := to.AddDate(0, 0, -(limit*3/2 + 10))

	res, err := c.get(ctx, pathDailyChart, TRIDDailyChart, url.Values{
		"FID_COND_MRKT_DIV_CODE": {"J"},
		"FID_INPUT_ISCD":         {code},
		"FID_INPUT_DATE_1":       {from.Format(marketclock.DateLayout)},
		"FID_INPUT_DATE_2":       {to.Format(marketclock.DateLayout)},
		"FID_PERIOD_DIV_CODE":    {"D"},
		"FID_ORG_ADJ_PRC":        {"0"},
	})
	if err != nil {
		return nil, fmt.Errorf("daily chart %s: %w", code, err)
	}

	bars := make(contracts.Bars, 0, limit)
	res.Get("output2").ForEach(func(_, row gjson.Result) bool {
		date := row.Get("stck_bsop_date").String()
		if date == "" {
			return true
		}
		bars = append(bars, contracts.Bar{
			Date:   date,
			Open:   num(row.Get("stck_oprc")),
			High:   num(row.Get("stck_hgpr")),
			Low:    num(row.Get("stck_lwpr")),
			Close:  num(row.Get("stck_clpr")),
			Volume: num(row.Get("acml_vol")),
		})
		return true
	})

	// KIS 는 최신순으로 내려준다
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date < bars[j].Date })
	return bars.Tail(limit), nil
}

// TopTradedValue returns the traded-value ranking
func (c *Client) TopTradedValue(ctx context.Context) ([]contracts.RankedSymbol, error) {
	return c.volumeRank(ctx, rankByTradingValue)
}

// TopVolume returns the volume ranking
func (c *Client) TopVolume(ctx context.Context) ([]contracts.RankedSymbol, error) {
	return c.volumeRank(ctx, rankByVolume)
}

func (c *Client) volumeRank(ctx context.Context, sortBy string) ([]contracts.RankedSymbol, error) {
	res, err := c.get(ctx, pathVolumeRank, TRIDVolumeRank, url.Values{
		"FID_COND_MRKT_DIV_CODE": {"J"},
		"FID_COND_SCR_DIV_CODE":  {"20171"},
		"FID_INPUT_ISCD":         {"0000"},
		"FID_DIV_CLS_CODE":       {"0"},
		"FID_BLNG_CLS_CODE":      {sortBy},
		"FID_TRGT_CLS_CODE":      {"111111111"},
		"FID_TRGT_EXLS_CLS_CODE": {"0000000000"},
		"FID_INPUT_PRICE_1":      {""},
		"FID_INPUT_PRICE_2":      {""},
		"FID_VOL_CNT":            {""},
		"FID_INPUT_DATE_1":       {""},
	})
	if err != nil {
		return nil, fmt.Errorf("volume rank: %w", err)
	}
	return rankedSymbols(res.Get("output"), "mksc_shrn_iscd"), nil
}

// TopGainers returns the price-change ranking
func (c *Client) TopGainers(ctx context.Context) ([]contracts.RankedSymbol, error) {
	res, err := c.get(ctx, pathFluctuation, TRIDFluctuation, url.Values{
		"fid_cond_mrkt_div_code": {"J"},
		"fid_cond_scr_div_code":  {"20170"},
		"fid_input_iscd":         {"0000"},
		"fid_rank_sort_cls_code": {"0"},
		"fid_input_cnt_1":        {"0"},
		"fid_prc_cls_code":       {"0"},
		"fid_input_price_1":      {""},
		"fid_input_price_2":      {""},
		"fid_vol_cnt":            {""},
		"fid_trgt_cls_code":      {"0"},
		"fid_trgt_exls_cls_code": {"0"},
		"fid_div_cls_code":       {"0"},
		"fid_rsfl_rate1":         {""},
		"fid_rsfl_rate2":         {""},
	})
	if err != nil {
		return nil, fmt.Errorf("fluctuation rank: %w", err)
	}
	return rankedSymbols(res.Get("output"), "stck_shrn_iscd"), nil
}

func rankedSymbols(rows gjson.Result, codeField string) []contracts.RankedSymbol {
	out := make([]contracts.RankedSymbol, 0)
	rows.ForEach(func(_, row gjson.Result) bool {
		code := row.Get(codeField).String()
		if code == "" {
			return true
		}
		out = append(out, contracts.RankedSymbol{
			Code: code,
			Name: row.Get("hts_kor_isnm").String(),
		})
		return true
	})
	return out
}

// growthFields: 영업이익 증가율 필드명 후보 (응답 버전별 상이)
var growthFields = []string{
	"bsop_prfi_inrt",
	"op_prfi_inrt",
	"operating_profit_growth",
	"opPrfiGrowth",
}

// FinancialRatio returns the latest operating-profit growth
func (c *Client) FinancialRatio(ctx context.Context, code string) (contracts.FinancialRatio, error) {
	res, err := c.get(ctx, pathFinancial, TRIDFinancialRate, url.Values{
		"FID_DIV_CLS_CODE":       {"0"},
		"fid_cond_mrkt_div_code": {"J"},
		"fid_input_iscd":         {code},
	})
	if err != nil {
		return contracts.FinancialRatio{}, fmt.Errorf("financial ratio %s: %w", code, err)
	}
	return ExtractFinancialRatio(res), nil
}

// ExtractFinancialRatio normalizes the financial-ratio payload.
// 지원 형태: 최상위 객체, output 객체, output 배열(첫 행)
func ExtractFinancialRatio(payload gjson.Result) contracts.FinancialRatio {
	candidates := []gjson.Result{payload}
	if out := payload.Get("output"); out.Exists() {
		if out.IsArray() {
			candidates = append(candidates, out.Get("0"))
		} else {
			candidates = append(candidates, out)
		}
	}

	for _, obj := range candidates {
		if !obj.IsObject() {
			continue
		}
		for _, field := range growthFields {
			v := obj.Get(field)
			if !v.Exists() || v.String() == "" {
				continue
			}
			return contracts.FinancialRatio{OperatingProfitGrowth: v.Float(), Found: true}
		}
	}
	return contracts.FinancialRatio{}
}

// num reads a KIS numeric field ("71000", "71000.0000", 71000)
func num(r gjson.Result) int64 {
	return int64(math.Round(r.Float()))
}
