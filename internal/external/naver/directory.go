package naver

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
	"github.com/kyungsooNa/Investment-sub000/internal/marketclock"
)

const marketSumPath = "/sise/sise_market_sum.naver"

// sosok: 0 코스피, 1 코스닥
var marketSosok = []struct {
	market contracts.Market
	sosok  string
}{
	{contracts.MarketKOSPI, "0"},
	{contracts.MarketKOSDAQ, "1"},
}

var codeRe = regexp.MustCompile(`code=(\d{6})`)

// AllListed returns every listed symbol of both markets
// ⭐ SSOT: 전체 상장 종목표는 이 함수에서만
func (c *Client) AllListed(ctx context.Context) ([]contracts.ListedSymbol, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]contracts.ListedSymbol, len(c.listed))
	copy(out, c.listed)
	return out, nil
}

// IsKosdaq reports whether code is listed on KOSDAQ
func (c *Client) IsKosdaq(ctx context.Context, code string) (bool, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	market, ok := c.byCode[code]
	if !ok {
		return false, fmt.Errorf("code %s not in listing: %w", code, contracts.ErrDataInsufficient)
	}
	return market == contracts.MarketKOSDAQ, nil
}

// ensureLoaded fetches the listing once per calendar day
func (c *Client) ensureLoaded(ctx context.Context) error {
	today := c.now().In(marketclock.Seoul()).Format(marketclock.DateLayout)

	c.mu.Lock()
	fresh := c.day == today && len(c.listed) > 0
	c.mu.Unlock()
	if fresh {
		return nil
	}

	listed := make([]contracts.ListedSymbol, 0, 2600)
	for _, m := range marketSosok {
		symbols, err := c.fetchMarket(ctx, m.market, m.sosok)
		if err != nil {
			return fmt.Errorf("listing %s: %w", m.market, err)
		}
		listed = append(listed, symbols...)
	}

	byCode := make(map[string]contracts.Market, len(listed))
	for _, s := range listed {
		byCode[s.Code] = s.Market
	}

	c.mu.Lock()
	c.day = today
	c.listed = listed
	c.byCode = byCode
	c.mu.Unlock()

	c.logger.WithFields(map[string]interface{}{
		"date":  today,
		"count": len(listed),
	}).Info("symbol directory loaded")
	return nil
}

// fetchMarket walks the market-sum pages until the last page
func (c *Client) fetchMarket(ctx context.Context, market contracts.Market, sosok string) ([]contracts.ListedSymbol, error) {
	var symbols []contracts.ListedSymbol

	for page := 1; page <= c.maxPages; page++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		body, err := c.fetchHTML(ctx, marketSumPath, url.Values{
			"sosok": {sosok},
			"page":  {strconv.Itoa(page)},
		})
		if err != nil {
			return nil, err
		}
		rows, hasMore, err := parseMarketSum(body, market)
		body.Close()
		if err != nil {
			return nil, err
		}

		symbols = append(symbols, rows...)
		if !hasMore || len(rows) == 0 {
			break
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"market": string(market),
		"count":  len(symbols),
	}).Debug("Fetched market listing")
	return symbols, nil
}

// parseMarketSum extracts (code, name) rows from one market-sum page
func parseMarketSum(r io.Reader, market contracts.Market) ([]contracts.ListedSymbol, bool, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, false, fmt.Errorf("parse HTML: %v: %w", err, contracts.ErrMalformedPayload)
	}

	var rows []contracts.ListedSymbol
	doc.Find("table.type_2 tbody tr").Each(func(_ int, row *goquery.Selection) {
		link := row.Find("a.tltle")
		if link.Length() == 0 {
			return
		}
		href, _ := link.Attr("href")
		m := codeRe.FindStringSubmatch(href)
		if m == nil {
			return
		}
		rows = append(rows, contracts.ListedSymbol{
			Code:   m[1],
			Name:   strings.TrimSpace(link.Text()),
			Market: market,
		})
	})

	// 다음 페이지 존재 여부 확인
	hasMore := doc.Find(".pgRR").Length() > 0
	return rows, hasMore, nil
}
