package contracts

import "strings"

// Market identifies the listing venue
// ⭐ SSOT: 시장 구분은 여기서만
type Market string

const (
	MarketKOSPI  Market = "KOSPI"
	MarketKOSDAQ Market = "KOSDAQ"
)

// ParseMarket converts user input (kospi, KOSDAQ ...) to a Market
func ParseMarket(s string) (Market, bool) {
	switch Market(strings.ToUpper(strings.TrimSpace(s))) {
	case MarketKOSPI:
		return MarketKOSPI, true
	case MarketKOSDAQ:
		return MarketKOSDAQ, true
	default:
		return "", false
	}
}

// ListedSymbol is one row of the full listed-symbol table
type ListedSymbol struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Market Market `json:"market"`
}

// RankedSymbol is one entry of a real-time ranking query (거래대금/상승률/거래량 순위)
type RankedSymbol struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
