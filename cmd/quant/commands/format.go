package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintHeader prints a formatted command header
func PrintHeader(title string, meta map[string]string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", title)

	if len(meta) > 0 {
		PrintSeparator()
		keys := make([]string, 0, len(meta))
		for k := range meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %-10s: %s\n", k, meta[k])
		}
	}
	PrintSeparator()
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Println(strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

// formatWon renders an amount with thousands separators (71000 → 71,000)
func formatWon(v int64) string {
	s := decimal.NewFromInt(v).Abs().String()
	var b strings.Builder
	if v < 0 {
		b.WriteByte('-')
	}
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// formatEok renders a won amount in 억 units (1e12 → 10,000억)
func formatEok(v float64) string {
	eok := decimal.NewFromFloat(v).Div(decimal.NewFromInt(100_000_000)).Round(0)
	return formatWon(eok.IntPart()) + "억"
}

var watchlistWidths = []int{4, 6, 14, 6, 7, 7, 7, 10, 10}

// PrintWatchlist prints ranked watchlist items
func PrintWatchlist(items []contracts.WatchlistItem) {
	PrintTableHeader([]string{"#", "CODE", "NAME", "MKT", "TOTAL", "RS", "GROWTH", "HIGH20D", "MCAP"}, watchlistWidths)
	for i, it := range items {
		PrintTableRow([]string{
			fmt.Sprintf("%d", i+1),
			it.Code,
			truncateName(it.Name, 14),
			string(it.Market),
			fmt.Sprintf("%.1f", it.TotalScore),
			fmt.Sprintf("%.1f", it.RSScore),
			fmt.Sprintf("%.1f", it.ProfitGrowthScore),
			formatWon(it.High20D),
			formatEok(float64(it.MarketCap)),
		}, watchlistWidths)
	}
}

var signalWidths = []int{4, 6, 14, 10, 6, 16, 30}

// PrintSignals prints emitted trade signals
func PrintSignals(signals []contracts.TradeSignal) {
	if len(signals) == 0 {
		fmt.Println("   (no signals)")
		return
	}
	PrintTableHeader([]string{"ACT", "CODE", "NAME", "PRICE", "QTY", "EXIT", "REASON"}, signalWidths)
	for _, s := range signals {
		PrintTableRow([]string{
			string(s.Action),
			s.Code,
			truncateName(s.Name, 14),
			formatWon(s.Price),
			fmt.Sprintf("%d", s.Quantity),
			string(s.ExitReason),
			s.Reason,
		}, signalWidths)
	}
}

// truncateName cuts by rune so Korean names stay valid
func truncateName(name string, max int) string {
	r := []rune(name)
	if len(r) <= max {
		return name
	}
	return string(r[:max-1]) + "…"
}
