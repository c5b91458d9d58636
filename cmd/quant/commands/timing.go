package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
)

// timingCmd represents the timing command
var timingCmd = &cobra.Command{
	Use:   "timing [KOSPI|KOSDAQ]",
	Short: "시장 타이밍 게이트 조회",
	Long: `대표 ETF 의 이동평균이 연속 상승 중인지 확인합니다.
인자를 생략하면 두 시장을 모두 조회합니다.

Example:
  go run ./cmd/quant timing
  go run ./cmd/quant timing kosdaq`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTiming,
}

func init() {
	rootCmd.AddCommand(timingCmd)
}

func runTiming(cmd *cobra.Command, args []string) error {
	markets := []contracts.Market{contracts.MarketKOSPI, contracts.MarketKOSDAQ}
	if len(args) == 1 {
		m, ok := contracts.ParseMarket(args[0])
		if !ok {
			return fmt.Errorf("unknown market %q", args[0])
		}
		markets = []contracts.Market{m}
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	PrintHeader("Market Timing", nil)
	for _, m := range markets {
		status := "❌ blocked"
		if a.universe.IsMarketTimingOk(ctx, m) {
			status = "✅ ok"
		}
		PrintKeyValue(string(m), status, 8)
	}
	return nil
}
