package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// poolaCmd represents the poola command
var poolaCmd = &cobra.Command{
	Use:   "poola",
	Short: "Pool A 배치 관리",
	Long: `장 시작 전 전체 상장 종목에서 Pool A 후보를 생성합니다.

Subcommands:
  generate  - Pool A 생성 후 스냅샷 저장

Example:
  go run ./cmd/quant poola generate`,
}

var poolaGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Pool A 생성",
	Long: `2단계 퍼널로 Pool A 를 생성합니다.

Stage 1: 현재가/시가총액/52주 고가 필터 (시세 API)
Stage 2: 일봉 기반 추세/거래대금/스퀴즈 지표 계산

결과는 STATE_DIR/pool_a.json 에 원자적으로 저장됩니다.`,
	RunE: runPoolAGenerate,
}

func init() {
	rootCmd.AddCommand(poolaCmd)
	poolaCmd.AddCommand(poolaGenerateCmd)
}

func runPoolAGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	PrintHeader("Pool A Generation", map[string]string{
		"Strategy": a.strategy.Strategy.Name,
		"Output":   a.cfg.Engine.PoolAPath(),
	})

	report := a.universe.GeneratePoolA(ctx)

	PrintKeyValue("Date", report.GeneratedDate, 10)
	PrintKeyValue("Listed", fmt.Sprintf("%d", report.Total), 10)
	PrintKeyValue("Excluded", fmt.Sprintf("%d", report.Excluded), 10)
	PrintKeyValue("Stage 1", fmt.Sprintf("%d", report.Stage1Passed), 10)
	PrintKeyValue("Stage 2", fmt.Sprintf("%d", report.Stage2Passed), 10)
	PrintKeyValue("KOSPI", fmt.Sprintf("%d", report.Kospi), 10)
	PrintKeyValue("KOSDAQ", fmt.Sprintf("%d", report.Kosdaq), 10)
	PrintKeyValue("Duration", report.Duration.String(), 10)
	fmt.Println()

	if !report.Persisted {
		PrintError("Pool A snapshot was not persisted")
		return fmt.Errorf("pool A not persisted")
	}
	PrintSuccess("Pool A snapshot saved")
	return nil
}
