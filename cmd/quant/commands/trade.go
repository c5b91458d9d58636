package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "진입 스캔 1회 실행",
	Long: `워치리스트를 스캔해 돌파 조건을 만족하는 종목에 BUY 시그널을 발행합니다.
발행된 시그널은 설정된 sink (paper 장부, 시그널 저널) 로 전달됩니다.`,
	RunE: runScan,
}

var exitsCmd = &cobra.Command{
	Use:   "exits",
	Short: "청산 평가 1회 실행",
	Long: `보유 종목에 대해 손절 → 타임박스 → 트레일링 → 추세 이탈 → 가짜 돌파 순으로
청산 규칙을 평가하고 SELL 시그널을 발행합니다.`,
	RunE: runExits,
}

var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "보유 포지션 상태 조회",
	RunE:  runPositions,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(exitsCmd)
	rootCmd.AddCommand(positionsCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	PrintHeader("Entry Scan", map[string]string{"Strategy": a.breakout.Name()})
	signals, err := a.tradeJob().ScanOnce(ctx)
	PrintSignals(signals)
	return err
}

func runExits(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	PrintHeader("Exit Check", map[string]string{"Strategy": a.breakout.Name()})
	signals, err := a.tradeJob().ExitsOnce(ctx)
	PrintSignals(signals)
	return err
}

var positionWidths = []int{6, 14, 8, 10, 10, 10, 10, 10}

func runPositions(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	holdings, err := a.holdings.Holdings(ctx)
	if err != nil {
		return fmt.Errorf("load holdings: %w", err)
	}
	held := make(map[string]contracts.Holding, len(holdings))
	for _, h := range holdings {
		held[h.Code] = h
	}

	positions := a.breakout.Positions()
	codes := make([]string, 0, len(positions))
	for code := range positions {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	PrintHeader("Positions", map[string]string{
		"Tracked":  fmt.Sprintf("%d", len(positions)),
		"Holdings": fmt.Sprintf("%d", len(holdings)),
	})
	if len(codes) == 0 {
		fmt.Println("   (no positions)")
		return nil
	}

	PrintTableHeader([]string{"CODE", "NAME", "QTY", "ENTRY", "DATE", "PEAK", "LEVEL", "AVG"}, positionWidths)
	for _, code := range codes {
		p := positions[code]
		h := held[code]
		PrintTableRow([]string{
			code,
			truncateName(h.Name, 14),
			fmt.Sprintf("%d", h.Quantity),
			formatWon(p.EntryPrice),
			p.EntryDate,
			formatWon(p.PeakPrice),
			formatWon(p.BreakoutLevel),
			formatWon(h.AvgPrice),
		}, positionWidths)
	}
	return nil
}
