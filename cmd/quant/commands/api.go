package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kyungsooNa/Investment-sub000/internal/api"
	"github.com/kyungsooNa/Investment-sub000/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                       - Health check
  GET  /api/watchlist                - 워치리스트 (필요 시 재빌드)
  GET  /api/positions                - 돌파 포지션 상태
  GET  /api/market-timing/{market}   - 시장 타이밍 게이트
  GET  /api/signals?limit=N          - 시그널 저널 (DATABASE_URL 필요)

Example:
  go run ./cmd/quant api
  go run ./cmd/quant api --port 8080 --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort          string
	apiWithScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
	apiCmd.Flags().BoolVar(&apiWithScheduler, "with-scheduler", false, "스케줄러를 같은 프로세스에서 실행")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	port := a.cfg.Port
	if apiPort != "" {
		port = apiPort
	}

	// 저널 미설정이면 /api/signals 는 503
	var signals handlers.SignalReader
	if a.journal != nil {
		signals = a.journal
	}

	engine := handlers.NewEngineHandler(a.universe, a.breakout, signals, a.log)
	server := api.New(port, a.log, api.NewRouter(engine, a.log))

	if apiWithScheduler {
		sched, err := a.newScheduler()
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", port)
	fmt.Println("\nPress Ctrl+C to stop")

	if err := server.Run(ctx); err != nil {
		return err
	}
	a.log.Info("Server stopped")
	return nil
}
