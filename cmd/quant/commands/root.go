package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kyungsooNa/Investment-sub000/pkg/config"
)

var (
	// Global flags
	strategyFile string
	env          string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "유니버스 발굴 & 돌파 시그널 엔진",
	Long: `Universe Discovery & Breakout Signal Engine

KOSPI/KOSDAQ 종목을 매일 Pool A 로 추리고, 장중 순위 API 로 Pool B 를 보충해
워치리스트를 만든 뒤, 돌파 전략이 BUY/SELL 시그널을 발행합니다.

Usage:
  go run ./cmd/quant [command]

Examples:
  go run ./cmd/quant poola generate
  go run ./cmd/quant watchlist show
  go run ./cmd/quant timing KOSDAQ
  go run ./cmd/quant scheduler start
  go run ./cmd/quant api`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML (default: STRATEGY_CONFIG 또는 내장 기본값)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (LOG_LEVEL=debug)")
}

// loadConfig reads the environment and applies global flag overrides
func loadConfig() (*config.Config, error) {
	if env != "" {
		// config.Load 는 환경변수만 읽으므로 플래그는 환경변수로 전달
		if err := os.Setenv("ENV", env); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if strategyFile != "" {
		cfg.Engine.StrategyConfigPath = strategyFile
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}
