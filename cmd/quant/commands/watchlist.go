package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// watchlistCmd represents the watchlist command
var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "워치리스트 조회",
	Long: `Pool A + Pool B 를 합친 워치리스트를 빌드하고 점수 순으로 출력합니다.

장 시작 후 첫 호출 또는 리프레시 체크포인트를 지난 경우에만 재빌드됩니다.

Example:
  go run ./cmd/quant watchlist show
  go run ./cmd/quant watchlist show --top 10`,
}

var watchlistShowCmd = &cobra.Command{
	Use:   "show",
	Short: "워치리스트 출력",
	RunE:  runWatchlistShow,
}

var watchlistTop int

func init() {
	rootCmd.AddCommand(watchlistCmd)
	watchlistCmd.AddCommand(watchlistShowCmd)

	watchlistShowCmd.Flags().IntVar(&watchlistTop, "top", 0, "상위 N개만 출력 (0 = 전체)")
}

func runWatchlistShow(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	items := a.universe.GetWatchlist(ctx).Ranked()
	build := a.universe.LastBuild()

	PrintHeader("Watchlist", map[string]string{
		"Trigger": build.Trigger,
		"Pool A":  fmt.Sprintf("%d", build.PoolA),
		"Pool B":  fmt.Sprintf("%d", build.PoolB),
		"Carried": fmt.Sprintf("%d", build.Carried),
		"Elapsed": build.Duration.String(),
	})

	if len(items) == 0 {
		PrintWarning("Watchlist is empty (Pool A 미생성 또는 장 시작 전)")
		return nil
	}
	if watchlistTop > 0 && watchlistTop < len(items) {
		items = items[:watchlistTop]
	}
	PrintWatchlist(items)
	return nil
}
