package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kyungsooNa/Investment-sub000/internal/scheduler"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/quant scheduler start
  go run ./cmd/quant scheduler list
  go run ./cmd/quant scheduler run pool_a_generation`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- pool_a_generation: 평일 07:30 (Pool A 생성, 실패 시 재시도)
- watchlist_warmup:  평일 09:05 (첫 워치리스트 빌드)
- trading_loop:      장중 TRADE_INTERVAL 마다 (스캔 + 청산 평가)

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := a.newScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	PrintHeader("Scheduler", map[string]string{"Strategy": a.breakout.Name()})
	sched.Start()

	PrintSuccess("Scheduler started successfully")
	printJobs(sched)
	fmt.Println("\nPress Ctrl+C to stop")

	<-ctx.Done()

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	printStats(sched)
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := a.newScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	printJobs(sched)
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := a.newScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Printf("Running job: %s\n", jobName)
	if err := sched.RunJob(jobName); err != nil {
		PrintError(err.Error())
		return fmt.Errorf("run job: %w", err)
	}
	PrintSuccess("Job completed")
	return nil
}

func printJobs(sched *scheduler.Scheduler) {
	stats := sched.GetJobStats()
	fmt.Println("\nRegistered jobs:")
	for _, name := range sched.JobNames() {
		fmt.Printf("  - %-20s %s\n", name, stats[name].Schedule)
	}
}

func printStats(sched *scheduler.Scheduler) {
	stats := sched.GetJobStats()
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nJob Statistics:")
	for _, name := range names {
		stat := stats[name]
		fmt.Printf("📊 %s\n", name)
		fmt.Printf("   Total Runs: %d\n", stat.TotalRuns)
		fmt.Printf("   Success: %d (%.1f%%)\n", stat.SuccessCount, stat.SuccessRate*100)
		fmt.Printf("   Failures: %d\n", stat.FailureCount)
		if stat.LastFailure != nil {
			fmt.Printf("   Last Failure: %s\n", stat.LastFailure.Format("2006-01-02 15:04:05"))
		}
	}
}
