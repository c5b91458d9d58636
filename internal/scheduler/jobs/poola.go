package jobs

import (
	"context"
	"fmt"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
	"github.com/kyungsooNa/Investment-sub000/internal/marketclock"
	"github.com/kyungsooNa/Investment-sub000/internal/universe"
	"github.com/kyungsooNa/Investment-sub000/pkg/logger"
)

// PoolAGenerator runs the pre-market Pool A generation
type PoolAGenerator interface {
	GeneratePoolA(ctx context.Context) universe.PoolAReport
}

// PoolAJob generates the Pool A snapshot before the open
// ⭐ SSOT: Pool A 생성 스케줄은 이 Job에서만
type PoolAJob struct {
	engine PoolAGenerator
	clock  contracts.MarketClock
	logger *logger.Logger
}

// NewPoolAJob creates a new Pool A job
func NewPoolAJob(engine PoolAGenerator, clock contracts.MarketClock, log *logger.Logger) *PoolAJob {
	return &PoolAJob{
		engine: engine,
		clock:  clock,
		logger: log.WithField("job", "pool_a_generation"),
	}
}

// Name returns the job name
func (j *PoolAJob) Name() string {
	return "pool_a_generation"
}

// Schedule returns the cron schedule (평일 07:30 KST)
func (j *PoolAJob) Schedule() string {
	return "0 30 7 * * 1-5"
}

// MaxRetries: 디렉토리/시세 장애 시 재시도
func (j *PoolAJob) MaxRetries() int {
	return 2
}

// Run generates and persists Pool A
func (j *PoolAJob) Run(ctx context.Context) error {
	if !marketclock.IsTradingDay(j.clock.Now()) {
		j.logger.Info("Not a trading day, skipping Pool A generation")
		return nil
	}

	report := j.engine.GeneratePoolA(ctx)
	if !report.Persisted {
		return fmt.Errorf("pool A not persisted (total=%d, selected=%d)", report.Total, report.Kospi+report.Kosdaq)
	}

	j.logger.WithFields(map[string]interface{}{
		"date":   report.GeneratedDate,
		"kospi":  report.Kospi,
		"kosdaq": report.Kosdaq,
	}).Info("Pool A generated")
	return nil
}
