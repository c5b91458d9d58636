package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
	"github.com/kyungsooNa/Investment-sub000/internal/marketclock"
	"github.com/kyungsooNa/Investment-sub000/pkg/logger"
)

// Strategy is the signal state machine driven by the trading loop
type Strategy interface {
	Scan(ctx context.Context) []contracts.TradeSignal
	CheckExits(ctx context.Context, holdings []contracts.Holding) []contracts.TradeSignal
}

// TradeJob runs one trading cycle: Scan → CheckExits → publish
// ⭐ SSOT: 장중 매매 루프는 이 Job에서만
type TradeJob struct {
	strategy Strategy
	holdings contracts.HoldingsProvider
	sinks    []contracts.SignalSink
	clock    contracts.MarketClock
	schedule string
	logger   *logger.Logger
}

// NewTradeJob creates the trading loop job. 시그널은 sinks 순서대로 전달된다
func NewTradeJob(s Strategy, h contracts.HoldingsProvider, clock contracts.MarketClock, log *logger.Logger, sinks ...contracts.SignalSink) *TradeJob {
	return &TradeJob{
		strategy: s,
		holdings: h,
		sinks:    sinks,
		clock:    clock,
		schedule: "*/30 * 9-15 * * 1-5",
		logger:   log.WithField("job", "trading_loop"),
	}
}

// WithInterval replaces the default schedule with a fixed interval.
// 장 시간 밖의 호출은 Run 에서 걸러진다
func (j *TradeJob) WithInterval(d time.Duration) *TradeJob {
	if d > 0 {
		j.schedule = fmt.Sprintf("@every %s", d)
	}
	return j
}

// Name returns the job name
func (j *TradeJob) Name() string {
	return "trading_loop"
}

// Schedule returns the cron schedule (기본: 장중 30초마다)
func (j *TradeJob) Schedule() string {
	return j.schedule
}

// Run executes one cycle while the session is open
func (j *TradeJob) Run(ctx context.Context) error {
	if !marketclock.IsSessionOpen(j.clock) {
		return nil
	}

	// 발행 실패가 있어도 청산 평가는 진행
	buys, scanErr := j.ScanOnce(ctx)
	sells, exitErr := j.ExitsOnce(ctx)

	if len(buys)+len(sells) > 0 {
		j.logger.WithFields(map[string]interface{}{
			"buys":  len(buys),
			"sells": len(sells),
		}).Info("Trading cycle emitted signals")
	}
	return errors.Join(scanErr, exitErr)
}

// ScanOnce runs the entry scan and publishes BUY signals
func (j *TradeJob) ScanOnce(ctx context.Context) ([]contracts.TradeSignal, error) {
	buys := j.strategy.Scan(ctx)
	return buys, j.publish(ctx, buys)
}

// ExitsOnce evaluates held positions and publishes SELL signals
func (j *TradeJob) ExitsOnce(ctx context.Context) ([]contracts.TradeSignal, error) {
	holdings, err := j.holdings.Holdings(ctx)
	if err != nil {
		return nil, fmt.Errorf("holdings: %w", err)
	}
	sells := j.strategy.CheckExits(ctx, holdings)
	return sells, j.publish(ctx, sells)
}

// publish hands signals to every sink; one failing sink does not block the others
func (j *TradeJob) publish(ctx context.Context, signals []contracts.TradeSignal) error {
	if len(signals) == 0 {
		return nil
	}

	var errs []error
	for _, sink := range j.sinks {
		if err := sink.SaveSignals(ctx, signals); err != nil {
			j.logger.WithError(err).Error("Signal sink failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
