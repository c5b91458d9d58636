package jobs

import (
	"context"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
	"github.com/kyungsooNa/Investment-sub000/internal/marketclock"
	"github.com/kyungsooNa/Investment-sub000/pkg/logger"
)

// WatchlistSource builds or returns the current watchlist
type WatchlistSource interface {
	GetWatchlist(ctx context.Context) contracts.Watchlist
}

// WarmupJob builds the first watchlist of the day shortly after the open
type WarmupJob struct {
	universe WatchlistSource
	clock    contracts.MarketClock
	logger   *logger.Logger
}

// NewWarmupJob creates a new warmup job
func NewWarmupJob(u WatchlistSource, clock contracts.MarketClock, log *logger.Logger) *WarmupJob {
	return &WarmupJob{universe: u, clock: clock, logger: log.WithField("job", "watchlist_warmup")}
}

// Name returns the job name
func (j *WarmupJob) Name() string {
	return "watchlist_warmup"
}

// Schedule returns the cron schedule (평일 09:05 KST)
func (j *WarmupJob) Schedule() string {
	return "0 5 9 * * 1-5"
}

// Run triggers the day's first watchlist build
func (j *WarmupJob) Run(ctx context.Context) error {
	if !marketclock.IsTradingDay(j.clock.Now()) {
		return nil
	}
	w := j.universe.GetWatchlist(ctx)
	j.logger.WithField("watchlist", len(w)).Info("Watchlist warmed up")
	return nil
}
