package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
	"github.com/kyungsooNa/Investment-sub000/internal/external/kis"
	"github.com/kyungsooNa/Investment-sub000/internal/external/naver"
	"github.com/kyungsooNa/Investment-sub000/internal/indicator"
	"github.com/kyungsooNa/Investment-sub000/internal/journal"
	"github.com/kyungsooNa/Investment-sub000/internal/marketclock"
	"github.com/kyungsooNa/Investment-sub000/internal/marketdata"
	"github.com/kyungsooNa/Investment-sub000/internal/paperbook"
	"github.com/kyungsooNa/Investment-sub000/internal/scheduler"
	"github.com/kyungsooNa/Investment-sub000/internal/scheduler/jobs"
	"github.com/kyungsooNa/Investment-sub000/internal/strategy"
	"github.com/kyungsooNa/Investment-sub000/internal/strategyconfig"
	"github.com/kyungsooNa/Investment-sub000/internal/universe"
	"github.com/kyungsooNa/Investment-sub000/pkg/config"
	"github.com/kyungsooNa/Investment-sub000/pkg/database"
	"github.com/kyungsooNa/Investment-sub000/pkg/httputil"
	"github.com/kyungsooNa/Investment-sub000/pkg/logger"
	"github.com/kyungsooNa/Investment-sub000/pkg/redis"
)

// app holds the fully wired engine graph shared by every command
// ⭐ SSOT: 의존성 조립은 여기서만
type app struct {
	cfg      *config.Config
	strategy *strategyconfig.Config
	log      *logger.Logger
	clock    contracts.MarketClock

	kis        *kis.Client
	directory  *naver.Client
	marketData contracts.MarketDataPort

	universe *universe.Engine
	breakout *strategy.Breakout

	holdings contracts.HoldingsProvider
	sinks    []contracts.SignalSink
	journal  *journal.SignalRepository // DATABASE_URL 미설정 시 nil

	closers []func()
}

func newApp(ctx context.Context) (*app, error) {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Strategy/universe parameters (YAML or defaults)
	stratCfg, err := strategyconfig.LoadOrDefault(cfg.Engine.StrategyConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load strategy config: %w", err)
	}
	hash, err := strategyconfig.Hash(stratCfg)
	if err != nil {
		return nil, fmt.Errorf("hash strategy config: %w", err)
	}

	a := &app{
		cfg:      cfg,
		strategy: stratCfg,
		log:      log,
		clock:    marketclock.NewKRX(),
	}

	log.WithFields(map[string]interface{}{
		"env":         cfg.Env,
		"strategy":    stratCfg.Strategy.Name,
		"config_hash": hash,
		"paper_mode":  cfg.Engine.PaperMode,
	}).Info("Initializing engine")

	// 4. HTTP clients (KIS 는 초당 호출 한도 적용)
	rps := cfg.KIS.RequestsPerSecond
	kisHTTP := httputil.New(log).WithRateLimit(float64(rps), rps)
	naverHTTP := httputil.New(log)

	// 5. External API clients
	a.kis = kis.NewClient(cfg.KIS, kisHTTP, log)
	a.directory = naver.NewClient(cfg.Naver.BaseURL, naverHTTP, log)

	// 6. Redis cache (실패 시 메모리 캐시만 사용)
	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, using in-process cache only")
		rc = redis.NewDisabled()
	}
	a.closers = append(a.closers, func() { _ = rc.Close() })
	a.marketData = marketdata.NewCached(a.kis, redis.NewCache(rc, "quant"), a.clock, log)

	// 7. Universe engine
	a.universe, err = universe.New(stratCfg.Universe, universe.Deps{
		MarketData: a.marketData,
		Indicators: indicator.New(),
		Directory:  a.directory,
		Clock:      a.clock,
		PoolAPath:  cfg.Engine.PoolAPath(),
	}, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init universe: %w", err)
	}

	// 8. Breakout strategy
	a.breakout, err = strategy.New(stratCfg.Strategy, strategy.Deps{
		Universe:   a.universe,
		MarketData: a.marketData,
		Clock:      a.clock,
		StatePath:  cfg.Engine.PositionStatePath(),
		Directory:  a.directory,
	}, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init strategy: %w", err)
	}

	// 9. Holdings source + signal sinks
	if err := a.wireAccount(ctx); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// wireAccount picks the holdings provider and signal sinks.
// 모의(paper) 모드: 내부 장부가 보유종목과 시그널 반영을 모두 담당
func (a *app) wireAccount(ctx context.Context) error {
	if a.cfg.Engine.PaperMode {
		book, err := paperbook.Open(a.cfg.Engine.PaperBookPath(), a.log)
		if err != nil {
			return fmt.Errorf("open paper book: %w", err)
		}
		a.holdings = book
		a.sinks = append(a.sinks, book)
	} else {
		a.holdings = a.kis
	}

	if !a.cfg.Database.Enabled() {
		return nil
	}

	db, err := database.New(ctx, a.cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	a.closers = append(a.closers, db.Close)

	repo := journal.NewSignalRepository(db.Pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	a.journal = repo
	a.sinks = append(a.sinks, repo)
	a.log.Info("Signal journal connected")
	return nil
}

// tradeJob builds the intraday trading loop over the wired sinks
func (a *app) tradeJob() *jobs.TradeJob {
	return jobs.NewTradeJob(a.breakout, a.holdings, a.clock, a.log, a.sinks...).
		WithInterval(a.cfg.Engine.TradeInterval)
}

// newScheduler registers every engine job
func (a *app) newScheduler() (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.log)

	for _, job := range []scheduler.Job{
		jobs.NewPoolAJob(a.universe, a.clock, a.log),
		jobs.NewWarmupJob(a.universe, a.clock, a.log),
		a.tradeJob(),
	} {
		if err := sched.AddJob(job); err != nil {
			return nil, fmt.Errorf("register %s: %w", job.Name(), err)
		}
	}
	return sched, nil
}

// Close releases connections in reverse order
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// signalContext cancels on Ctrl+C / SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
