package universe

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
	"github.com/kyungsooNa/Investment-sub000/internal/marketclock"
	"github.com/kyungsooNa/Investment-sub000/internal/strategyconfig"
	"github.com/kyungsooNa/Investment-sub000/pkg/logger"
)

// Deps are the external collaborators of the engine
type Deps struct {
	MarketData contracts.MarketDataPort
	Indicators contracts.IndicatorPort
	Directory  contracts.SymbolDirectory
	Clock      contracts.MarketClock
	PoolAPath  string
}

// Engine owns Pool A, Pool B, the ranked Watchlist and the market-timing gate
// ⭐ SSOT: 워치리스트는 이 엔진만 갱신한다
type Engine struct {
	cfg   strategyconfig.UniverseConfig
	md    contracts.MarketDataPort
	ind   contracts.IndicatorPort
	dir   contracts.SymbolDirectory
	clock contracts.MarketClock
	poolA *PoolAStore
	log   *logger.Logger

	excludeName []*regexp.Regexp

	// 읽기는 잠금 없이, 교체는 빌드 끝에서 한 번
	watchlist atomic.Pointer[contracts.Watchlist]

	mu          sync.Mutex // 리빌드 bookkeeping
	day         string
	fired       map[int]bool
	poolAItems  []contracts.WatchlistItem
	poolALoaded bool
	lastBuild   BuildInfo

	timingMu sync.Mutex
	timing   map[contracts.Market]timingEntry
}

// BuildInfo describes the most recent rebuild
type BuildInfo struct {
	Trigger   string        `json:"trigger"`
	BuiltAt   time.Time     `json:"built_at"`
	PoolA     int           `json:"pool_a"`
	PoolB     int           `json:"pool_b"`
	Carried   int           `json:"carried"`
	Watchlist int           `json:"watchlist"`
	Duration  time.Duration `json:"duration"`
}

// New creates a universe engine
func New(cfg strategyconfig.UniverseConfig, deps Deps, log *logger.Logger) (*Engine, error) {
	if deps.MarketData == nil || deps.Indicators == nil || deps.Directory == nil || deps.Clock == nil {
		return nil, fmt.Errorf("universe: all ports are required")
	}
	if deps.PoolAPath == "" {
		return nil, fmt.Errorf("universe: pool A path is required")
	}

	patterns := make([]*regexp.Regexp, 0, len(cfg.Filters.ExcludeNamePatterns))
	for _, p := range cfg.Filters.ExcludeNamePatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("universe: exclude pattern %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}

	e := &Engine{
		cfg:         cfg,
		md:          deps.MarketData,
		ind:         deps.Indicators,
		dir:         deps.Directory,
		clock:       deps.Clock,
		poolA:       NewPoolAStore(deps.PoolAPath),
		log:         log.WithField("component", "universe"),
		excludeName: patterns,
		fired:       make(map[int]bool),
		timing:      make(map[contracts.Market]timingEntry),
	}
	empty := contracts.Watchlist{}
	e.watchlist.Store(&empty)
	return e, nil
}

// Current returns the published watchlist without triggering a rebuild
func (e *Engine) Current() contracts.Watchlist {
	return *e.watchlist.Load()
}

// LastBuild returns metadata about the most recent rebuild
func (e *Engine) LastBuild() BuildInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastBuild
}

// GetWatchlist returns the watchlist, rebuilding first on the first call of a
// day or when a not-yet-fired elapsed-minutes checkpoint has been crossed.
func (e *Engine) GetWatchlist(ctx context.Context) contracts.Watchlist {
	e.mu.Lock()
	defer e.mu.Unlock()

	today := marketclock.Today(e.clock)
	elapsed := marketclock.MinutesSinceOpen(e.clock)

	trigger := ""
	if e.day != today {
		e.rollover(today, elapsed)
		trigger = "first_call"
	} else {
		// 여러 체크포인트를 한 번에 지나도 리빌드는 한 번
		for _, cp := range e.cfg.RefreshCheckpointsMin {
			if !e.fired[cp] && elapsed >= float64(cp) {
				e.fired[cp] = true
				trigger = fmt.Sprintf("checkpoint_%dm", cp)
			}
		}
	}

	if trigger != "" {
		// 전일 워치리스트는 이월하지 않되, 새 목록이 완성될 때까지 게시 상태는 유지
		carry := e.Current()
		if trigger == "first_call" {
			carry = contracts.Watchlist{}
		}
		e.rebuild(ctx, trigger, carry)
	}
	return *e.watchlist.Load()
}

// rollover resets per-day markers. Checkpoints already in the past are
// marked fired so a restart does not cause a rebuild storm.
func (e *Engine) rollover(today string, elapsed float64) {
	e.day = today
	e.fired = make(map[int]bool, len(e.cfg.RefreshCheckpointsMin))
	for _, cp := range e.cfg.RefreshCheckpointsMin {
		if elapsed >= float64(cp) {
			e.fired[cp] = true
		}
	}
	e.poolAItems = nil
	e.poolALoaded = false

	e.log.WithFields(map[string]interface{}{
		"day":         today,
		"elapsed_min": elapsed,
		"pre_fired":   len(e.fired),
	}).Info("universe day rollover")
}

// rebuild builds and publishes a new watchlist. Caller holds e.mu.
func (e *Engine) rebuild(ctx context.Context, trigger string, carry contracts.Watchlist) {
	start := time.Now()
	info := e.buildWatchlist(ctx, carry)
	info.Trigger = trigger
	info.BuiltAt = e.clock.Now()
	info.Duration = time.Since(start)
	e.lastBuild = info

	e.log.WithFields(map[string]interface{}{
		"trigger":   trigger,
		"pool_a":    info.PoolA,
		"pool_b":    info.PoolB,
		"carried":   info.Carried,
		"watchlist": info.Watchlist,
		"duration":  info.Duration.String(),
	}).Info("watchlist rebuilt")
}

// buildWatchlist: Pool A load → Pool B discovery → merge → rank → swap.
// current 는 당일 이월 대상 (첫 빌드에서는 비어 있음)
func (e *Engine) buildWatchlist(ctx context.Context, current contracts.Watchlist) BuildInfo {
	poolA := e.loadPoolAOnce()

	inPoolA := make(map[string]bool, len(poolA))
	known := make(map[string]bool, len(poolA)+len(current))
	for _, it := range poolA {
		inPoolA[it.Code] = true
		known[it.Code] = true
	}
	for code := range current {
		known[code] = true
	}

	poolB := e.discoverPoolB(ctx, known)

	// 당일 이미 발견된 종목은 유지 (Pool B 재분석 대상에서 빠지므로)
	merged := make(map[string]contracts.WatchlistItem, len(poolA)+len(current)+len(poolB))
	carried := 0
	for code, it := range current {
		if !inPoolA[code] {
			merged[code] = it
			carried++
		}
	}
	for _, it := range poolB {
		merged[it.Code] = it
	}
	// Pool A 우선: 같은 날 Pool B 재발견이 속성을 덮어쓰지 않는다
	for _, it := range poolA {
		merged[it.Code] = it
	}

	items := make([]contracts.WatchlistItem, 0, len(merged))
	for _, it := range merged {
		items = append(items, it)
	}
	contracts.SortByRank(items)
	if len(items) > e.cfg.MaxWatchlist {
		items = items[:e.cfg.MaxWatchlist]
	}

	next := make(contracts.Watchlist, len(items))
	for _, it := range items {
		next[it.Code] = it
	}
	e.watchlist.Store(&next)

	return BuildInfo{
		PoolA:     len(poolA),
		PoolB:     len(poolB),
		Carried:   carried,
		Watchlist: len(next),
	}
}

// loadPoolAOnce loads Pool A from disk at most once per day. Caller holds e.mu.
func (e *Engine) loadPoolAOnce() []contracts.WatchlistItem {
	if e.poolALoaded {
		return e.poolAItems
	}
	e.poolALoaded = true

	snap, ok, err := e.poolA.LoadValid(e.day)
	switch {
	case err != nil:
		e.log.WithError(err).Warn("pool A load failed, using empty pool A")
	case !ok:
		e.log.WithField("day", e.day).Info("pool A absent or stale, using empty pool A")
	default:
		e.poolAItems = snap.Items()
		e.log.WithFields(map[string]interface{}{
			"generated_date": snap.GeneratedDate,
			"kospi":          len(snap.Kospi),
			"kosdaq":         len(snap.Kosdaq),
		}).Info("pool A loaded")
	}
	return e.poolAItems
}

// discoverPoolB runs the three ranking queries concurrently and analyzes new codes
func (e *Engine) discoverPoolB(ctx context.Context, known map[string]bool) []contracts.WatchlistItem {
	if e.cfg.PoolBSize == 0 {
		return nil
	}

	candidates := e.rankingCandidates(ctx)

	fresh := make([]contracts.RankedSymbol, 0, len(candidates))
	for _, c := range candidates {
		if !known[c.Code] {
			fresh = append(fresh, c)
		}
	}

	results := runChunked(ctx, fresh, e.cfg.Batch.ChunkSize, e.cfg.Batch.ChunkDelay,
		func(ctx context.Context, c contracts.RankedSymbol) (*contracts.WatchlistItem, error) {
			return e.AnalyzeCandidate(ctx, c.Code, c.Name)
		})

	survivors := make([]contracts.WatchlistItem, 0, len(results))
	for i, r := range results {
		if r.Err != nil {
			e.logRejection("pool_b", fresh[i].Code, r.Err)
			continue
		}
		survivors = append(survivors, *r.Value)
	}

	e.scoreBatch(ctx, survivors)
	contracts.SortByRank(survivors)
	if len(survivors) > e.cfg.PoolBSize {
		survivors = survivors[:e.cfg.PoolBSize]
	}

	e.log.WithFields(map[string]interface{}{
		"ranked":    len(candidates),
		"fresh":     len(fresh),
		"survivors": len(survivors),
	}).Debug("pool B discovery done")
	return survivors
}
