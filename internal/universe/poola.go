package universe

import (
	"context"
	"time"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
	"github.com/kyungsooNa/Investment-sub000/internal/marketclock"
	"github.com/kyungsooNa/Investment-sub000/internal/statefile"
)

// PoolAStore persists the daily-batch Pool A snapshot
type PoolAStore struct {
	path string
}

// NewPoolAStore creates a store at path
func NewPoolAStore(path string) *PoolAStore {
	return &PoolAStore{path: path}
}

// LoadValid returns the snapshot only if generated today or yesterday
func (s *PoolAStore) LoadValid(today string) (contracts.PoolASnapshot, bool, error) {
	var snap contracts.PoolASnapshot
	found, err := statefile.Read(s.path, &snap)
	if err != nil || !found {
		return contracts.PoolASnapshot{}, false, err
	}
	if !isFresh(snap.GeneratedDate, today) {
		return contracts.PoolASnapshot{}, false, nil
	}
	return snap, true, nil
}

// Save writes the snapshot atomically
func (s *PoolAStore) Save(snap contracts.PoolASnapshot) error {
	return statefile.Write(s.path, snap)
}

// isFresh: generated == today or generated == today-1 (달력 기준)
func isFresh(generated, today string) bool {
	if generated == today {
		return true
	}
	yesterday, err := marketclock.PreviousDate(today)
	if err != nil {
		return false
	}
	return generated == yesterday
}

// PoolAReport summarizes one GeneratePoolA run
type PoolAReport struct {
	GeneratedDate string        `json:"generated_date"`
	Total         int           `json:"total"`
	Excluded      int           `json:"excluded"`
	Stage1Passed  int           `json:"stage1_passed"`
	Stage2Passed  int           `json:"stage2_passed"`
	Kospi         int           `json:"kospi"`
	Kosdaq        int           `json:"kosdaq"`
	Persisted     bool          `json:"persisted"`
	Duration      time.Duration `json:"duration"`
}

// GeneratePoolA scans the full listed universe with a two-stage funnel and
// persists the per-market top candidates. Per-symbol failures are skipped.
func (e *Engine) GeneratePoolA(ctx context.Context) PoolAReport {
	start := time.Now()
	report := PoolAReport{GeneratedDate: marketclock.Today(e.clock)}
	f := e.cfg.Filters

	listed, err := e.dir.AllListed(ctx)
	if err != nil {
		e.log.WithError(err).Error("pool A: symbol directory unavailable")
		report.Duration = time.Since(start)
		return report
	}
	report.Total = len(listed)

	// Stage 0: 이름 기반 제외 (SPAC, 우선주, ETF/ETN)
	eligible := make([]contracts.ListedSymbol, 0, len(listed))
	for _, s := range listed {
		if e.excludedByName(s.Name) {
			report.Excluded++
			continue
		}
		eligible = append(eligible, s)
	}

	// Stage 1: 시가총액 범위 (스냅샷 1회)
	stage1 := runChunked(ctx, eligible, e.cfg.Batch.ChunkSize, e.cfg.Batch.ChunkDelay,
		func(ctx context.Context, s contracts.ListedSymbol) (bool, error) {
			q, err := e.md.CurrentQuote(ctx, s.Code)
			if err != nil {
				return false, contracts.Reject(s.Code, contracts.RejectQuoteFetch, contracts.ErrUpstreamUnavailable, "%v", err)
			}
			if q.MarketCap < f.MinMarketCap || q.MarketCap > f.MaxMarketCap {
				return false, contracts.Reject(s.Code, contracts.RejectMarketCap, contracts.ErrFilteredOut,
					"market cap %d outside [%d, %d]", q.MarketCap, f.MinMarketCap, f.MaxMarketCap)
			}
			return true, nil
		})

	passed := make([]contracts.ListedSymbol, 0)
	for i, r := range stage1 {
		if r.Err != nil {
			e.logRejection("pool_a_stage1", eligible[i].Code, r.Err)
			continue
		}
		passed = append(passed, eligible[i])
	}
	report.Stage1Passed = len(passed)

	// Stage 2: AnalyzeCandidate
	stage2 := runChunked(ctx, passed, e.cfg.Batch.ChunkSize, e.cfg.Batch.ChunkDelay,
		func(ctx context.Context, s contracts.ListedSymbol) (*contracts.WatchlistItem, error) {
			return e.AnalyzeCandidate(ctx, s.Code, s.Name)
		})

	survivors := make([]contracts.WatchlistItem, 0)
	for i, r := range stage2 {
		if r.Err != nil {
			e.logRejection("pool_a_stage2", passed[i].Code, r.Err)
			continue
		}
		survivors = append(survivors, *r.Value)
	}
	report.Stage2Passed = len(survivors)

	e.scoreBatch(ctx, survivors)
	contracts.SortByRank(survivors)

	snap := contracts.PoolASnapshot{
		GeneratedDate: report.GeneratedDate,
		Kospi:         []contracts.WatchlistItem{},
		Kosdaq:        []contracts.WatchlistItem{},
	}
	for _, it := range survivors {
		switch it.Market {
		case contracts.MarketKOSDAQ:
			if len(snap.Kosdaq) < e.cfg.PoolAPerMarket {
				snap.Kosdaq = append(snap.Kosdaq, it)
			}
		default:
			if len(snap.Kospi) < e.cfg.PoolAPerMarket {
				snap.Kospi = append(snap.Kospi, it)
			}
		}
	}
	report.Kospi = len(snap.Kospi)
	report.Kosdaq = len(snap.Kosdaq)

	if err := e.poolA.Save(snap); err != nil {
		e.log.WithError(err).Error("pool A persist failed")
	} else {
		report.Persisted = true
	}

	// 같은 날 이미 로드된 Pool A 캐시는 새 스냅샷으로 교체
	e.mu.Lock()
	if e.day == report.GeneratedDate {
		e.poolAItems = snap.Items()
		e.poolALoaded = true
	}
	e.mu.Unlock()

	report.Duration = time.Since(start)
	e.log.WithFields(map[string]interface{}{
		"total":         report.Total,
		"excluded":      report.Excluded,
		"stage1_passed": report.Stage1Passed,
		"stage2_passed": report.Stage2Passed,
		"kospi":         report.Kospi,
		"kosdaq":        report.Kosdaq,
		"persisted":     report.Persisted,
		"duration":      report.Duration.String(),
	}).Info("pool A generated")

	return report
}

// excludedByName matches SPAC / preferred / ETF-like names
func (e *Engine) excludedByName(name string) bool {
	for _, re := range e.excludeName {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
