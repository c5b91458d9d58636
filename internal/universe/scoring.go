package universe

import (
	"context"
	"math"
	"sort"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
)

// rsScores awards bonus to every return at or above the top-percentile cutoff.
// cutoff index = floor(n * (1 - topPct/100)), clamped to n-1; n=1 always scores.
func rsScores(returns []float64, topPct, bonus float64) []float64 {
	n := len(returns)
	scores := make([]float64, n)
	if n == 0 {
		return scores
	}

	sorted := append([]float64(nil), returns...)
	sort.Float64s(sorted)

	idx := int(math.Floor(float64(n) * (1 - topPct/100)))
	if idx > n-1 {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	cutoff := sorted[idx]

	for i, r := range returns {
		if r >= cutoff {
			scores[i] = bonus
		}
	}
	return scores
}

// growthScore awards bonus when operating-profit growth reaches the threshold
func growthScore(ratio contracts.FinancialRatio, thresholdPct, bonus float64) float64 {
	if !ratio.Found {
		return 0
	}
	if ratio.OperatingProfitGrowth >= thresholdPct {
		return bonus
	}
	return 0
}

// scoreBatch recomputes RS and growth scores for items in place
// 점수는 항상 배치 단위로 다시 계산한다
func (e *Engine) scoreBatch(ctx context.Context, items []contracts.WatchlistItem) {
	if len(items) == 0 {
		return
	}
	sc := e.cfg.Scoring

	returns := make([]float64, len(items))
	for i, it := range items {
		returns[i] = it.RSReturn
	}
	rs := rsScores(returns, sc.RSTopPercentile, sc.RSBonus)

	codes := make([]string, len(items))
	for i, it := range items {
		codes[i] = it.Code
	}
	ratios := runChunked(ctx, codes, e.cfg.Batch.ChunkSize, e.cfg.Batch.ChunkDelay,
		func(ctx context.Context, code string) (contracts.FinancialRatio, error) {
			return e.md.FinancialRatio(ctx, code)
		})

	for i := range items {
		growth := 0.0
		if ratios[i].Err != nil {
			e.log.WithFields(map[string]interface{}{
				"code": items[i].Code,
			}).WithError(ratios[i].Err).Debug("financial ratio unavailable, growth score 0")
		} else {
			growth = growthScore(ratios[i].Value, sc.GrowthThresholdPct, sc.GrowthBonus)
		}
		items[i].ApplyScores(rs[i], growth)
	}
}
