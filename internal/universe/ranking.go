package universe

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/kyungsooNa/Investment-sub000/internal/contracts"
)

type rankingQuery struct {
	kind string
	fn   func(ctx context.Context) ([]contracts.RankedSymbol, error)
}

// rankingCandidates issues the three ranking queries concurrently and merges
// the results deduplicated by code. A failed query contributes nothing.
func (e *Engine) rankingCandidates(ctx context.Context) []contracts.RankedSymbol {
	queries := []rankingQuery{
		{"traded_value", e.md.TopTradedValue},
		{"gainers", e.md.TopGainers},
		{"volume", e.md.TopVolume},
	}

	lists := make([][]contracts.RankedSymbol, len(queries))
	var g errgroup.Group
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			list, err := q.fn(ctx)
			if err != nil {
				e.log.WithField("ranking", q.kind).WithError(err).Warn("ranking query failed, continuing without it")
				return nil
			}
			lists[i] = list
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]bool)
	merged := make([]contracts.RankedSymbol, 0)
	for _, list := range lists {
		for _, s := range list {
			if s.Code == "" || seen[s.Code] {
				continue
			}
			seen[s.Code] = true
			merged = append(merged, s)
		}
	}
	return merged
}
