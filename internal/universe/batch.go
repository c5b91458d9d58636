package universe

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// taskResult holds one fan-out outcome; Err is captured, never propagated
type taskResult[T any] struct {
	Value T
	Err   error
}

// runChunked calls fn for every input, at most chunkSize concurrently per chunk,
// sleeping delay between chunks. Results are aligned to inputs.
// 개별 실패는 결과에 담기고 배치 전체는 항상 끝까지 진행된다
func runChunked[In, Out any](
	ctx context.Context,
	inputs []In,
	chunkSize int,
	delay time.Duration,
	fn func(ctx context.Context, in In) (Out, error),
) []taskResult[Out] {
	results := make([]taskResult[Out], len(inputs))
	if chunkSize <= 0 {
		chunkSize = 1
	}

	for start := 0; start < len(inputs); start += chunkSize {
		end := start + chunkSize
		if end > len(inputs) {
			end = len(inputs)
		}

		var g errgroup.Group
		g.SetLimit(chunkSize)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				v, err := fn(ctx, inputs[i])
				results[i] = taskResult[Out]{Value: v, Err: err}
				return nil
			})
		}
		_ = g.Wait()

		if end < len(inputs) && delay > 0 {
			select {
			case <-ctx.Done():
				for i := end; i < len(inputs); i++ {
					results[i].Err = ctx.Err()
				}
				return results
			case <-time.After(delay):
			}
		}
	}

	return results
}
