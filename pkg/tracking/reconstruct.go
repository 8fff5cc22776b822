package tracking

import (
	"context"
	"log"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ProgressInterval bounds how often Reconstruct logs progress.
var ProgressInterval = 5 * time.Second

// Reconstruct segments every aircraft in fleet using up to workers goroutines
// (runtime.NumCPU when workers <= 0). Aircraft are independent, so the result is
// the same for any worker count: flights grouped by aircraft identifier in
// ascending order, each aircraft's flights in the order they were flown.
func Reconstruct(ctx context.Context, fleet map[string]*Aircraft, locator AirportLocator, p Params, workers int) ([]Flight, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ids := SortedIdentifiers(fleet)
	results := make([][]Flight, len(ids))

	var done atomic.Int64
	progress := rate.Sometimes{Interval: ProgressInterval}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for i, id := range ids {
		i, id := i, id
		if gctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = Segment(fleet[id], locator, p)

			n := done.Add(1)
			progress.Do(func() {
				log.Printf("  Segmented %d/%d aircraft", n, len(ids))
			})
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	flights := make([]Flight, 0, total)
	for _, r := range results {
		flights = append(flights, r...)
	}
	return flights, nil
}
