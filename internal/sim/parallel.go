package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Factory builds an independent session for one seed.
type Factory func(seed int64) (*Session, error)

// Ensemble runs a batch of independently seeded sessions. Seeds are
// consecutive from seedStart; at most one run per CPU is in flight.
type Ensemble struct {
	build     Factory
	numRuns   int
	seedStart int64
	limit     int
}

func NewEnsemble(build Factory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart, limit: runtime.NumCPU()}
}

// Run returns one result per seed, in seed order. The first failing run
// cancels the rest and its error is returned.
func (e *Ensemble) Run(ctx context.Context, cfg RunConfig) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.limit, 1))

	for i := range e.numRuns {
		runCfg := cfg
		runCfg.Seed = e.seedStart + int64(i)

		g.Go(func() error {
			s, err := e.build(runCfg.Seed)
			if err != nil {
				return err
			}
			defer s.Stop()

			r, err := s.Run(ctx, runCfg)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
