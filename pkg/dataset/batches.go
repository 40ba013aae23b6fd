package dataset

import (
	"context"
	"iter"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Source is an indexable collection of samples. *Dataset implements it.
type Source interface {
	Len() int
	Get(ctx context.Context, i int) (Sample, error)
}

// RandSource is a Source whose samples draw randomness. Batches forks one
// random source per sample in batch order before loading, so results do
// not depend on which worker finishes first.
type RandSource interface {
	Source
	Fork() *rand.Rand
	GetRand(ctx context.Context, i int, rng *rand.Rand) (Sample, error)
}

// BatchOptions controls Batches.
type BatchOptions struct {
	// Size is the number of samples per batch (default 32).
	Size int
	// Workers bounds concurrent sample loads (default GOMAXPROCS).
	Workers int
	// Shuffle permutes the sample order before batching.
	Shuffle bool
	// Rand drives the shuffle. A nil Rand uses a randomly seeded source.
	Rand *rand.Rand
}

// Batches iterates over src in batches. Samples of a batch are loaded
// concurrently; the final partial batch is kept. Iteration stops at the
// first error, which is yielded with a nil batch.
func Batches(ctx context.Context, src Source, opts BatchOptions) iter.Seq2[*Batch, error] {
	size := opts.Size
	if size <= 0 {
		size = 32
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return func(yield func(*Batch, error) bool) {
		order := make([]int, src.Len())
		for i := range order {
			order[i] = i
		}
		if opts.Shuffle {
			rng := opts.Rand
			if rng == nil {
				rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
			}
			rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		for start := 0; start < len(order); start += size {
			idx := order[start:min(start+size, len(order))]
			b, err := loadBatch(ctx, src, idx, workers)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(b, nil) {
				return
			}
		}
	}
}

func loadBatch(ctx context.Context, src Source, idx []int, workers int) (*Batch, error) {
	get := func(ctx context.Context, i, n int) (Sample, error) { return src.Get(ctx, n) }
	if rs, ok := src.(RandSource); ok {
		rngs := make([]*rand.Rand, len(idx))
		for i := range rngs {
			rngs[i] = rs.Fork()
		}
		get = func(ctx context.Context, i, n int) (Sample, error) { return rs.GetRand(ctx, n, rngs[i]) }
	}

	samples := make([]Sample, len(idx))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, n := range idx {
		g.Go(func() error {
			s, err := get(ctx, i, n)
			if err != nil {
				return err
			}
			samples[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Collate(samples)
}

var _ RandSource = (*Dataset)(nil)
