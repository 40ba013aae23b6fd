package dataset

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/haivivi/voicematch/pkg/audio/feature"
	"github.com/haivivi/voicematch/pkg/audio/waveform"
)

// DefaultDuration is the segment length in seconds taken from each clip.
const DefaultDuration = 3.0

// Loader loads a waveform from a path. *loader.Loader implements it.
type Loader interface {
	Load(ctx context.Context, path string) (waveform.Waveform, error)
}

// Extractor computes a feature matrix. *feature.Extractor implements it.
type Extractor interface {
	Extract(w waveform.Waveform) (*feature.Matrix, error)
	Bins() int
}

// Dataset maps manifest entries to feature samples. It is safe for
// concurrent use.
type Dataset struct {
	entries   []Entry
	loader    Loader
	extractor Extractor
	mode      waveform.Mode
	duration  float64

	mu  sync.Mutex // guards rng
	rng *rand.Rand // forked per sample
}

// Option configures a Dataset.
type Option func(*Dataset)

// WithMode sets the segment selection mode. The default is
// waveform.ModeTrain.
func WithMode(m waveform.Mode) Option {
	return func(d *Dataset) { d.mode = m }
}

// WithDuration sets the segment length in seconds.
func WithDuration(seconds float64) Option {
	return func(d *Dataset) {
		if seconds > 0 {
			d.duration = seconds
		}
	}
}

// WithRand sets the random source used for train-mode segment selection.
func WithRand(rng *rand.Rand) Option {
	return func(d *Dataset) {
		if rng != nil {
			d.rng = rng
		}
	}
}

// New creates a dataset over entries.
func New(entries []Entry, loader Loader, extractor Extractor, opts ...Option) *Dataset {
	d := &Dataset{
		entries:   entries,
		loader:    loader,
		extractor: extractor,
		mode:      waveform.ModeTrain,
		duration:  DefaultDuration,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.rng == nil {
		d.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return d
}

// Len returns the number of entries.
func (d *Dataset) Len() int { return len(d.entries) }

// InputSize returns the bin count of every sample (80 for
// melspectrogram, 201 for spectrogram).
func (d *Dataset) InputSize() int { return d.extractor.Bins() }

// Entry returns entry i.
func (d *Dataset) Entry(i int) Entry { return d.entries[i] }

// Fork returns a random source seeded from the dataset's rng. Each call
// advances the dataset's rng, so forks taken in a fixed order are
// reproducible for a seeded dataset.
func (d *Dataset) Fork() *rand.Rand {
	d.mu.Lock()
	defer d.mu.Unlock()
	return rand.New(rand.NewPCG(d.rng.Uint64(), d.rng.Uint64()))
}

// Get loads, segments and featurizes entry i. In train mode the segment
// start is drawn from a fork taken when Get is called.
func (d *Dataset) Get(ctx context.Context, i int) (Sample, error) {
	var rng *rand.Rand
	if d.mode == waveform.ModeTrain {
		rng = d.Fork()
	}
	return d.GetRand(ctx, i, rng)
}

// GetRand is Get with the train-mode segment start drawn from rng. rng is
// unused in infer mode.
func (d *Dataset) GetRand(ctx context.Context, i int, rng *rand.Rand) (Sample, error) {
	if i < 0 || i >= len(d.entries) {
		return Sample{}, fmt.Errorf("dataset: index %d out of range [0, %d)", i, len(d.entries))
	}
	e := d.entries[i]
	w, err := d.loader.Load(ctx, e.Path)
	if err != nil {
		return Sample{}, err
	}

	w = waveform.Select(w, d.duration, d.mode, rng)

	m, err := d.extractor.Extract(w)
	if err != nil {
		return Sample{}, fmt.Errorf("dataset: %s: %w", e.Path, err)
	}
	return Sample{Features: m, Label: e.Label}, nil
}
