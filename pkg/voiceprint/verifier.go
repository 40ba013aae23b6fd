package voiceprint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/haivivi/voicematch/pkg/audio/feature"
	"github.com/haivivi/voicematch/pkg/audio/waveform"
)

// Loader loads a waveform at the extractor's sample rate.
type Loader interface {
	Load(ctx context.Context, path string) (waveform.Waveform, error)
}

// Extractor computes a normalized feature matrix.
type Extractor interface {
	Extract(w waveform.Waveform) (*feature.Matrix, error)
}

// VerifierConfig configures a Verifier.
type VerifierConfig struct {
	Loader    Loader
	Extractor Extractor
	Model     Model

	// Stats, when set, is applied to every feature matrix before
	// embedding.
	Stats *feature.Stats

	// Duration is the segment length in seconds (default 3).
	Duration float64

	// Threshold is the match threshold, used as given. Zero is a valid
	// threshold; callers wanting the usual decision pass DefaultThreshold.
	Threshold float64

	// Logger is optional. If nil, uses slog.Default().
	Logger *slog.Logger
}

// Verifier runs the load → segment → features → embed → decide pipeline.
// It is safe for concurrent use when its collaborators are.
type Verifier struct {
	cfg    VerifierConfig
	logger *slog.Logger
}

// Result is the outcome of Verify.
type Result struct {
	Path1      string  `json:"path1" yaml:"path1"`
	Path2      string  `json:"path2" yaml:"path2"`
	Similarity float64 `json:"similarity" yaml:"similarity"`
	Threshold  float64 `json:"threshold" yaml:"threshold"`
	Match      bool    `json:"match" yaml:"match"`
}

// NewVerifier creates a Verifier. Loader, Extractor and Model are required.
func NewVerifier(cfg VerifierConfig) (*Verifier, error) {
	if cfg.Loader == nil || cfg.Extractor == nil || cfg.Model == nil {
		return nil, errors.New("voiceprint: verifier needs a loader, an extractor and a model")
	}
	if cfg.Duration <= 0 {
		cfg.Duration = 3
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{cfg: cfg, logger: logger}, nil
}

// Threshold returns the configured match threshold.
func (v *Verifier) Threshold() float64 { return v.cfg.Threshold }

// Features loads path and returns its (optionally stats-normalized)
// feature matrix.
func (v *Verifier) Features(ctx context.Context, path string) (*feature.Matrix, error) {
	w, err := v.cfg.Loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	w = waveform.Select(w, v.cfg.Duration, waveform.ModeInfer, nil)
	m, err := v.cfg.Extractor.Extract(w)
	if err != nil {
		return nil, err
	}
	if v.cfg.Stats != nil {
		if err := v.cfg.Stats.Apply(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Embed returns the embedding of the audio file at path.
func (v *Verifier) Embed(ctx context.Context, path string) ([]float32, error) {
	start := time.Now()
	m, err := v.Features(ctx, path)
	if err != nil {
		return nil, err
	}
	emb, err := v.cfg.Model.Embed(m)
	if err != nil {
		return nil, fmt.Errorf("voiceprint: embed %s: %w", path, err)
	}
	v.logger.Debug("voiceprint: embedded",
		"path", path,
		"bins", m.Bins,
		"frames", m.Frames,
		"dim", len(emb),
		"elapsed", time.Since(start),
	)
	return emb, nil
}

// Verify embeds both files concurrently and decides whether they come from
// the same speaker.
func (v *Verifier) Verify(ctx context.Context, path1, path2 string) (*Result, error) {
	var e1, e2 []float32
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		e1, err = v.Embed(ctx, path1)
		return err
	})
	g.Go(func() (err error) {
		e2, err = v.Embed(ctx, path2)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d, err := Decide(e1, e2, v.cfg.Threshold)
	if err != nil {
		return nil, err
	}
	return &Result{
		Path1:      path1,
		Path2:      path2,
		Similarity: d.Similarity,
		Threshold:  v.cfg.Threshold,
		Match:      d.Match,
	}, nil
}
