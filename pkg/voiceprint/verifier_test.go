package voiceprint

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/haivivi/voicematch/pkg/audio/feature"
	"github.com/haivivi/voicematch/pkg/audio/loader"
	"github.com/haivivi/voicematch/pkg/storage"
)

// firstValuesModel embeds a matrix as its first dim values. It is
// deterministic, so identical clips embed identically.
type firstValuesModel struct {
	dim int
}

func (m firstValuesModel) Embed(fm *feature.Matrix) ([]float32, error) {
	out := make([]float32, m.dim)
	copy(out, fm.Data)
	return out, nil
}

func (m firstValuesModel) Dimension() int { return m.dim }
func (m firstValuesModel) Close() error   { return nil }

// writeNoiseWAV writes seconds of 16 kHz 16-bit noise to dir/name. A zero
// seed writes silence.
func writeNoiseWAV(t *testing.T, dir, name string, seconds float64, seed uint64) {
	t.Helper()
	n := int(seconds * 16000)
	data := make([]int, n)
	if seed != 0 {
		rng := rand.New(rand.NewPCG(seed, seed))
		for i := range data {
			data[i] = rng.IntN(16000) - 8000
		}
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	enc := wav.NewEncoder(f, 16000, 16, 1, 1)
	if err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 16000},
		Data:           data,
		SourceBitDepth: 16,
	}); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func newTestVerifier(t *testing.T, stats *feature.Stats) (*Verifier, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocal(dir)
	if err != nil {
		t.Fatal(err)
	}
	ex, err := feature.New(feature.DefaultConfig(feature.MelSpectrogram))
	if err != nil {
		t.Fatal(err)
	}
	v, err := NewVerifier(VerifierConfig{
		Loader:    loader.New(store),
		Extractor: ex,
		Model:     firstValuesModel{dim: 64},
		Stats:     stats,
		Threshold: DefaultThreshold,
	})
	if err != nil {
		t.Fatal(err)
	}
	return v, dir
}

func TestVerifySameClip(t *testing.T) {
	v, dir := newTestVerifier(t, nil)
	writeNoiseWAV(t, dir, "a.wav", 4, 1)

	res, err := v.Verify(context.Background(), "a.wav", "a.wav")
	if err != nil {
		t.Fatal(err)
	}
	if res.Similarity != 1 || !res.Match {
		t.Errorf("same clip: %+v, want similarity 1 and match", res)
	}
	if res.Threshold != DefaultThreshold {
		t.Errorf("threshold = %v", res.Threshold)
	}
}

func TestVerifyDifferentClips(t *testing.T) {
	v, dir := newTestVerifier(t, nil)
	writeNoiseWAV(t, dir, "a.wav", 2, 1)
	writeNoiseWAV(t, dir, "b.wav", 2, 2)

	res, err := v.Verify(context.Background(), "a.wav", "b.wav")
	if err != nil {
		t.Fatal(err)
	}
	if res.Similarity >= 1 || res.Similarity < -1 {
		t.Errorf("similarity = %v", res.Similarity)
	}
	if res.Path1 != "a.wav" || res.Path2 != "b.wav" {
		t.Errorf("paths = %q %q", res.Path1, res.Path2)
	}
}

func TestVerifyErrors(t *testing.T) {
	v, dir := newTestVerifier(t, nil)
	writeNoiseWAV(t, dir, "a.wav", 1, 1)
	writeNoiseWAV(t, dir, "silent.wav", 1, 0)

	if _, err := v.Verify(context.Background(), "a.wav", "missing.wav"); !errors.Is(err, loader.ErrIO) {
		t.Errorf("expected loader.ErrIO, got %v", err)
	}
	// Silence normalizes to all zeros, which has no direction.
	if _, err := v.Verify(context.Background(), "a.wav", "silent.wav"); !errors.Is(err, ErrDegenerateVector) {
		t.Errorf("expected ErrDegenerateVector, got %v", err)
	}
}

func TestVerifierStatsMismatch(t *testing.T) {
	stats := &feature.Stats{Mean: []float32{0, 0, 0}, Std: []float32{1, 1, 1}}
	v, dir := newTestVerifier(t, stats)
	writeNoiseWAV(t, dir, "a.wav", 1, 1)
	if _, err := v.Embed(context.Background(), "a.wav"); !errors.Is(err, feature.ErrStatsMismatch) {
		t.Fatalf("expected feature.ErrStatsMismatch, got %v", err)
	}
}

func TestVerifierFeaturesTruncated(t *testing.T) {
	v, dir := newTestVerifier(t, nil)
	writeNoiseWAV(t, dir, "long.wav", 5, 3)
	m, err := v.Features(context.Background(), "long.wav")
	if err != nil {
		t.Fatal(err)
	}
	// 3 s prefix: 48000 samples -> 301 frames.
	if m.Bins != 80 || m.Frames != 301 {
		t.Errorf("shape = (%d, %d), want (80, 301)", m.Bins, m.Frames)
	}
}

func TestVerifierThresholdAsGiven(t *testing.T) {
	ex, err := feature.New(feature.DefaultConfig(feature.MelSpectrogram))
	if err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, th := range []float64{0, -0.5, DefaultThreshold} {
		v, err := NewVerifier(VerifierConfig{
			Loader:    loader.New(store),
			Extractor: ex,
			Model:     firstValuesModel{dim: 8},
			Threshold: th,
		})
		if err != nil {
			t.Fatal(err)
		}
		if got := v.Threshold(); got != th {
			t.Errorf("Threshold() = %v, want %v", got, th)
		}
	}
}

func TestNewVerifierRequiresCollaborators(t *testing.T) {
	if _, err := NewVerifier(VerifierConfig{}); err == nil {
		t.Fatal("expected error")
	}
}
