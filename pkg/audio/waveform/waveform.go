// Package waveform defines the mono waveform passed between pipeline stages
// and the fixed-length segment selection applied before feature extraction.
package waveform

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// DefaultRate is the pipeline sample rate in Hz.
const DefaultRate = 16000

// Waveform is a mono clip. Samples are in [-1, 1].
type Waveform struct {
	Samples []float32
	Rate    int
}

// Len returns the number of samples.
func (w Waveform) Len() int { return len(w.Samples) }

// Duration returns the clip length. A zero rate yields zero.
func (w Waveform) Duration() time.Duration {
	if w.Rate <= 0 {
		return 0
	}
	return time.Duration(len(w.Samples)) * time.Second / time.Duration(w.Rate)
}

// Mode chooses how Select picks a segment.
type Mode int

const (
	// ModeInfer takes the leading segment.
	ModeInfer Mode = iota
	// ModeTrain takes a uniformly random segment.
	ModeTrain
)

func (m Mode) String() string {
	switch m {
	case ModeInfer:
		return "infer"
	case ModeTrain:
		return "train"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "train" or "infer" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "infer":
		return ModeInfer, nil
	case "train":
		return ModeTrain, nil
	}
	return 0, fmt.Errorf("waveform: unknown mode %q (want train or infer)", s)
}

// ChunkSamples returns the segment length in samples for a duration,
// rounding down.
func ChunkSamples(durationSeconds float64, rate int) int {
	return int(durationSeconds * float64(rate))
}

// Select returns a segment of w of the configured duration.
//
// When w is longer than chunk+1 samples, ModeTrain returns a random window
// [start, start+chunk) with start uniform in [0, len-chunk-1], and ModeInfer
// returns the first chunk samples. Shorter clips are returned unchanged;
// no padding happens here. The returned samples share w's backing array.
//
// rng must be non-nil in ModeTrain; it is ignored in ModeInfer.
func Select(w Waveform, durationSeconds float64, mode Mode, rng *rand.Rand) Waveform {
	chunk := ChunkSamples(durationSeconds, w.Rate)
	n := len(w.Samples)
	if n <= chunk+1 {
		return w
	}
	start := 0
	if mode == ModeTrain {
		if rng == nil {
			panic("waveform: Select in train mode requires a non-nil rng")
		}
		start = rng.IntN(n - chunk)
	}
	return Waveform{Samples: w.Samples[start : start+chunk], Rate: w.Rate}
}
