package resampler

import (
	"errors"
	"fmt"
	"sync"

	resampling "github.com/tphakala/go-audio-resampling"
)

// ErrInvalidRate is returned for non-positive sample rates.
var ErrInvalidRate = errors.New("resampler: invalid sample rate")

// OutputLen returns the number of samples Resample produces for n input
// samples.
func OutputLen(n, src, dst int) int {
	if n <= 0 {
		return 0
	}
	return int((int64(n)*int64(dst) + int64(src) - 1) / int64(src))
}

// Resample converts mono samples from rate src to rate dst. Equal rates
// return a copy of the input.
//
// Output sample i is aligned with time i/dst of the input: the filter
// delay is measured once per rate pair and removed, and the input is
// padded on both sides so neither edge of the clip is lost.
func Resample(in []float32, src, dst int) ([]float32, error) {
	if src <= 0 || dst <= 0 {
		return nil, fmt.Errorf("%w: %d -> %d", ErrInvalidRate, src, dst)
	}
	if src == dst || len(in) == 0 {
		out := make([]float32, len(in))
		copy(out, in)
		return out, nil
	}

	pad := padLen(src, dst)
	start, err := alignment(src, dst, pad)
	if err != nil {
		return nil, err
	}

	input := make([]float64, pad+len(in)+pad)
	for i, s := range in {
		input[pad+i] = float64(s)
	}
	output, err := process(src, dst, input)
	if err != nil {
		return nil, err
	}

	want := OutputLen(len(in), src, dst)
	out := make([]float32, want)
	for i := range out {
		if j := start + i; j >= 0 && j < len(output) {
			out[i] = float32(output[j])
		}
	}
	return out, nil
}

// padLen returns the silence added on each side of the input. It is a
// whole number of rate periods so the first real sample lands exactly on
// an output sample.
func padLen(src, dst int) int {
	period := src / gcd(src, dst)
	n := max(src/10, 1024)
	return (n + period - 1) / period * period
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

type ratePair struct{ src, dst int }

var alignments sync.Map // ratePair -> int

// alignment returns the output index holding input sample pad. It runs a
// unit impulse through a fresh pipeline and takes the peak of the
// response.
func alignment(src, dst, pad int) (int, error) {
	key := ratePair{src, dst}
	if v, ok := alignments.Load(key); ok {
		return v.(int), nil
	}

	impulse := make([]float64, 2*pad+1)
	impulse[pad] = 1
	resp, err := process(src, dst, impulse)
	if err != nil {
		return 0, err
	}
	peak, best := 0, 0.0
	for i, v := range resp {
		if v < 0 {
			v = -v
		}
		if v > best {
			peak, best = i, v
		}
	}
	if best == 0 {
		return 0, fmt.Errorf("resampler: no impulse response for %d -> %d", src, dst)
	}

	alignments.Store(key, peak)
	return peak, nil
}

func process(src, dst int, input []float64) ([]float64, error) {
	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(src),
		OutputRate: float64(dst),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("resampler: create: %w", err)
	}
	output, err := r.Process(input)
	if err != nil {
		return nil, fmt.Errorf("resampler: process: %w", err)
	}
	rest, err := r.Flush()
	if err != nil {
		return nil, fmt.Errorf("resampler: flush: %w", err)
	}
	return append(output, rest...), nil
}
