package feature

import (
	"fmt"
	"io"
	"math"

	"github.com/vmihailenco/msgpack/v5"
)

// Stats holds per-bin mean and standard deviation computed over a corpus.
// A loaded Stats is read-only and may be shared between goroutines.
type Stats struct {
	Method Method
	Mean   []float32
	Std    []float32
	// Frames is the number of frames the statistics were computed from.
	Frames int64
	// Epsilon is added to Std when applying; zero means 1e-5.
	Epsilon float64
}

// Bins returns the number of bins covered.
func (s *Stats) Bins() int { return len(s.Mean) }

// Apply normalizes m in place: (x - mean[b]) / (std[b] + eps).
func (s *Stats) Apply(m *Matrix) error {
	if m.Bins != len(s.Mean) || m.Bins != len(s.Std) {
		return fmt.Errorf("%w: matrix has %d bins, stats have %d", ErrStatsMismatch, m.Bins, len(s.Mean))
	}
	eps := s.Epsilon
	if eps == 0 {
		eps = 1e-5
	}
	for b := range m.Bins {
		mean, std := float64(s.Mean[b]), float64(s.Std[b])
		r := m.Row(b)
		for t, v := range r {
			r[t] = float32((float64(v) - mean) / (std + eps))
		}
	}
	return nil
}

type statsFile struct {
	Method  string    `msgpack:"method"`
	Mean    []float32 `msgpack:"mean"`
	Std     []float32 `msgpack:"std"`
	Frames  int64     `msgpack:"frames"`
	Epsilon float64   `msgpack:"epsilon,omitempty"`
}

// Save writes s to w as msgpack.
func (s *Stats) Save(w io.Writer) error {
	return msgpack.NewEncoder(w).Encode(statsFile{
		Method:  s.Method.String(),
		Mean:    s.Mean,
		Std:     s.Std,
		Frames:  s.Frames,
		Epsilon: s.Epsilon,
	})
}

// LoadStats reads statistics written by Save.
func LoadStats(r io.Reader) (*Stats, error) {
	var f statsFile
	if err := msgpack.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("feature: decode stats: %w", err)
	}
	method, err := ParseMethod(f.Method)
	if err != nil {
		return nil, err
	}
	if len(f.Mean) != len(f.Std) {
		return nil, fmt.Errorf("%w: %d means, %d stds", ErrStatsMismatch, len(f.Mean), len(f.Std))
	}
	return &Stats{Method: method, Mean: f.Mean, Std: f.Std, Frames: f.Frames, Epsilon: f.Epsilon}, nil
}

// Accumulator computes corpus statistics from feature matrices using
// Welford's online algorithm per bin. It is not safe for concurrent use.
type Accumulator struct {
	method Method
	n      int64
	mean   []float64
	m2     []float64
}

// NewAccumulator creates an accumulator for matrices produced by method.
func NewAccumulator(method Method) *Accumulator {
	return &Accumulator{method: method}
}

// Add folds every frame of m into the statistics.
func (a *Accumulator) Add(m *Matrix) error {
	if a.mean == nil {
		a.mean = make([]float64, m.Bins)
		a.m2 = make([]float64, m.Bins)
	}
	if m.Bins != len(a.mean) {
		return fmt.Errorf("%w: matrix has %d bins, accumulator has %d", ErrStatsMismatch, m.Bins, len(a.mean))
	}
	for t := range m.Frames {
		a.n++
		n := float64(a.n)
		for b := range m.Bins {
			x := float64(m.At(b, t))
			d := x - a.mean[b]
			a.mean[b] += d / n
			a.m2[b] += d * (x - a.mean[b])
		}
	}
	return nil
}

// Frames returns the number of frames added so far.
func (a *Accumulator) Frames() int64 { return a.n }

// Stats returns the population mean and standard deviation per bin.
func (a *Accumulator) Stats() *Stats {
	s := &Stats{
		Method: a.method,
		Mean:   make([]float32, len(a.mean)),
		Std:    make([]float32, len(a.mean)),
		Frames: a.n,
	}
	if a.n == 0 {
		return s
	}
	for b := range a.mean {
		s.Mean[b] = float32(a.mean[b])
		s.Std[b] = float32(math.Sqrt(a.m2[b] / float64(a.n)))
	}
	return s
}
