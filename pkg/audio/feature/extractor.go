package feature

import (
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/haivivi/voicematch/pkg/audio/waveform"
)

// Extractor turns waveforms into normalized feature matrices. It is safe
// for concurrent use.
type Extractor struct {
	cfg     Config
	window  []float64
	melBank [][]float64
	ffts    sync.Pool
}

// New creates an Extractor. It fails with ErrUnsupportedMethod for an
// unknown method.
func New(cfg Config) (*Extractor, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	e := &Extractor{
		cfg:    cfg,
		window: periodicHann(cfg.WindowSize),
	}
	if cfg.Method == MelSpectrogram {
		e.melBank = melFilterBank(cfg.NumMels, cfg.FFTSize, cfg.SampleRate)
	}
	e.ffts.New = func() any { return newFrameFFT(cfg.FFTSize) }
	return e, nil
}

// Config returns the extractor's configuration.
func (e *Extractor) Config() Config { return e.cfg }

// Bins returns the number of rows of every extracted matrix.
func (e *Extractor) Bins() int { return e.cfg.Bins() }

// Extract computes the normalized dB feature matrix of w.
func (e *Extractor) Extract(w waveform.Waveform) (*Matrix, error) {
	if w.Rate != e.cfg.SampleRate {
		return nil, fmt.Errorf("%w: got %d Hz, want %d Hz", ErrSampleRate, w.Rate, e.cfg.SampleRate)
	}
	m := e.Raw(w.Samples)
	Normalize(m, e.cfg.Epsilon)
	return m, nil
}

// Raw computes the dB feature matrix of samples without normalization.
func (e *Extractor) Raw(samples []float32) *Matrix {
	cfg := e.cfg
	frames := cfg.Frames(len(samples))
	spec := e.stft(samples, frames)

	var out *Matrix
	switch cfg.Method {
	case MelSpectrogram:
		out = NewMatrix(cfg.NumMels, frames)
		power := make([]float64, cfg.FFTSize/2+1)
		for t := range frames {
			for k, c := range spec[t] {
				power[k] = real(c)*real(c) + imag(c)*imag(c)
			}
			for b, filt := range e.melBank {
				out.Set(b, t, toDB(floats.Dot(filt, power), cfg.AMin))
			}
		}
	default:
		bins := cfg.FFTSize/2 + 1
		out = NewMatrix(bins, frames)
		for t := range frames {
			for k, c := range spec[t] {
				out.Set(k, t, toDB(cmplx.Abs(c), cfg.AMin))
			}
		}
	}
	return out
}

// stft returns frames x (FFTSize/2+1) complex coefficients of the centered,
// zero-padded, windowed signal.
func (e *Extractor) stft(samples []float32, frames int) [][]complex128 {
	cfg := e.cfg
	pad := cfg.FFTSize / 2
	// The window is centered inside the FFT frame when shorter than it.
	winOff := (cfg.FFTSize - cfg.WindowSize) / 2

	f := e.ffts.Get().(*frameFFT)
	defer e.ffts.Put(f)

	out := make([][]complex128, frames)
	for t := range frames {
		clear(f.frame)
		start := t*cfg.HopSize - pad + winOff
		for i, wv := range e.window {
			j := start + i
			if j >= 0 && j < len(samples) {
				f.frame[winOff+i] = float64(samples[j]) * wv
			}
		}
		out[t] = f.fft.Coefficients(nil, f.frame)
	}
	return out
}

type frameFFT struct {
	fft   *fourier.FFT
	frame []float64
}

func newFrameFFT(n int) *frameFFT {
	return &frameFFT{fft: fourier.NewFFT(n), frame: make([]float64, n)}
}

func toDB(v, amin float64) float32 {
	return float32(10 * math.Log10(math.Max(v, amin)))
}

// Normalize rescales every bin of m to zero mean and unit variance over
// time, in place: (x - mean) / (std + eps) with the population std.
func Normalize(m *Matrix, eps float64) {
	row := make([]float64, m.Frames)
	for b := range m.Bins {
		r := m.Row(b)
		for t, v := range r {
			row[t] = float64(v)
		}
		mean, std := stat.PopMeanStdDev(row, nil)
		for t, v := range row {
			r[t] = float32((v - mean) / (std + eps))
		}
	}
}
