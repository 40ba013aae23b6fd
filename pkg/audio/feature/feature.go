// Package feature computes normalized log time-frequency features from
// waveforms.
//
// Two representations are supported:
//
//	melspectrogram: power STFT projected on 80 Slaney mel bands -> (80, T)
//	spectrogram:    magnitude STFT                               -> (201, T)
//
// Both are converted to decibels and then normalized per frequency bin over
// the time axis of the same utterance. The framing parameters are fixed:
//
//	SampleRate: 16000
//	FFTSize:    400
//	WindowSize: 400 (periodic Hann)
//	HopSize:    160
//
// Frames are centered, with FFTSize/2 zeros padded on both sides, so a
// waveform of n samples yields 1 + n/HopSize frames.
package feature

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedMethod reports an unknown feature method.
	ErrUnsupportedMethod = errors.New("feature: unsupported method")

	// ErrSampleRate reports a waveform whose rate differs from the
	// extractor's configured rate.
	ErrSampleRate = errors.New("feature: sample rate mismatch")

	// ErrStatsMismatch reports global statistics whose bin count or method
	// does not match a feature matrix.
	ErrStatsMismatch = errors.New("feature: stats do not match features")
)

// Method selects the time-frequency representation.
type Method int

const (
	MelSpectrogram Method = iota
	Spectrogram
)

func (m Method) String() string {
	switch m {
	case MelSpectrogram:
		return "melspectrogram"
	case Spectrogram:
		return "spectrogram"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod parses "melspectrogram" or "spectrogram".
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "melspectrogram", "mel":
		return MelSpectrogram, nil
	case "spectrogram", "spec":
		return Spectrogram, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedMethod, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) {
	if m != MelSpectrogram && m != Spectrogram {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMethod, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(b []byte) error {
	v, err := ParseMethod(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Config controls feature extraction.
type Config struct {
	Method     Method
	SampleRate int // Hz (default 16000)
	FFTSize    int // default 400
	WindowSize int // default 400
	HopSize    int // default 160
	NumMels    int // default 80
	// Epsilon is added to the standard deviation when normalizing.
	Epsilon float64 // default 1e-5
	// AMin floors power values before the dB conversion.
	AMin float64 // default 1e-10
}

// DefaultConfig returns the configuration for method.
func DefaultConfig(method Method) Config {
	return Config{
		Method:     method,
		SampleRate: 16000,
		FFTSize:    400,
		WindowSize: 400,
		HopSize:    160,
		NumMels:    80,
		Epsilon:    1e-5,
		AMin:       1e-10,
	}
}

// Bins returns the number of frequency bins the configuration produces.
func (c Config) Bins() int {
	if c.Method == MelSpectrogram {
		return c.NumMels
	}
	return c.FFTSize/2 + 1
}

// Frames returns the number of frames produced for n samples.
func (c Config) Frames(n int) int {
	return 1 + n/c.HopSize
}

func (c Config) validate() error {
	if c.Method != MelSpectrogram && c.Method != Spectrogram {
		return fmt.Errorf("%w: %d", ErrUnsupportedMethod, int(c.Method))
	}
	if c.SampleRate <= 0 || c.FFTSize <= 0 || c.HopSize <= 0 {
		return fmt.Errorf("feature: invalid config: rate=%d fft=%d hop=%d", c.SampleRate, c.FFTSize, c.HopSize)
	}
	if c.WindowSize <= 0 || c.WindowSize > c.FFTSize {
		return fmt.Errorf("feature: invalid window size %d for fft size %d", c.WindowSize, c.FFTSize)
	}
	if c.Method == MelSpectrogram && c.NumMels <= 0 {
		return fmt.Errorf("feature: invalid mel count %d", c.NumMels)
	}
	return nil
}
