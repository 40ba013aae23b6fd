// Package loader turns audio files into mono waveforms at the pipeline
// sample rate.
//
// Files are read through a [storage.FileStore], so local paths and
// s3:// URIs behave the same. The decoder is chosen by file extension and,
// failing that, by sniffing the first bytes of the file. Decoded audio is
// resampled to the target rate (16 kHz by default).
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/haivivi/voicematch/pkg/audio/codec"
	"github.com/haivivi/voicematch/pkg/audio/codec/flac"
	"github.com/haivivi/voicematch/pkg/audio/codec/mp3"
	"github.com/haivivi/voicematch/pkg/audio/codec/wav"
	"github.com/haivivi/voicematch/pkg/audio/resampler"
	"github.com/haivivi/voicematch/pkg/audio/waveform"
	"github.com/haivivi/voicematch/pkg/storage"
)

var (
	// ErrIO reports a missing or unreadable file.
	ErrIO = errors.New("loader: io error")

	// ErrDecode reports an unknown or broken container, or a resampling
	// failure.
	ErrDecode = errors.New("loader: decode error")
)

// Loader loads audio files. It is safe for concurrent use once built.
type Loader struct {
	store    storage.FileStore
	rate     int
	decoders map[string]codec.DecodeFunc
	logger   *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithSampleRate sets the output sample rate. Non-positive values are
// ignored.
func WithSampleRate(rate int) Option {
	return func(l *Loader) {
		if rate > 0 {
			l.rate = rate
		}
	}
}

// WithDecoder registers (or replaces) the decoder for a file extension
// such as ".ogg".
func WithDecoder(ext string, fn codec.DecodeFunc) Option {
	return func(l *Loader) {
		l.decoders[normalizeExt(ext)] = fn
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a Loader reading from store.
func New(store storage.FileStore, opts ...Option) *Loader {
	l := &Loader{
		store: store,
		rate:  waveform.DefaultRate,
		decoders: map[string]codec.DecodeFunc{
			".wav":  wav.Decode,
			".wave": wav.Decode,
			".mp3":  mp3.Decode,
			".flac": flac.Decode,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SampleRate returns the rate of every waveform produced by Load.
func (l *Loader) SampleRate() int { return l.rate }

// Load reads, decodes and resamples the audio file at p.
func (l *Loader) Load(ctx context.Context, p string) (waveform.Waveform, error) {
	if err := ctx.Err(); err != nil {
		return waveform.Waveform{}, err
	}

	data, err := storage.ReadFile(ctx, l.store, p)
	if err != nil {
		return waveform.Waveform{}, fmt.Errorf("%w: %s: %w", ErrIO, p, err)
	}

	ext := normalizeExt(path.Ext(p))
	decode, ok := l.decoders[ext]
	if !ok {
		sniffed := codec.Sniff(data)
		decode, ok = l.decoders[sniffed]
		if !ok {
			return waveform.Waveform{}, fmt.Errorf("%w: %s: unrecognized audio format", ErrDecode, p)
		}
		ext = sniffed
	}

	samples, native, err := decode(bytes.NewReader(data))
	if err != nil {
		return waveform.Waveform{}, fmt.Errorf("%w: %s: %w", ErrDecode, p, err)
	}

	out, err := resampler.Resample(samples, native, l.rate)
	if err != nil {
		return waveform.Waveform{}, fmt.Errorf("%w: %s: %w", ErrDecode, p, err)
	}

	l.logger.Debug("loader: loaded audio",
		"path", p,
		"format", ext,
		"native_rate", native,
		"rate", l.rate,
		"samples", len(out),
	)
	return waveform.Waveform{Samples: out, Rate: l.rate}, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
