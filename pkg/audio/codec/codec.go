// Package codec holds what the per-format decoders share: the decoder
// signature, channel downmixing, and container sniffing.
//
// Every decoder returns mono float32 samples in [-1, 1] together with the
// native sample rate of the stream:
//
//	samples, rate, err := wav.Decode(r)
//
// Resampling to the pipeline rate happens later, in the loader.
package codec

import (
	"bytes"
	"errors"
	"io"
)

var (
	// ErrInvalid reports that the input is not a valid stream of the
	// expected container or codec.
	ErrInvalid = errors.New("codec: invalid stream")

	// ErrUnsupported reports a valid stream using a feature the decoder
	// does not handle (e.g. floating-point WAV).
	ErrUnsupported = errors.New("codec: unsupported stream")
)

// DecodeFunc decodes a whole stream into mono samples and its native rate.
type DecodeFunc func(r io.Reader) (samples []float32, rate int, err error)

// Mono averages interleaved multi-channel samples into one channel.
// channels <= 1 returns the input unchanged.
func Mono(interleaved []float32, channels int) []float32 {
	if channels <= 1 {
		return interleaved
	}
	n := len(interleaved) / channels
	out := make([]float32, n)
	for i := range n {
		var sum float32
		for c := range channels {
			sum += interleaved[i*channels+c]
		}
		out[i] = sum / float32(channels)
	}
	return out
}

// Sniff guesses the container from the first bytes of a file.
// It returns a file extension (".wav", ".flac", ".mp3") or "".
func Sniff(header []byte) string {
	switch {
	case len(header) >= 12 && bytes.Equal(header[:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")):
		return ".wav"
	case bytes.HasPrefix(header, []byte("fLaC")):
		return ".flac"
	case bytes.HasPrefix(header, []byte("ID3")):
		return ".mp3"
	case len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0:
		// MPEG audio frame sync.
		return ".mp3"
	}
	return ""
}

// Scale returns the divisor mapping signed integer PCM of the given bit
// depth to [-1, 1).
func Scale(bitDepth int) float32 {
	if bitDepth <= 0 || bitDepth > 32 {
		bitDepth = 16
	}
	return float32(uint64(1) << (bitDepth - 1))
}
