// Package wav decodes RIFF/WAVE integer PCM into mono float32 samples.
package wav

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/wav"

	"github.com/haivivi/voicematch/pkg/audio/codec"
)

const (
	formatPCM        = 1
	formatIEEEFloat  = 3
	formatExtensible = 0xFFFE
)

// Decode reads a whole WAV stream. Multi-channel audio is averaged to mono.
// Integer PCM of 8 to 32 bits is supported; IEEE float WAV is not.
func Decode(r io.Reader) ([]float32, int, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, 0, err
		}
		rs = bytes.NewReader(data)
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("wav: %w: bad RIFF/WAVE header", codec.ErrInvalid)
	}
	switch dec.WavAudioFormat {
	case formatPCM, formatExtensible:
	case formatIEEEFloat:
		return nil, 0, fmt.Errorf("wav: %w: IEEE float samples", codec.ErrUnsupported)
	default:
		return nil, 0, fmt.Errorf("wav: %w: audio format %d", codec.ErrUnsupported, dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("wav: %w: %w", codec.ErrInvalid, err)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = int(dec.BitDepth)
	}
	scale := codec.Scale(bitDepth)
	// 8-bit WAV is unsigned; every other depth is signed.
	var offset int
	if bitDepth == 8 {
		offset = 128
	}
	interleaved := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		interleaved[i] = float32(v-offset) / scale
	}

	channels := int(dec.NumChans)
	rate := int(dec.SampleRate)
	if buf.Format != nil {
		if buf.Format.NumChannels > 0 {
			channels = buf.Format.NumChannels
		}
		if buf.Format.SampleRate > 0 {
			rate = buf.Format.SampleRate
		}
	}
	if rate <= 0 {
		return nil, 0, fmt.Errorf("wav: %w: sample rate %d", codec.ErrInvalid, rate)
	}
	return codec.Mono(interleaved, channels), rate, nil
}
