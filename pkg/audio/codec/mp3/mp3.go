// Package mp3 decodes MPEG-1/2 Layer III audio into mono float32 samples
// using the pure Go decoder from github.com/hajimehoshi/go-mp3.
package mp3

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"

	"github.com/haivivi/voicematch/pkg/audio/codec"
)

// The decoder always emits 16-bit little-endian stereo.
const bytesPerFrame = 4

// Decode reads a whole MP3 stream and returns mono samples at the stream's
// native rate.
func Decode(r io.Reader) ([]float32, int, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, fmt.Errorf("mp3: %w: %w", codec.ErrInvalid, err)
	}
	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, 0, fmt.Errorf("mp3: %w: %w", codec.ErrInvalid, err)
	}

	frames := len(pcm) / bytesPerFrame
	out := make([]float32, frames)
	for i := range frames {
		l := int16(binary.LittleEndian.Uint16(pcm[i*bytesPerFrame:]))
		r := int16(binary.LittleEndian.Uint16(pcm[i*bytesPerFrame+2:]))
		out[i] = (float32(l) + float32(r)) / 2 / 32768
	}
	return out, dec.SampleRate(), nil
}
