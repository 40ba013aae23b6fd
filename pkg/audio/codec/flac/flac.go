// Package flac decodes FLAC streams into mono float32 samples using
// github.com/mewkiz/flac.
package flac

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"

	"github.com/haivivi/voicematch/pkg/audio/codec"
)

// Decode reads a whole FLAC stream. Channels are averaged to mono.
func Decode(r io.Reader) ([]float32, int, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, 0, fmt.Errorf("flac: %w: %w", codec.ErrInvalid, err)
	}
	defer stream.Close()

	info := stream.Info
	if info.NChannels == 0 {
		return nil, 0, fmt.Errorf("flac: %w: no channels", codec.ErrInvalid)
	}
	scale := codec.Scale(int(info.BitsPerSample))

	var out []float32
	if info.NSamples > 0 {
		out = make([]float32, 0, info.NSamples)
	}
	for {
		f, err := stream.ParseNext()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, 0, fmt.Errorf("flac: %w: %w", codec.ErrInvalid, err)
		}
		for i := range int(f.BlockSize) {
			var sum float32
			for _, sub := range f.Subframes {
				sum += float32(sub.Samples[i])
			}
			out = append(out, sum/float32(len(f.Subframes))/scale)
		}
	}
	return out, int(info.SampleRate), nil
}
