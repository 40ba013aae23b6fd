package mp3

import (
	"bytes"
	"errors"
	"testing"

	"github.com/haivivi/voicematch/pkg/audio/codec"
)

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"text", []byte("not an mpeg stream at all")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(bytes.NewReader(tt.data))
			if !errors.Is(err, codec.ErrInvalid) {
				t.Fatalf("expected codec.ErrInvalid, got %v", err)
			}
		})
	}
}
