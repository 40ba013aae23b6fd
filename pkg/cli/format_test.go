package cli

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{850 * time.Millisecond, "850ms"},
		{3200 * time.Millisecond, "3.2s"},
		{64 * time.Second, "1m4.0s"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatDuration(tt.d); got != tt.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestFormatShape(t *testing.T) {
	if got := FormatShape(3, 80, 120); got != "3x80x120" {
		t.Errorf("FormatShape = %q", got)
	}
	if got := FormatShape(); got != "" {
		t.Errorf("FormatShape() = %q, want empty", got)
	}
}

func TestFormatSimilarity(t *testing.T) {
	if got := FormatSimilarity(0.70004); got != "0.7000" {
		t.Errorf("FormatSimilarity = %q", got)
	}
}
