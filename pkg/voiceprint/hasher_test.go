package voiceprint

import (
	"errors"
	"testing"
)

func ramp(dim int, scale, offset float32) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = float32(i)*scale + offset
	}
	return v
}

func mustHasher(t *testing.T, dim, bits int, seed uint64) *Hasher {
	t.Helper()
	h, err := NewHasher(dim, bits, seed)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func TestHasherDeterministic(t *testing.T) {
	emb := ramp(192, 0.01, -0.9)
	a, err := mustHasher(t, 192, 16, 42).Hash(emb)
	if err != nil {
		t.Fatal(err)
	}
	b, err := mustHasher(t, 192, 16, 42).Hash(emb)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("same seed and embedding gave %q and %q", a, b)
	}
	if len(a) != 4 {
		t.Errorf("len(%q) = %d, want 4", a, len(a))
	}
}

func TestHasherScaleInvariant(t *testing.T) {
	h := mustHasher(t, 64, 32, 7)
	emb := ramp(64, 0.1, -3)
	scaled := make([]float32, len(emb))
	for i, v := range emb {
		scaled[i] = v * 5
	}
	a, _ := h.Hash(emb)
	b, _ := h.Hash(scaled)
	if a != b {
		t.Errorf("scaling changed hash: %q vs %q", a, b)
	}
}

func TestHasherOppositeVectors(t *testing.T) {
	h := mustHasher(t, 32, 8, 1)
	emb := ramp(32, 0.3, -4)
	neg := make([]float32, len(emb))
	for i, v := range emb {
		neg[i] = -v
	}
	a, _ := h.Hash(emb)
	b, _ := h.Hash(neg)
	// Every bit flips unless a plane is exactly orthogonal.
	if a == b {
		t.Errorf("opposite embeddings share hash %q", a)
	}
}

func TestHasherLeadingZeros(t *testing.T) {
	h := mustHasher(t, 4, 16, 3)
	// The zero vector sets no bits.
	got, err := h.Hash(make([]float32, 4))
	if err != nil {
		t.Fatal(err)
	}
	if got != "0000" {
		t.Errorf("Hash(0) = %q, want 0000", got)
	}
}

func TestHasherErrors(t *testing.T) {
	for _, tc := range []struct{ dim, bits int }{{0, 16}, {8, 0}, {8, 6}} {
		if _, err := NewHasher(tc.dim, tc.bits, 1); err == nil {
			t.Errorf("NewHasher(%d, %d) expected error", tc.dim, tc.bits)
		}
	}
	h := mustHasher(t, 8, 8, 1)
	if _, err := h.Hash(make([]float32, 3)); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func BenchmarkHash(b *testing.B) {
	h, err := NewHasher(192, 16, 42)
	if err != nil {
		b.Fatal(err)
	}
	emb := ramp(192, 0.01, 0)
	b.ResetTimer()
	for range b.N {
		h.Hash(emb)
	}
}

func TestVoiceLabel(t *testing.T) {
	if got := VoiceLabel("A3F8"); got != "voice:A3F8" {
		t.Errorf("VoiceLabel = %q", got)
	}
}
