package voiceprint

import (
	"fmt"
	"math/big"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Hasher maps embeddings to short hex labels with random-hyperplane LSH:
// bit i is set when the embedding lies on the positive side of plane i.
// Nearby embeddings share most bits, so a hash prefix works as a coarse
// speaker bucket:
//
//	full  "A3F8" 16-bit
//	[:2]  "A3"   8-bit
type Hasher struct {
	dim    int
	bits   int
	planes [][]float64 // bits × dim, unit rows
}

// NewHasher creates a Hasher for dim-dimensional embeddings producing
// bits-bit hashes. bits must be a positive multiple of 4. A fixed seed
// gives stable hashes across restarts.
func NewHasher(dim, bits int, seed uint64) (*Hasher, error) {
	if bits <= 0 || bits%4 != 0 {
		return nil, fmt.Errorf("voiceprint: hash bits must be a positive multiple of 4, got %d", bits)
	}
	if dim <= 0 {
		return nil, fmt.Errorf("voiceprint: hash dimension must be positive, got %d", dim)
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	planes := make([][]float64, bits)
	for i := range planes {
		p := make([]float64, dim)
		for j := range p {
			p[j] = rng.NormFloat64()
		}
		if n := floats.Norm(p, 2); n > 0 {
			floats.Scale(1/n, p)
		}
		planes[i] = p
	}
	return &Hasher{dim: dim, bits: bits, planes: planes}, nil
}

// Hash returns the uppercase hex hash of embedding, bits/4 characters long.
func (h *Hasher) Hash(embedding []float32) (string, error) {
	if len(embedding) != h.dim {
		return "", fmt.Errorf("%w: hasher wants %d, got %d", ErrDimensionMismatch, h.dim, len(embedding))
	}
	x := widen(embedding)
	var v big.Int
	for i, p := range h.planes {
		if floats.Dot(p, x) > 0 {
			v.SetBit(&v, h.bits-1-i, 1)
		}
	}
	s := strings.ToUpper(v.Text(16))
	return strings.Repeat("0", h.bits/4-len(s)) + s, nil
}
