package voiceprint

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrDegenerateVector reports an embedding with zero norm.
	ErrDegenerateVector = errors.New("voiceprint: zero-norm embedding")

	// ErrDimensionMismatch reports embeddings of different lengths.
	ErrDimensionMismatch = errors.New("voiceprint: embedding dimension mismatch")
)

// CosineSimilarity returns dot(a, b) / (|a|·|b|), computed in float64 and
// clamped to [-1, 1].
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	x, y := widen(a), widen(b)
	na, nb := floats.Dot(x, x), floats.Dot(y, y)
	if na == 0 || nb == 0 {
		return 0, ErrDegenerateVector
	}
	sim := floats.Dot(x, y) / math.Sqrt(na*nb)
	return max(-1, min(1, sim)), nil
}

// Decide compares two embeddings. Match is true when the similarity is
// strictly greater than threshold.
func Decide(e1, e2 []float32, threshold float64) (Decision, error) {
	sim, err := CosineSimilarity(e1, e2)
	if err != nil {
		return Decision{}, err
	}
	return Decision{Similarity: sim, Match: sim > threshold}, nil
}

// Normalize returns v scaled to unit L2 norm.
func Normalize(v []float32) ([]float32, error) {
	x := widen(v)
	n := floats.Norm(x, 2)
	if n == 0 {
		return nil, ErrDegenerateVector
	}
	out := make([]float32, len(v))
	for i, f := range x {
		out[i] = float32(f / n)
	}
	return out, nil
}

// Centroid returns the mean of the unit-normalized vectors.
func Centroid(vs [][]float32) ([]float32, error) {
	if len(vs) == 0 {
		return nil, ErrDegenerateVector
	}
	dim := len(vs[0])
	sum := make([]float64, dim)
	for _, v := range vs {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(v), dim)
		}
		u, err := Normalize(v)
		if err != nil {
			return nil, err
		}
		floats.Add(sum, widen(u))
	}
	floats.Scale(1/float64(len(vs)), sum)
	out := make([]float32, dim)
	for i, f := range sum {
		out[i] = float32(f)
	}
	return out, nil
}

func widen(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}
