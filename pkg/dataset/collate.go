package dataset

import (
	"errors"
	"fmt"
	"slices"

	"github.com/haivivi/voicematch/pkg/audio/feature"
)

var (
	// ErrShapeMismatch reports samples with different bin counts.
	ErrShapeMismatch = errors.New("dataset: feature bin count mismatch")

	// ErrEmptyBatch reports a collate call with no samples.
	ErrEmptyBatch = errors.New("dataset: empty batch")
)

// Sample is one labeled feature matrix.
type Sample struct {
	Features *feature.Matrix
	Label    int
}

// Batch is a dense, right-padded batch of feature matrices.
//
// Inputs has shape (Size, Bins, MaxFrames), row-major. Entries are sorted by
// descending frame count, so MaxFrames equals Lengths[0].
type Batch struct {
	Size      int
	Bins      int
	MaxFrames int
	Inputs    []float32
	Labels    []int64
	Lengths   []float32
}

// At returns the input value for entry i, bin b, frame t.
func (b *Batch) At(i, bin, t int) float32 {
	return b.Inputs[(i*b.Bins+bin)*b.MaxFrames+t]
}

// Row returns the (Bins, MaxFrames) block of entry i. It aliases Inputs.
func (b *Batch) Row(i int) []float32 {
	n := b.Bins * b.MaxFrames
	return b.Inputs[i*n : (i+1)*n]
}

// Collate builds a batch from samples. The input slice is not modified.
func Collate(samples []Sample) (*Batch, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyBatch
	}
	sorted := slices.Clone(samples)
	slices.SortStableFunc(sorted, func(a, b Sample) int {
		return b.Features.Frames - a.Features.Frames
	})

	bins := sorted[0].Features.Bins
	maxFrames := sorted[0].Features.Frames
	for i, s := range sorted {
		if s.Features.Bins != bins {
			return nil, fmt.Errorf("%w: sample %d has %d bins, want %d", ErrShapeMismatch, i, s.Features.Bins, bins)
		}
	}

	b := &Batch{
		Size:      len(sorted),
		Bins:      bins,
		MaxFrames: maxFrames,
		Inputs:    make([]float32, len(sorted)*bins*maxFrames),
		Labels:    make([]int64, len(sorted)),
		Lengths:   make([]float32, len(sorted)),
	}
	for i, s := range sorted {
		m := s.Features
		row := b.Row(i)
		for bin := range bins {
			copy(row[bin*maxFrames:bin*maxFrames+m.Frames], m.Row(bin))
		}
		b.Labels[i] = int64(s.Label)
		b.Lengths[i] = float32(m.Frames)
	}
	return b, nil
}
