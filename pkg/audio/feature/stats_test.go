package feature

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func matrixOf(bins int, rows ...[]float32) *Matrix {
	frames := len(rows[0])
	m := NewMatrix(bins, frames)
	for b, r := range rows {
		copy(m.Row(b), r)
	}
	return m
}

func TestAccumulatorStats(t *testing.T) {
	acc := NewAccumulator(MelSpectrogram)
	if err := acc.Add(matrixOf(2, []float32{1, 2}, []float32{10, 10})); err != nil {
		t.Fatal(err)
	}
	if err := acc.Add(matrixOf(2, []float32{3, 4, 5}, []float32{10, 10, 10})); err != nil {
		t.Fatal(err)
	}
	s := acc.Stats()
	if s.Frames != 5 || acc.Frames() != 5 {
		t.Fatalf("frames = %d", s.Frames)
	}
	// Bin 0 over {1..5}: mean 3, population std sqrt(2).
	if math.Abs(float64(s.Mean[0])-3) > 1e-6 || math.Abs(float64(s.Std[0])-math.Sqrt2) > 1e-6 {
		t.Errorf("bin 0 = (%f, %f), want (3, %f)", s.Mean[0], s.Std[0], math.Sqrt2)
	}
	if s.Mean[1] != 10 || s.Std[1] != 0 {
		t.Errorf("bin 1 = (%f, %f), want (10, 0)", s.Mean[1], s.Std[1])
	}
}

func TestAccumulatorMismatch(t *testing.T) {
	acc := NewAccumulator(MelSpectrogram)
	if err := acc.Add(NewMatrix(80, 3)); err != nil {
		t.Fatal(err)
	}
	if err := acc.Add(NewMatrix(201, 3)); !errors.Is(err, ErrStatsMismatch) {
		t.Fatalf("expected ErrStatsMismatch, got %v", err)
	}
}

func TestStatsApply(t *testing.T) {
	s := &Stats{Mean: []float32{1, -2}, Std: []float32{2, 0.5}}
	m := matrixOf(2, []float32{1, 5}, []float32{-2, -1})
	if err := s.Apply(m); err != nil {
		t.Fatal(err)
	}
	want := []float32{0, float32(4 / (2 + 1e-5)), 0, float32(1 / (0.5 + 1e-5))}
	for i := range want {
		if math.Abs(float64(m.Data[i]-want[i])) > 1e-6 {
			t.Errorf("Data[%d] = %f, want %f", i, m.Data[i], want[i])
		}
	}

	if err := s.Apply(NewMatrix(3, 1)); !errors.Is(err, ErrStatsMismatch) {
		t.Fatalf("expected ErrStatsMismatch, got %v", err)
	}
}

func TestStatsSaveLoad(t *testing.T) {
	in := &Stats{
		Method: Spectrogram,
		Mean:   []float32{0.5, -1.25},
		Std:    []float32{1, 2},
		Frames: 42,
	}
	var buf bytes.Buffer
	if err := in.Save(&buf); err != nil {
		t.Fatal(err)
	}
	out, err := LoadStats(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if out.Method != Spectrogram || out.Frames != 42 || out.Bins() != 2 {
		t.Fatalf("got %+v", out)
	}
	if out.Mean[1] != -1.25 || out.Std[1] != 2 {
		t.Errorf("got mean %v std %v", out.Mean, out.Std)
	}
}

func TestLoadStatsGarbage(t *testing.T) {
	if _, err := LoadStats(bytes.NewReader([]byte{0xc1})); err == nil {
		t.Fatal("expected error")
	}
}
