package feature

// Matrix is a (Bins, Frames) feature matrix stored row-major: the value for
// bin b at frame t is Data[b*Frames+t].
type Matrix struct {
	Bins   int
	Frames int
	Data   []float32
}

// NewMatrix allocates a zeroed matrix.
func NewMatrix(bins, frames int) *Matrix {
	return &Matrix{Bins: bins, Frames: frames, Data: make([]float32, bins*frames)}
}

// At returns the value at bin b, frame t.
func (m *Matrix) At(b, t int) float32 { return m.Data[b*m.Frames+t] }

// Set sets the value at bin b, frame t.
func (m *Matrix) Set(b, t int, v float32) { m.Data[b*m.Frames+t] = v }

// Row returns the time series of bin b. It aliases m.Data.
func (m *Matrix) Row(b int) []float32 {
	return m.Data[b*m.Frames : (b+1)*m.Frames]
}

// Transpose returns a (Frames, Bins) row-major copy of the data.
func (m *Matrix) Transpose() []float32 {
	out := make([]float32, len(m.Data))
	for b := range m.Bins {
		for t := range m.Frames {
			out[t*m.Bins+b] = m.Data[b*m.Frames+t]
		}
	}
	return out
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	c := &Matrix{Bins: m.Bins, Frames: m.Frames, Data: make([]float32, len(m.Data))}
	copy(c.Data, m.Data)
	return c
}
