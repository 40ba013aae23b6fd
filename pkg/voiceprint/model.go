package voiceprint

import "github.com/haivivi/voicematch/pkg/audio/feature"

// Model maps a feature matrix to a speaker embedding.
//
// The input is a normalized (bins, frames) matrix from feature.Extractor.
// The output is a dense float32 vector whose length is returned by
// Dimension(). No normalization of the output is assumed.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use.
type Model interface {
	// Embed computes the embedding of one utterance.
	Embed(m *feature.Matrix) ([]float32, error)

	// Dimension returns the embedding length, or 0 if the model does not
	// know it before the first call.
	Dimension() int

	// Close releases any resources held by the model (e.g., ONNX session).
	Close() error
}
