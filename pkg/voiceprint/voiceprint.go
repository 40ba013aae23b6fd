// Package voiceprint decides whether two recordings come from the same
// speaker by comparing speaker embeddings.
//
// # Architecture
//
// Verification runs in four stages:
//
//  1. loader.Load: audio file → 16 kHz mono waveform
//  2. waveform.Select (infer mode) + feature.Extractor: waveform → normalized
//     (bins, frames) feature matrix
//  3. Model.Embed: feature matrix → embedding vector
//  4. Decide: two embeddings → cosine similarity and a match verdict
//
// [Verifier] wires the stages together. The embedding network itself is an
// external collaborator reached through [Model]; [ONNXModel] runs an
// exported network with ONNX Runtime.
//
// # Enrollment
//
// A [Registry] stores labeled embeddings in a [Store] (in memory or in a
// badger database) and identifies an unknown embedding by comparing it
// with the centroid of every enrolled speaker. Each enrollment also carries
// a short locality-sensitive hash produced by [Hasher], usable as a coarse
// voice label ("voice:A3F8").
package voiceprint

// DefaultThreshold is the similarity above which two embeddings are
// considered the same speaker.
const DefaultThreshold = 0.7

// Decision is the outcome of comparing two embeddings.
type Decision struct {
	// Similarity is the cosine similarity, in [-1, 1].
	Similarity float64 `json:"similarity" yaml:"similarity"`

	// Match reports Similarity > threshold.
	Match bool `json:"match" yaml:"match"`
}

// VoiceLabel returns a prefixed voice label string for a hash.
// Format: "voice:{hash}".
func VoiceLabel(hash string) string {
	return "voice:" + hash
}
