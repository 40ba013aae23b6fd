package voiceprint

import (
	"os"
	"testing"

	"github.com/haivivi/voicematch/pkg/audio/feature"
)

// onnxModelPath returns the model named by VOICEMATCH_TEST_MODEL, skipping
// the test when unset.
func onnxModelPath(t *testing.T) string {
	t.Helper()
	path := os.Getenv("VOICEMATCH_TEST_MODEL")
	if path == "" {
		t.Skip("VOICEMATCH_TEST_MODEL not set; skipping ONNX Runtime test")
	}
	return path
}

func TestONNXModelEmbed(t *testing.T) {
	path := onnxModelPath(t)
	model, err := NewONNXModel(path, WithONNXLibrary(os.Getenv("ONNXRUNTIME_LIB")))
	if err != nil {
		t.Fatalf("NewONNXModel: %v", err)
	}
	defer model.Close()

	m := feature.NewMatrix(80, 301)
	for i := range m.Data {
		m.Data[i] = float32(i%97)/48 - 1
	}
	a, err := model.Embed(m)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if model.Dimension() > 0 && len(a) != model.Dimension() {
		t.Errorf("len = %d, want %d", len(a), model.Dimension())
	}
	b, err := model.Embed(m)
	if err != nil {
		t.Fatal(err)
	}
	d, err := Decide(a, b, DefaultThreshold)
	if err != nil {
		t.Fatal(err)
	}
	if !d.Match {
		t.Errorf("same input should match itself, similarity %v", d.Similarity)
	}
}

func TestONNXModelMissingFile(t *testing.T) {
	if _, err := NewONNXModel("/nonexistent/model.onnx"); err == nil {
		t.Fatal("expected error for missing model file")
	}
}

func TestONNXModelClosed(t *testing.T) {
	m := &ONNXModel{closed: true}
	if _, err := m.Embed(feature.NewMatrix(1, 1)); err != ErrModelClosed {
		t.Fatalf("expected ErrModelClosed, got %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestParseLayout(t *testing.T) {
	tests := []struct {
		in      string
		want    Layout
		wantErr bool
	}{
		{"", LayoutBinsFirst, false},
		{"bins-first", LayoutBinsFirst, false},
		{"frames-first", LayoutFramesFirst, false},
		{"sideways", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLayout(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLayout(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLayout(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
