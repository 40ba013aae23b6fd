package voiceprint

import (
	"errors"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/haivivi/voicematch/pkg/audio/feature"
)

// ErrModelClosed is returned by Embed after Close.
var ErrModelClosed = errors.New("voiceprint: model is closed")

// Layout is the order of the feature axes in the model's input tensor.
type Layout int

const (
	// LayoutBinsFirst feeds [1, bins, frames].
	LayoutBinsFirst Layout = iota
	// LayoutFramesFirst feeds [1, frames, bins].
	LayoutFramesFirst
)

func (l Layout) String() string {
	if l == LayoutFramesFirst {
		return "frames-first"
	}
	return "bins-first"
}

// ParseLayout parses "bins-first" or "frames-first".
func ParseLayout(s string) (Layout, error) {
	switch s {
	case "", "bins-first", "bft":
		return LayoutBinsFirst, nil
	case "frames-first", "tbf":
		return LayoutFramesFirst, nil
	}
	return 0, fmt.Errorf("voiceprint: unknown input layout %q", s)
}

var (
	ortOnce sync.Once
	ortErr  error
)

// InitONNXRuntime loads the ONNX Runtime shared library and initializes
// the process-wide environment. Only the first call has an effect; an
// empty libraryPath uses the library's default search.
func InitONNXRuntime(libraryPath string) error {
	ortOnce.Do(func() {
		if ort.IsInitialized() {
			return
		}
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			ortErr = fmt.Errorf("voiceprint: initialize onnxruntime: %w", err)
		}
	})
	return ortErr
}

// ONNXModel implements [Model] with ONNX Runtime.
//
// # Thread Safety
//
// ONNXModel is safe for concurrent use. The session is created once and
// shared; each Embed call allocates its own tensors.
type ONNXModel struct {
	mu      sync.RWMutex
	session *ort.DynamicAdvancedSession
	closed  bool

	dim        int
	layout     Layout
	inputName  string
	outputName string
	library    string
}

// ONNXModelOption configures an ONNXModel.
type ONNXModelOption func(*ONNXModel)

// WithONNXLayout sets the input tensor layout. Default: LayoutBinsFirst.
func WithONNXLayout(l Layout) ONNXModelOption {
	return func(m *ONNXModel) { m.layout = l }
}

// WithONNXEmbeddingDim overrides the embedding dimension. By default it is
// read from the model's output shape when static.
func WithONNXEmbeddingDim(dim int) ONNXModelOption {
	return func(m *ONNXModel) {
		if dim > 0 {
			m.dim = dim
		}
	}
}

// WithONNXTensorNames sets the input and output tensor names. By default
// the model's first input and first output are used.
func WithONNXTensorNames(input, output string) ONNXModelOption {
	return func(m *ONNXModel) {
		m.inputName = input
		m.outputName = output
	}
}

// WithONNXLibrary sets the ONNX Runtime shared library path.
func WithONNXLibrary(path string) ONNXModelOption {
	return func(m *ONNXModel) { m.library = path }
}

// NewONNXModel loads the .onnx file at path.
func NewONNXModel(path string, opts ...ONNXModelOption) (*ONNXModel, error) {
	m := &ONNXModel{}
	for _, opt := range opts {
		opt(m)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("voiceprint: model file: %w", err)
	}
	if err := InitONNXRuntime(m.library); err != nil {
		return nil, err
	}

	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("voiceprint: read model info: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("voiceprint: model has %d inputs and %d outputs", len(inputs), len(outputs))
	}
	if m.inputName == "" {
		m.inputName = inputs[0].Name
	}
	if m.outputName == "" {
		m.outputName = outputs[0].Name
	}
	if m.dim == 0 {
		for _, o := range outputs {
			if o.Name == m.outputName && len(o.Dimensions) > 0 {
				if last := o.Dimensions[len(o.Dimensions)-1]; last > 0 {
					m.dim = int(last)
				}
			}
		}
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("voiceprint: session options: %w", err)
	}
	defer options.Destroy()

	session, err := ort.NewDynamicAdvancedSession(path,
		[]string{m.inputName}, []string{m.outputName}, options)
	if err != nil {
		return nil, fmt.Errorf("voiceprint: create session: %w", err)
	}
	m.session = session
	return m, nil
}

// Embed implements [Model].
func (m *ONNXModel) Embed(fm *feature.Matrix) ([]float32, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrModelClosed
	}
	if fm.Frames == 0 || fm.Bins == 0 {
		return nil, fmt.Errorf("voiceprint: empty feature matrix (%d, %d)", fm.Bins, fm.Frames)
	}

	var (
		shape ort.Shape
		data  []float32
	)
	switch m.layout {
	case LayoutFramesFirst:
		shape = ort.NewShape(1, int64(fm.Frames), int64(fm.Bins))
		data = fm.Transpose()
	default:
		shape = ort.NewShape(1, int64(fm.Bins), int64(fm.Frames))
		data = fm.Data
	}

	input, err := ort.NewTensor(shape, data)
	if err != nil {
		return nil, fmt.Errorf("voiceprint: create input tensor: %w", err)
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}
	if err := m.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("voiceprint: inference: %w", err)
	}
	defer func() {
		for _, o := range outputs {
			if o != nil {
				o.Destroy()
			}
		}
	}()

	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("voiceprint: output %q is not a float32 tensor", m.outputName)
	}
	raw := out.GetData()
	emb := make([]float32, len(raw))
	copy(emb, raw)
	if m.dim > 0 && len(emb) != m.dim {
		return nil, fmt.Errorf("%w: model produced %d values, want %d", ErrDimensionMismatch, len(emb), m.dim)
	}
	return emb, nil
}

// Dimension implements [Model].
func (m *ONNXModel) Dimension() int { return m.dim }

// Close implements [Model].
func (m *ONNXModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	if m.session != nil {
		err := m.session.Destroy()
		m.session = nil
		return err
	}
	return nil
}
