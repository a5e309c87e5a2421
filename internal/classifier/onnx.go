package classifier

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXConfig describes where the exported model and the runtime library live.
type ONNXConfig struct {
	ModelPath   string
	LibraryPath string // shared onnxruntime library, empty uses the platform default
	InputName   string
	OutputName  string
}

// ONNXModel runs the exported network through ONNX Runtime.
// Run is safe for concurrent use: tensors are allocated per call.
type ONNXModel struct {
	session *ort.DynamicAdvancedSession
}

// LoadONNX initializes the runtime environment and opens a session for cfg.ModelPath.
func LoadONNX(cfg ONNXConfig) (*ONNXModel, error) {
	if cfg.InputName == "" {
		cfg.InputName = "input"
	}
	if cfg.OutputName == "" {
		cfg.OutputName = "output"
	}
	if cfg.LibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.LibraryPath)
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{cfg.InputName}, []string{cfg.OutputName}, nil)
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create ONNX session for %s: %w", cfg.ModelPath, err)
	}

	return &ONNXModel{session: session}, nil
}

// Run executes one forward pass and returns the raw logits.
func (m *ONNXModel) Run(input []float32) ([]float32, error) {
	inputTensor, err := ort.NewTensor(ort.NewShape(1, 3, InputSize, InputSize), input)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(Labels))))
	if err != nil {
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	if err := m.session.Run(
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
	); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	logits := make([]float32, len(Labels))
	copy(logits, outputTensor.GetData())
	return logits, nil
}

// Close releases the session and the runtime environment.
func (m *ONNXModel) Close() error {
	var err error
	if m.session != nil {
		err = m.session.Destroy()
	}
	if envErr := ort.DestroyEnvironment(); err == nil {
		err = envErr
	}
	return err
}
