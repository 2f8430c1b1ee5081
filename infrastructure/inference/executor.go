package inference

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sync"

	"facegate.io/infrastructure/biometric/types"
	"facegate.io/infrastructure/logger"
	ort "github.com/yalue/onnxruntime_go"
)

var ortOnce sync.Once
var ortInitErr error

// initRuntime brings up the ONNX Runtime environment once per process,
// honoring ONNXRUNTIME_SHARED_LIBRARY_PATH for non-default library
// locations.
func initRuntime() error {
	ortOnce.Do(func() {
		if path := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); path != "" {
			ort.SetSharedLibraryPath(path)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// loadedModel is one ONNX session with its tensors allocated once at load
// and reused across runs.
type loadedModel struct {
	spec    ModelSpec
	session *ort.AdvancedSession

	inputInt8  *ort.Tensor[int8]
	outputInt8 *ort.Tensor[int8]

	inputFloat  *ort.Tensor[float32]
	outputFloat *ort.Tensor[float32]
}

// Executor implements the inference contract over ONNX Runtime. Run is not
// re-entrant; the verifier serializes access.
type Executor struct {
	models map[string]*loadedModel
}

// NewExecutor creates one session per manifest model. Sessions live until
// Close.
func NewExecutor(manifest *Manifest) (*Executor, error) {
	if err := initRuntime(); err != nil {
		return nil, fmt.Errorf("could not initialize onnxruntime: %w", err)
	}

	executor := &Executor{models: map[string]*loadedModel{}}
	for _, spec := range manifest.Models {
		model, err := loadModel(spec)
		if err != nil {
			executor.Close()
			return nil, err
		}
		executor.models[spec.ID] = model
		logger.Info("inference session created", logger.LoggerOptions{
			Key:  "model",
			Data: spec.ID,
		}, logger.LoggerOptions{
			Key:  "path",
			Data: spec.Path,
		})
	}
	return executor, nil
}

func loadModel(spec ModelSpec) (*loadedModel, error) {
	inputName := spec.Input.Name
	if inputName == "" {
		inputName = "input"
	}
	outputName := spec.Output.Name
	if outputName == "" {
		outputName = "output"
	}

	model := &loadedModel{spec: spec}
	var input, output ort.Value
	var err error

	if spec.Input.Spec().Quantization.Mode() == types.QuantizationAffine {
		model.inputInt8, err = ort.NewEmptyTensor[int8](ort.NewShape(spec.Input.Shape...))
		input = model.inputInt8
	} else {
		model.inputFloat, err = ort.NewEmptyTensor[float32](ort.NewShape(spec.Input.Shape...))
		input = model.inputFloat
	}
	if err != nil {
		return nil, fmt.Errorf("could not allocate input tensor for %s: %w", spec.ID, err)
	}

	if spec.Output.Spec().Quantization.Mode() == types.QuantizationAffine {
		model.outputInt8, err = ort.NewEmptyTensor[int8](ort.NewShape(spec.Output.Shape...))
		output = model.outputInt8
	} else {
		model.outputFloat, err = ort.NewEmptyTensor[float32](ort.NewShape(spec.Output.Shape...))
		output = model.outputFloat
	}
	if err != nil {
		model.destroy()
		return nil, fmt.Errorf("could not allocate output tensor for %s: %w", spec.ID, err)
	}

	model.session, err = ort.NewAdvancedSession(spec.Path,
		[]string{inputName}, []string{outputName},
		[]ort.Value{input}, []ort.Value{output}, nil)
	if err != nil {
		model.destroy()
		return nil, fmt.Errorf("could not create session for %s: %w", spec.ID, err)
	}
	return model, nil
}

// InputSpec reports the input tensor contract for modelID.
func (e *Executor) InputSpec(modelID string) (*types.TensorSpec, error) {
	model, ok := e.models[modelID]
	if !ok {
		return nil, fmt.Errorf("unknown model %q", modelID)
	}
	return model.spec.Input.Spec(), nil
}

// OutputSpec reports the output tensor contract for modelID.
func (e *Executor) OutputSpec(modelID string) (*types.TensorSpec, error) {
	model, ok := e.models[modelID]
	if !ok {
		return nil, fmt.Errorf("unknown model %q", modelID)
	}
	return model.spec.Output.Spec(), nil
}

// Run feeds input bytes through the model and returns the output bytes in
// the layout the output spec declares. The byte length must match the input
// shape exactly (x4 on the native-float path).
func (e *Executor) Run(modelID string, input []byte) ([]byte, error) {
	model, ok := e.models[modelID]
	if !ok {
		return nil, fmt.Errorf("unknown model %q", modelID)
	}

	elements := model.spec.Input.Spec().ElementCount()
	if model.inputInt8 != nil {
		if len(input) != elements {
			return nil, fmt.Errorf("model %s expects %d input bytes, got %d", modelID, elements, len(input))
		}
		data := model.inputInt8.GetData()
		for i, value := range input {
			data[i] = int8(value)
		}
	} else {
		if len(input) != elements*4 {
			return nil, fmt.Errorf("model %s expects %d input bytes, got %d", modelID, elements*4, len(input))
		}
		data := model.inputFloat.GetData()
		for i := range data {
			data[i] = math.Float32frombits(binary.LittleEndian.Uint32(input[i*4:]))
		}
	}

	if err := model.session.Run(); err != nil {
		return nil, fmt.Errorf("model %s run failed: %w", modelID, err)
	}

	if model.outputInt8 != nil {
		data := model.outputInt8.GetData()
		out := make([]byte, len(data))
		for i, value := range data {
			out[i] = byte(value)
		}
		return out, nil
	}
	data := model.outputFloat.GetData()
	out := make([]byte, len(data)*4)
	for i, value := range data {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(value))
	}
	return out, nil
}

// Close destroys every session and tensor. The environment stays up for the
// process lifetime; re-creating it per reload churns the native runtime.
func (e *Executor) Close() {
	for _, model := range e.models {
		model.destroy()
	}
	e.models = map[string]*loadedModel{}
}

func (m *loadedModel) destroy() {
	if m.session != nil {
		m.session.Destroy()
	}
	if m.inputInt8 != nil {
		m.inputInt8.Destroy()
	}
	if m.outputInt8 != nil {
		m.outputInt8.Destroy()
	}
	if m.inputFloat != nil {
		m.inputFloat.Destroy()
	}
	if m.outputFloat != nil {
		m.outputFloat.Destroy()
	}
}
