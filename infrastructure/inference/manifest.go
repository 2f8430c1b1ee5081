package inference

import (
	"fmt"
	"os"

	"facegate.io/infrastructure/biometric/types"
	"gopkg.in/yaml.v3"
)

// Manifest is the single source of model metadata: file paths, tensor
// shapes, quantization parameters and channel order per model. The core
// pipeline consumes these through the executor's spec methods and never
// parses YAML itself.
type Manifest struct {
	Detector struct {
		Cascade string `yaml:"cascade"`
	} `yaml:"detector"`
	Models []ModelSpec `yaml:"models"`
}

// ModelSpec declares one ONNX model and its tensor contract.
type ModelSpec struct {
	ID     string     `yaml:"id"`
	Path   string     `yaml:"path"`
	Input  TensorDecl `yaml:"input"`
	Output TensorDecl `yaml:"output"`
}

// TensorDecl is one side of a model's tensor contract as written in the
// manifest. A zero (or omitted) scale declares a native-float tensor.
type TensorDecl struct {
	Name      string  `yaml:"name"`
	Shape     []int64 `yaml:"shape"`
	Scale     float64 `yaml:"scale"`
	ZeroPoint int32   `yaml:"zero_point"`
	Order     string  `yaml:"order"`
}

// Spec resolves the declaration into the pipeline's tensor spec.
func (d TensorDecl) Spec() *types.TensorSpec {
	return &types.TensorSpec{
		Shape: d.Shape,
		Quantization: types.QuantizationParams{
			Scale:     d.Scale,
			ZeroPoint: d.ZeroPoint,
		},
		Order: d.Order,
	}
}

// LoadManifest reads and validates the model manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read model manifest %s: %w", path, err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes manifest YAML and checks the declarations the
// executor depends on.
func ParseManifest(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("could not parse model manifest: %w", err)
	}
	if manifest.Detector.Cascade == "" {
		return nil, fmt.Errorf("model manifest is missing detector.cascade")
	}
	if len(manifest.Models) == 0 {
		return nil, fmt.Errorf("model manifest declares no models")
	}
	seen := map[string]bool{}
	for _, model := range manifest.Models {
		if model.ID == "" || model.Path == "" {
			return nil, fmt.Errorf("every model needs an id and a path")
		}
		if seen[model.ID] {
			return nil, fmt.Errorf("duplicate model id %q", model.ID)
		}
		seen[model.ID] = true
		if len(model.Input.Shape) == 0 || len(model.Output.Shape) == 0 {
			return nil, fmt.Errorf("model %q is missing tensor shapes", model.ID)
		}
		if model.Input.Scale < 0 || model.Output.Scale < 0 {
			return nil, fmt.Errorf("model %q declares a negative quantization scale", model.ID)
		}
	}
	return &manifest, nil
}

// Model returns the declaration for id, or nil when absent.
func (m *Manifest) Model(id string) *ModelSpec {
	for i := range m.Models {
		if m.Models[i].ID == id {
			return &m.Models[i]
		}
	}
	return nil
}
