package biometric

import (
	"errors"
	"math"
	"testing"

	"facegate.io/infrastructure/biometric/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDetector returns a fixed box, or no face when box is nil.
type fakeDetector struct {
	box *types.BoundingBox
	err error
}

func (d *fakeDetector) Detect(image *types.Image) (*types.BoundingBox, error) {
	return d.box, d.err
}

// fakeExecutor serves canned specs and output bytes, recording what it ran.
type fakeExecutor struct {
	inputs  map[string]*types.TensorSpec
	outputs map[string]*types.TensorSpec
	results map[string][]byte
	runErr  error

	ranModels []string
	lastInput []byte
}

func (e *fakeExecutor) InputSpec(modelID string) (*types.TensorSpec, error) {
	spec, ok := e.inputs[modelID]
	if !ok {
		return nil, errors.New("unknown model")
	}
	return spec, nil
}

func (e *fakeExecutor) OutputSpec(modelID string) (*types.TensorSpec, error) {
	spec, ok := e.outputs[modelID]
	if !ok {
		return nil, errors.New("unknown model")
	}
	return spec, nil
}

func (e *fakeExecutor) Run(modelID string, input []byte) ([]byte, error) {
	e.ranModels = append(e.ranModels, modelID)
	e.lastInput = input
	if e.runErr != nil {
		return nil, e.runErr
	}
	return e.results[modelID], nil
}

func floatBytes(values ...float32) []byte {
	return Quantize(values, types.QuantizationParams{Scale: 0})
}

func livenessExecutor(logit0, logit1 float32) *fakeExecutor {
	return &fakeExecutor{
		inputs: map[string]*types.TensorSpec{
			types.ModelLiveness: {Shape: []int64{1, 80, 80, 3}, Order: "bgr"},
		},
		outputs: map[string]*types.TensorSpec{
			types.ModelLiveness: {Shape: []int64{1, 2}},
		},
		results: map[string][]byte{
			types.ModelLiveness: floatBytes(logit0, logit1),
		},
	}
}

func TestSoftmax2(t *testing.T) {
	tests := []struct {
		name   string
		x0, x1 float64
		want1  float64
	}{
		{"symmetric", 0, 0, 0.5},
		{"confident live", 5, -5, 1.0 / (1.0 + math.Exp(10))},
		{"large magnitudes stay finite", 1000, 990, 1.0 / (1.0 + math.Exp(10))},
		{"huge negative pair", -1e8, -1e8 - 10, 1.0 / (1.0 + math.Exp(10))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p0, p1 := Softmax2(tt.x0, tt.x1)
			assert.InDelta(t, tt.want1, p1, 1e-9)
			assert.InDelta(t, 1.0, p0+p1, 1e-12)
			assert.False(t, math.IsNaN(p0) || math.IsNaN(p1))
		})
	}
}

func TestLivenessCheckLiveFace(t *testing.T) {
	executor := livenessExecutor(4, -4) // p(spoof) ~ 0.0003
	classifier := NewLivenessClassifier(&fakeDetector{box: &types.BoundingBox{X: 100, Y: 100, Width: 80, Height: 80}}, executor)

	result, err := classifier.Check(gradientImage(400, 400), 0.088)
	require.NoError(t, err)
	assert.True(t, result.IsLive)
	assert.Less(t, result.SpoofProbability, 0.088)
	assert.Equal(t, 0.088, result.ThresholdUsed)

	// 80x80 BGR float input for the classifier.
	require.Equal(t, []string{types.ModelLiveness}, executor.ranModels)
	assert.Len(t, executor.lastInput, 80*80*3*4)
}

func TestLivenessCheckSpoofAtThreshold(t *testing.T) {
	// Equal logits give p(spoof) = 0.5; the threshold comparison is
	// inclusive, so anything at or above denies.
	classifier := NewLivenessClassifier(&fakeDetector{box: &types.BoundingBox{X: 100, Y: 100, Width: 80, Height: 80}}, livenessExecutor(0, 0))

	result, err := classifier.Check(gradientImage(400, 400), 0.5)
	require.NoError(t, err)
	assert.False(t, result.IsLive)
	assert.InDelta(t, 0.5, result.SpoofProbability, 1e-9)
}

func TestLivenessCheckNoFace(t *testing.T) {
	classifier := NewLivenessClassifier(&fakeDetector{box: nil}, livenessExecutor(0, 0))

	_, err := classifier.Check(gradientImage(400, 400), 0.088)
	assert.ErrorIs(t, err, types.ErrNoFaceDetected)
}

func TestLivenessCheckExecutorFailure(t *testing.T) {
	executor := livenessExecutor(0, 0)
	executor.runErr = errors.New("session crashed")
	classifier := NewLivenessClassifier(&fakeDetector{box: &types.BoundingBox{X: 100, Y: 100, Width: 80, Height: 80}}, executor)

	_, err := classifier.Check(gradientImage(400, 400), 0.088)
	assert.True(t, types.IsInferenceFailure(err))
}

func TestLivenessCheckWrongLogitCount(t *testing.T) {
	executor := livenessExecutor(0, 0)
	executor.results[types.ModelLiveness] = floatBytes(1, 2, 3)
	classifier := NewLivenessClassifier(&fakeDetector{box: &types.BoundingBox{X: 100, Y: 100, Width: 80, Height: 80}}, executor)

	_, err := classifier.Check(gradientImage(400, 400), 0.088)
	assert.True(t, types.IsInferenceFailure(err))
}

func TestLivenessQuantizedInputUsesBGR(t *testing.T) {
	executor := livenessExecutor(4, -4)
	executor.inputs[types.ModelLiveness] = &types.TensorSpec{
		Shape:        []int64{1, 4, 4, 3},
		Order:        "bgr",
		Quantization: types.QuantizationParams{Scale: 1.0 / 255.0, ZeroPoint: -128},
	}
	classifier := NewLivenessClassifier(&fakeDetector{box: &types.BoundingBox{X: 10, Y: 10, Width: 20, Height: 20}}, executor)

	// Pure red input: in BGR packing the first byte is the blue channel,
	// quantized to the zero point.
	_, err := classifier.Check(solidImage(100, 100, 255, 0, 0), 0.088)
	require.NoError(t, err)
	require.Len(t, executor.lastInput, 4*4*3)
	assert.Equal(t, int8(-128), int8(executor.lastInput[0]))
	assert.Equal(t, int8(127), int8(executor.lastInput[2]))
}
