package biometric

import (
	"fmt"
	"math"
	"time"

	"facegate.io/infrastructure/biometric/types"
)

// LivenessClassifier scores whether a face image shows a present live person
// or a replayed photo/screen. It owns no model state beyond the executor's
// metadata; the verifier serializes calls.
type LivenessClassifier struct {
	detector types.Detector
	executor types.Executor
}

func NewLivenessClassifier(detector types.Detector, executor types.Executor) *LivenessClassifier {
	return &LivenessClassifier{detector: detector, executor: executor}
}

// Check runs the anti-spoof pipeline: detect, context crop at 2.7x, resize
// to the model's input raster, BGR tensor, quantize, infer, softmax over the
// two logits. isSpoof when the spoof probability reaches threshold.
func (lc *LivenessClassifier) Check(img *types.Image, threshold float64) (*types.LivenessResult, error) {
	start := time.Now()

	bbox, err := lc.detector.Detect(img)
	if err != nil {
		return nil, err
	}
	if bbox == nil {
		return nil, types.ErrNoFaceDetected
	}

	cropped := Crop(img, bbox, LivenessCropScale)
	if cropped == nil {
		return nil, types.ErrCropTooSmall
	}

	inputSpec, err := lc.executor.InputSpec(types.ModelLiveness)
	if err != nil {
		return nil, &types.InferenceError{Model: types.ModelLiveness, Err: err}
	}
	outputSpec, err := lc.executor.OutputSpec(types.ModelLiveness)
	if err != nil {
		return nil, &types.InferenceError{Model: types.ModelLiveness, Err: err}
	}

	height, width, err := rasterSize(inputSpec.Shape)
	if err != nil {
		return nil, &types.InferenceError{Model: types.ModelLiveness, Err: err}
	}
	resized := ResizeImage(cropped, width, height)

	// The classifier's training data used BGR channel order. This is a hard
	// contract: RGB input silently degrades every score.
	order := inputSpec.Order
	if order == "" {
		order = "bgr"
	}
	input := ToTensor(resized, order)

	output, err := lc.executor.Run(types.ModelLiveness, Quantize(input.Data().([]float32), inputSpec.Quantization))
	if err != nil {
		return nil, &types.InferenceError{Model: types.ModelLiveness, Err: err}
	}

	logits := Dequantize(output, outputSpec.Quantization)
	if len(logits) != 2 {
		return nil, &types.InferenceError{
			Model: types.ModelLiveness,
			Err:   fmt.Errorf("expected 2 output logits, got %d", len(logits)),
		}
	}

	_, spoofProbability := Softmax2(float64(logits[0]), float64(logits[1]))
	isSpoof := spoofProbability >= threshold

	return &types.LivenessResult{
		IsLive:           !isSpoof,
		SpoofProbability: spoofProbability,
		ThresholdUsed:    threshold,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

// Softmax2 is the numerically stable two-class softmax. Subtracting the max
// logit keeps the exponentials finite for arbitrary magnitudes.
func Softmax2(x0 float64, x1 float64) (float64, float64) {
	m := math.Max(x0, x1)
	e0 := math.Exp(x0 - m)
	e1 := math.Exp(x1 - m)
	total := e0 + e1
	return e0 / total, e1 / total
}

// rasterSize extracts (height, width) from an NHWC tensor shape.
func rasterSize(shape []int64) (int, int, error) {
	if len(shape) == 4 {
		return int(shape[1]), int(shape[2]), nil
	}
	if len(shape) == 3 {
		return int(shape[0]), int(shape[1]), nil
	}
	return 0, 0, fmt.Errorf("unsupported input tensor shape %v", shape)
}
