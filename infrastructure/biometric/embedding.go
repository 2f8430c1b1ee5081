package biometric

import (
	"fmt"
	"time"

	"facegate.io/infrastructure/biometric/types"
)

// EmbeddingExtractor maps a face image to its identity embedding. Purely
// functional given an image; the only state is the executor's model
// metadata.
type EmbeddingExtractor struct {
	detector types.Detector
	executor types.Executor
}

func NewEmbeddingExtractor(detector types.Detector, executor types.Executor) *EmbeddingExtractor {
	return &EmbeddingExtractor{detector: detector, executor: executor}
}

// Extract runs the recognition pipeline: detect, tight crop at 1.0x (no
// context padding), full preprocessing to the model's square input size,
// quantize, infer, dequantize into a fixed-length embedding.
func (ee *EmbeddingExtractor) Extract(img *types.Image, mode types.PreprocessingMode) ([]float32, time.Duration, error) {
	start := time.Now()

	bbox, err := ee.detector.Detect(img)
	if err != nil {
		return nil, 0, err
	}
	if bbox == nil {
		return nil, 0, types.ErrNoFaceDetected
	}

	cropped := Crop(img, bbox, RecognitionCropScale)
	if cropped == nil {
		return nil, 0, types.ErrCropTooSmall
	}

	inputSpec, err := ee.executor.InputSpec(types.ModelEmbedding)
	if err != nil {
		return nil, 0, &types.InferenceError{Model: types.ModelEmbedding, Err: err}
	}
	outputSpec, err := ee.executor.OutputSpec(types.ModelEmbedding)
	if err != nil {
		return nil, 0, &types.InferenceError{Model: types.ModelEmbedding, Err: err}
	}

	height, width, err := rasterSize(inputSpec.Shape)
	if err != nil {
		return nil, 0, &types.InferenceError{Model: types.ModelEmbedding, Err: err}
	}
	if height != width {
		return nil, 0, &types.InferenceError{
			Model: types.ModelEmbedding,
			Err:   fmt.Errorf("embedding model input must be square, got %dx%d", height, width),
		}
	}

	input := Preprocess(cropped, width, mode)

	output, err := ee.executor.Run(types.ModelEmbedding, Quantize(input.Data().([]float32), inputSpec.Quantization))
	if err != nil {
		return nil, 0, &types.InferenceError{Model: types.ModelEmbedding, Err: err}
	}

	embedding := Dequantize(output, outputSpec.Quantization)
	if want := outputSpec.ElementCount(); len(embedding) != want {
		return nil, 0, &types.InferenceError{
			Model: types.ModelEmbedding,
			Err:   fmt.Errorf("expected embedding of length %d, got %d", want, len(embedding)),
		}
	}

	return embedding, time.Since(start), nil
}
