package types

import "time"

// BiometricServiceType is the surface the controllers and the CLI consume.
// One implementation exists (the verifier); tests swap in fakes.
type BiometricServiceType interface {
	Verify(image *Image) (*VerificationOutcome, error)
	Enroll(name string, image *Image) (*EnrollmentResult, error)
	ListIdentities() ([]string, error)
	DeleteIdentity(name string) (bool, error)
	Config() DeviceConfig
	UpdateConfig(update DeviceConfigUpdate) (DeviceConfig, error)
	IsHealthy() bool
	Stats() ProcessingStats
	Close()
}

// Image is an 8-bit-per-channel RGB pixel buffer, row major. Pipeline stages
// treat it as immutable and allocate new buffers for their results.
type Image struct {
	Width  int
	Height int
	Pix    []uint8 // len = Width*Height*3, R G B per pixel
}

// RGBAt returns the pixel at (x, y). Callers guarantee bounds.
func (im *Image) RGBAt(x, y int) (uint8, uint8, uint8) {
	offset := (y*im.Width + x) * 3
	return im.Pix[offset], im.Pix[offset+1], im.Pix[offset+2]
}

// BoundingBox is a detector hit in image pixel coordinates.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Detector finds the most prominent face in an image. A nil box with a nil
// error means no face was found.
type Detector interface {
	Detect(image *Image) (*BoundingBox, error)
}

// QuantizationParams describe the affine mapping between floats and int8
// tensor values. Scale 0 marks a native-float model.
type QuantizationParams struct {
	Scale     float64 `json:"scale" yaml:"scale"`
	ZeroPoint int32   `json:"zero_point" yaml:"zero_point"`
}

type QuantizationMode int

const (
	// QuantizationNative means tensors move as little-endian float32 bytes.
	QuantizationNative QuantizationMode = iota
	// QuantizationAffine means tensors move as int8 bytes under Scale/ZeroPoint.
	QuantizationAffine
)

// Mode resolves the tagged variant once. Resolved at model load, never
// re-checked per pixel.
func (p QuantizationParams) Mode() QuantizationMode {
	if p.Scale == 0 {
		return QuantizationNative
	}
	return QuantizationAffine
}

// TensorSpec is one side (input or output) of a model's tensor contract.
type TensorSpec struct {
	Shape        []int64
	Quantization QuantizationParams
	// Order is the channel order the model was trained on, "rgb" or "bgr".
	Order string
}

// ElementCount multiplies out the shape.
func (s TensorSpec) ElementCount() int {
	count := 1
	for _, dim := range s.Shape {
		count *= int(dim)
	}
	return count
}

// Executor runs a loaded model over quantized (or native-float) tensor bytes.
// Implementations are not required to be safe for concurrent Run calls; the
// verifier serializes access.
type Executor interface {
	InputSpec(modelID string) (*TensorSpec, error)
	OutputSpec(modelID string) (*TensorSpec, error)
	Run(modelID string, input []byte) ([]byte, error)
}

// Model ids the pipeline expects the executor to have loaded.
const (
	ModelLiveness  = "liveness"
	ModelEmbedding = "embedding"
)

// EmbeddingStore persists enrolled identity embeddings. Load returns a deep
// copy grouped by identity name; implementations apply writes atomically with
// respect to concurrent reads.
type EmbeddingStore interface {
	Load() (map[string][][]float32, error)
	Save(name string, embedding []float32) error
	Delete(name string) (bool, error)
	List() ([]string, error)
}

type Decision string

const (
	DecisionGranted Decision = "granted"
	DecisionDenied  Decision = "denied"
)

// LivenessResult is the anti-spoof classifier's verdict for one image.
type LivenessResult struct {
	IsLive           bool    `json:"is_live"`
	SpoofProbability float64 `json:"spoof_probability"`
	ThresholdUsed    float64 `json:"threshold_used"`
	ProcessingTimeMs int64   `json:"processing_time_ms"`
}

// VerificationOutcome is the orchestrator's decision for one verify attempt.
// Created fresh per attempt; persistence is the attempt log's concern.
type VerificationOutcome struct {
	Decision         Decision `json:"decision"`
	MatchedIdentity  *string  `json:"matched_identity"`
	Distance         float64  `json:"distance"`
	IsLive           bool     `json:"is_live"`
	SpoofProbability float64  `json:"spoof_probability"`
	FailureReason    *string  `json:"failure_reason,omitempty"`
	ProcessingTimeMs int64    `json:"processing_time_ms"`
}

// EnrollmentResult reports a successful enrollment.
type EnrollmentResult struct {
	Name             string  `json:"name"`
	EmbeddingLength  int     `json:"embedding_length"`
	EmbeddingCount   int     `json:"embedding_count"`
	NearestDistance  float64 `json:"nearest_distance"`
	ProcessingTimeMs int64   `json:"processing_time_ms"`
}

// PreprocessingMode selects the illumination-normalization strategy.
type PreprocessingMode string

const (
	PreprocessingFast     PreprocessingMode = "fast"
	PreprocessingAccurate PreprocessingMode = "accurate"
)

// DeviceConfig is the runtime-tunable decision surface.
type DeviceConfig struct {
	SpoofThreshold        float64           `json:"spoof_threshold"`
	VerificationThreshold float64           `json:"verification_threshold"`
	DuplicateThreshold    float64           `json:"duplicate_threshold"`
	PreprocessingMode     PreprocessingMode `json:"preprocessing_mode"`
}

// DeviceConfigUpdate carries a partial config change; nil fields keep their
// current value.
type DeviceConfigUpdate struct {
	SpoofThreshold        *float64           `json:"spoof_threshold"`
	VerificationThreshold *float64           `json:"verification_threshold"`
	DuplicateThreshold    *float64           `json:"duplicate_threshold"`
	PreprocessingMode     *PreprocessingMode `json:"preprocessing_mode"`
}

// ProcessingStats tracks request volume and latency for the health surface.
type ProcessingStats struct {
	TotalRequests         int64     `json:"total_requests"`
	SuccessfulRequests    int64     `json:"successful_requests"`
	FailedRequests        int64     `json:"failed_requests"`
	AverageProcessingTime float64   `json:"average_processing_time_ms"`
	LastRequestAt         time.Time `json:"last_request_at"`
}
