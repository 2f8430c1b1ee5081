package types

import (
	"errors"
	"fmt"
)

// Pipeline errors. Every stage failure is one of these; the verifier maps
// them to denied/failed outcomes and the transport layer maps them to status
// codes. None may be swallowed on the way up.
var (
	// ErrNoFaceDetected means the detector found no usable face.
	ErrNoFaceDetected = errors.New("no face detected in image")

	// ErrCropTooSmall means the clamped crop region degenerated below 2px.
	ErrCropTooSmall = errors.New("face crop region too small")

	// ErrDecodeFailure means the input bytes are not a decodable image.
	ErrDecodeFailure = errors.New("image could not be decoded")

	// ErrNotInitialized means the models or detector have not been loaded.
	ErrNotInitialized = errors.New("verification models not initialized")
)

// InferenceError wraps executor failures and tensor shape mismatches.
type InferenceError struct {
	Model string
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed for model %s: %v", e.Model, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// IsInferenceFailure reports whether err is (or wraps) an InferenceError.
func IsInferenceFailure(err error) bool {
	var ie *InferenceError
	return errors.As(err, &ie)
}

// DimensionMismatchError reports embeddings of unequal length reaching the
// distance function. Never coerced, always surfaced.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: want %d, got %d", e.Want, e.Got)
}

// AlreadyEnrolledError rejects an enrollment that duplicates an existing
// identity.
type AlreadyEnrolledError struct {
	Name string
}

func (e *AlreadyEnrolledError) Error() string {
	return fmt.Sprintf("face already enrolled as %q", e.Name)
}

// IsAlreadyEnrolled reports whether err is an AlreadyEnrolledError, returning
// the existing identity's name when it is.
func IsAlreadyEnrolled(err error) (string, bool) {
	var ae *AlreadyEnrolledError
	if errors.As(err, &ae) {
		return ae.Name, true
	}
	return "", false
}

// IsUnverifiableImage reports stage errors the caller can fix with a better
// capture, as opposed to infrastructure faults.
func IsUnverifiableImage(err error) bool {
	return errors.Is(err, ErrNoFaceDetected) || errors.Is(err, ErrCropTooSmall)
}
