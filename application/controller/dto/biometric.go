package dto

type VerifyFaceDTO struct {
	Image string `json:"image" validate:"required"`
}

type EnrollIdentityDTO struct {
	Name  string `json:"name" validate:"required,identity_name"`
	Image string `json:"image" validate:"required"`
}

// UpdateDeviceConfigDTO is a partial update; omitted fields keep their
// current value.
type UpdateDeviceConfigDTO struct {
	SpoofThreshold        *float64 `json:"spoofThreshold" validate:"omitempty,spoof_threshold"`
	VerificationThreshold *float64 `json:"verificationThreshold" validate:"omitempty,gt=0,lte=10"`
	DuplicateThreshold    *float64 `json:"duplicateThreshold" validate:"omitempty,gt=0,lte=10"`
	PreprocessingMode     *string  `json:"preprocessingMode" validate:"omitempty,preprocessing_mode"`
}
