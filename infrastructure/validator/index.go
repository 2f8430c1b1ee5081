package validator

func init() {
	validate.RegisterValidation("identity_name", validateIdentityName)
	validate.RegisterValidation("preprocessing_mode", validatePreprocessingMode)
	validate.RegisterValidation("spoof_threshold", validateSpoofThreshold)
}

type Validator struct{}

func (v *Validator) ValidateStruct(payload interface{}) *[]error {
	return validateStruct(payload)
}

func (v *Validator) ValidateValue(value any, rules string) error {
	return validateField(value, rules)
}

var ValidatorInstance = Validator{}
