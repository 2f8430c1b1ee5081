package validator

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var identityNameRegex = regexp.MustCompile(`^[\p{L}\p{N} .'\-]+$`)

// Display names for enrolled identities. Letters, digits, spaces and the
// usual name punctuation, nothing that can smuggle markup into the UI.
func validateIdentityName(fl validator.FieldLevel) bool {
	name := strings.TrimSpace(fl.Field().String())
	if name == "" || len(name) > 64 {
		return false
	}
	return identityNameRegex.MatchString(name)
}

func validatePreprocessingMode(fl validator.FieldLevel) bool {
	switch strings.ToLower(fl.Field().String()) {
	case "fast", "accurate":
		return true
	}
	return false
}

func validateSpoofThreshold(fl validator.FieldLevel) bool {
	value := fl.Field().Float()
	return value >= 0.001 && value <= 0.5
}
