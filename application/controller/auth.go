package controller

import (
	"net/http"
	"os"
	"time"

	apperrors "facegate.io/application/appErrors"
	"facegate.io/application/controller/dto"
	"facegate.io/application/interfaces"
	"facegate.io/infrastructure/auth"
	"facegate.io/infrastructure/cryptography"
	server_response "facegate.io/infrastructure/serverResponse"
	"facegate.io/infrastructure/validator"
)

const tokenTTL = 8 * time.Hour

// IssueToken exchanges the device admin passcode for a signed access token.
// Device-scoped tokens can only submit verification frames.
func IssueToken(ctx *interfaces.ApplicationContext[dto.IssueTokenDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}

	passcodeHash := os.Getenv("FACEGATE_ADMIN_PASSCODE_HASH")
	if passcodeHash == "" || !cryptography.CryptoHasher.VerifyHashData(passcodeHash, ctx.Body.Passcode) {
		apperrors.AuthenticationError(ctx.Ctx, "invalid passcode")
		return
	}

	role := ctx.Body.Role
	if role == "" {
		role = auth.RoleAdmin
	}
	now := time.Now()
	token, err := auth.GenerateAuthToken(auth.ClaimsData{
		Role:      role,
		DeviceID:  ctx.Body.DeviceID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(tokenTTL).Unix(),
	})
	if err != nil {
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusCreated, "token issued", map[string]any{
		"token":     token,
		"role":      role,
		"expiresAt": now.Add(tokenTTL).Unix(),
	}, nil, nil)
}
