package controller

import (
	"errors"
	"net/http"
	"strconv"

	apperrors "facegate.io/application/appErrors"
	"facegate.io/application/constants"
	"facegate.io/application/controller/dto"
	"facegate.io/application/interfaces"
	"facegate.io/application/repository"
	"facegate.io/application/utils"
	"facegate.io/entities"
	"facegate.io/infrastructure/biometric"
	"facegate.io/infrastructure/biometric/types"
	"facegate.io/infrastructure/events"
	"facegate.io/infrastructure/logger"
	server_response "facegate.io/infrastructure/serverResponse"
	"facegate.io/infrastructure/snapshots"
	"facegate.io/infrastructure/validator"
)

const snapshotJPEGQuality = 85

func decodeRequestImage(ctx *interfaces.ApplicationContext[any], payload string) *types.Image {
	raw, err := utils.DecodeBase64Image(payload)
	if err != nil {
		apperrors.ClientError(ctx.Ctx, "image is not valid base64", nil, nil)
		return nil
	}
	if int64(len(raw)) > constants.MAX_IMAGE_BYTES {
		apperrors.ClientError(ctx.Ctx, "image exceeds the maximum allowed size", nil, nil)
		return nil
	}
	img, err := biometric.DecodeImage(raw)
	if err != nil {
		apperrors.ClientError(ctx.Ctx, "image could not be decoded", nil, nil)
		return nil
	}
	return img
}

func clientName(ctx *interfaces.ApplicationContext[any]) *string {
	if name, ok := ctx.GetContextData("ClientName").(string); ok && name != "" {
		return &name
	}
	return nil
}

// recordAttempt persists the audit row and pushes it onto the live event
// feed. Audit failures are logged, never surfaced to the kiosk.
func recordAttempt(attempt entities.VerificationAttempt) entities.VerificationAttempt {
	parsed := attempt.ParseModel().(*entities.VerificationAttempt)
	if err := repository.AttemptLog().Record(*parsed); err != nil {
		logger.Error("could not record verification attempt", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
	}
	events.AttemptHub.Broadcast(parsed)
	return *parsed
}

func archiveDeniedFrame(attemptID string, img *types.Image) {
	if !snapshots.Enabled() {
		return
	}
	jpegBytes, err := biometric.EncodeJPEG(img, snapshotJPEGQuality)
	if err != nil {
		logger.Error("could not encode snapshot", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return
	}
	go snapshots.SnapshotArchive.Archive(attemptID, jpegBytes)
}

// respondPipelineError maps a stage failure onto the status and response
// code the kiosk UI keys its dialogs off.
func respondPipelineError(ctx *interfaces.ApplicationContext[any], err error) {
	switch {
	case errors.Is(err, types.ErrNotInitialized):
		apperrors.ServiceNotReadyError(ctx.Ctx, &constants.MODELS_LOADING)
	case types.IsUnverifiableImage(err):
		apperrors.UnverifiableImageError(ctx.Ctx, err.Error(), &constants.VERIFICATION_UNUSABLE_IMAGE)
	default:
		apperrors.FatalServerError(ctx.Ctx, err)
	}
}

// VerifyFace runs the full pipeline over one frame and answers the access
// decision. Every attempt that reaches the pipeline lands in the audit log,
// including denials caused by stage failures.
func VerifyFace(ctx *interfaces.ApplicationContext[dto.VerifyFaceDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}
	plainCtx := &interfaces.ApplicationContext[any]{Ctx: ctx.Ctx, Keys: ctx.Keys, Header: ctx.Header, DeviceID: ctx.DeviceID}
	img := decodeRequestImage(plainCtx, ctx.Body.Image)
	if img == nil {
		return
	}

	outcome, pipelineErr := biometric.BiometricService.Verify(img)
	attempt := recordAttempt(entities.VerificationAttempt{
		Kind:             entities.AttemptKindVerify,
		Decision:         string(outcome.Decision),
		MatchedIdentity:  outcome.MatchedIdentity,
		Distance:         outcome.Distance,
		IsLive:           outcome.IsLive,
		SpoofProbability: outcome.SpoofProbability,
		FailureReason:    outcome.FailureReason,
		ClientName:       clientName(plainCtx),
		ProcessingTimeMs: outcome.ProcessingTimeMs,
	})
	if outcome.Decision == types.DecisionDenied {
		archiveDeniedFrame(attempt.ID, img)
	}

	if pipelineErr != nil {
		respondPipelineError(plainCtx, pipelineErr)
		return
	}

	payload := map[string]any{
		"attemptID": attempt.ID,
		"outcome":   outcome,
	}
	if outcome.Decision == types.DecisionGranted {
		server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "access granted", payload, nil, &constants.ACCESS_GRANTED)
		return
	}
	if !outcome.IsLive {
		server_response.Responder.Respond(ctx.Ctx, http.StatusForbidden, "access denied", payload, nil, &constants.ACCESS_DENIED_SPOOF)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusForbidden, "access denied", payload, nil, &constants.ACCESS_DENIED_NO_MATCH)
}

// EnrollIdentity captures one embedding for a (possibly new) identity.
func EnrollIdentity(ctx *interfaces.ApplicationContext[dto.EnrollIdentityDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}
	plainCtx := &interfaces.ApplicationContext[any]{Ctx: ctx.Ctx, Keys: ctx.Keys, Header: ctx.Header, DeviceID: ctx.DeviceID}
	img := decodeRequestImage(plainCtx, ctx.Body.Image)
	if img == nil {
		return
	}

	result, err := biometric.BiometricService.Enroll(ctx.Body.Name, img)
	if err != nil {
		failure := err.Error()
		recordAttempt(entities.VerificationAttempt{
			Kind:          entities.AttemptKindEnroll,
			Decision:      string(types.DecisionDenied),
			FailureReason: &failure,
			ClientName:    clientName(plainCtx),
		})
		if existing, ok := types.IsAlreadyEnrolled(err); ok {
			apperrors.EntityAlreadyExistsError(ctx.Ctx, "face already enrolled",
				map[string]any{"existingIdentity": existing}, &constants.IDENTITY_DUPLICATE)
			return
		}
		respondPipelineError(plainCtx, err)
		return
	}

	recordAttempt(entities.VerificationAttempt{
		Kind:             entities.AttemptKindEnroll,
		Decision:         string(types.DecisionGranted),
		MatchedIdentity:  &result.Name,
		Distance:         result.NearestDistance,
		ClientName:       clientName(plainCtx),
		ProcessingTimeMs: result.ProcessingTimeMs,
	})
	server_response.Responder.Respond(ctx.Ctx, http.StatusCreated, "identity enrolled", result, nil, &constants.IDENTITY_ENROLLED)
}

func ListIdentities(ctx *interfaces.ApplicationContext[any]) {
	names, err := biometric.BiometricService.ListIdentities()
	if err != nil {
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "enrolled identities", map[string]any{
		"identities": names,
		"count":      len(names),
	}, nil, nil)
}

func DeleteIdentity(ctx *interfaces.ApplicationContext[any]) {
	name := ctx.Param["name"]
	if name == "" {
		apperrors.ClientError(ctx.Ctx, "identity name is required", nil, nil)
		return
	}
	deleted, err := biometric.BiometricService.DeleteIdentity(name)
	if err != nil {
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}
	if !deleted {
		apperrors.NotFoundError(ctx.Ctx, "identity not found")
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "identity deleted", nil, nil, nil)
}

func GetDeviceConfig(ctx *interfaces.ApplicationContext[any]) {
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "device config",
		biometric.BiometricService.Config(), nil, nil)
}

func UpdateDeviceConfig(ctx *interfaces.ApplicationContext[dto.UpdateDeviceConfigDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}
	update := types.DeviceConfigUpdate{
		SpoofThreshold:        ctx.Body.SpoofThreshold,
		VerificationThreshold: ctx.Body.VerificationThreshold,
		DuplicateThreshold:    ctx.Body.DuplicateThreshold,
	}
	if ctx.Body.PreprocessingMode != nil {
		mode := types.PreprocessingMode(*ctx.Body.PreprocessingMode)
		update.PreprocessingMode = &mode
	}
	config, err := biometric.BiometricService.UpdateConfig(update)
	if err != nil {
		apperrors.CustomError(ctx.Ctx, err.Error(), nil)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "device config updated", config, nil, nil)
}

// ListAttempts pages through the audit log, newest first. "before" is an
// exclusive attempt-id cursor.
func ListAttempts(ctx *interfaces.ApplicationContext[any]) {
	limit, _ := strconv.Atoi(ctx.Query["limit"])
	rows, err := repository.AttemptLog().List(limit, ctx.Query["before"])
	if err != nil {
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}
	var cursor *string
	if len(rows) > 0 {
		cursor = &rows[len(rows)-1].ID
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "verification attempts", map[string]any{
		"attempts":   rows,
		"count":      len(rows),
		"nextCursor": cursor,
	}, nil, nil)
}

// GetAttempt looks up a single audit row, e.g. when a dashboard follows an
// event frame to its full record.
func GetAttempt(ctx *interfaces.ApplicationContext[any]) {
	id := ctx.Param["id"]
	if id == "" {
		apperrors.ClientError(ctx.Ctx, "attempt id is required", nil, nil)
		return
	}
	row, err := repository.AttemptLog().Find(id)
	if err != nil {
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}
	if row == nil {
		apperrors.NotFoundError(ctx.Ctx, "attempt not found")
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "verification attempt", row, nil, nil)
}
