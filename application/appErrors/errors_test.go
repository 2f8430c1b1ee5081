package apperrors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"facegate.io/application/constants"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(recorder)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return ctx, recorder
}

func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func TestEntityAlreadyExistsError(t *testing.T) {
	ctx, recorder := testContext(t)

	EntityAlreadyExistsError(ctx, "face already enrolled",
		map[string]any{"existingIdentity": "alice"}, &constants.IDENTITY_DUPLICATE)

	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.True(t, ctx.IsAborted())
	body := decodeEnvelope(t, recorder)
	assert.Equal(t, "face already enrolled", body["message"])
	assert.EqualValues(t, constants.IDENTITY_DUPLICATE, body["response_code"])
	payload := body["body"].(map[string]any)
	assert.Equal(t, "alice", payload["existingIdentity"])
}

func TestServiceNotReadyError(t *testing.T) {
	ctx, recorder := testContext(t)

	ServiceNotReadyError(ctx, &constants.MODELS_LOADING)

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	body := decodeEnvelope(t, recorder)
	assert.EqualValues(t, constants.MODELS_LOADING, body["response_code"])
}

func TestUnverifiableImageError(t *testing.T) {
	ctx, recorder := testContext(t)

	UnverifiableImageError(ctx, "no face detected in image", &constants.VERIFICATION_UNUSABLE_IMAGE)

	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	body := decodeEnvelope(t, recorder)
	assert.Equal(t, "no face detected in image", body["message"])
	assert.EqualValues(t, constants.VERIFICATION_UNUSABLE_IMAGE, body["response_code"])
}
