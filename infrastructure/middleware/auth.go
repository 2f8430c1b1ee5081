package middlewares

import (
	"os"
	"strings"

	apperrors "facegate.io/application/appErrors"
	"facegate.io/application/interfaces"
	"facegate.io/infrastructure/auth"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

func bearerToken(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func decodeRole(ctx *gin.Context) (string, string, bool) {
	tokenString := bearerToken(ctx)
	if tokenString == "" {
		return "", "", false
	}
	token, err := auth.DecodeAuthToken(tokenString)
	if err != nil {
		return "", "", false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", false
	}
	role, _ := claims["role"].(string)
	deviceID, _ := claims["deviceID"].(string)
	return role, deviceID, true
}

// AdminAuthMiddleware guards management surfaces: identities, config, the
// audit log and the event feed.
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		role, deviceID, ok := decodeRole(ctx)
		if !ok || role != auth.RoleAdmin {
			apperrors.AuthenticationError(ctx, "unauthorized access")
			return
		}
		appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
		appContext.DeviceID = deviceID
		ctx.Next()
	}
}

// DeviceAuthMiddleware guards the verification endpoint. Kiosk clients
// present the static device key; admin and device tokens also pass.
func DeviceAuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		deviceKey := os.Getenv("FACEGATE_DEVICE_KEY")
		if deviceKey != "" && ctx.GetHeader("X-Device-Key") == deviceKey {
			ctx.Next()
			return
		}
		role, deviceID, ok := decodeRole(ctx)
		if !ok || (role != auth.RoleAdmin && role != auth.RoleDevice) {
			apperrors.AuthenticationError(ctx, "unauthorized access")
			return
		}
		appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
		appContext.DeviceID = deviceID
		ctx.Next()
	}
}
