package auth

import (
	"errors"
	"os"
	"sync"

	"facegate.io/infrastructure/logger"
	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
)

var jwksOnce sync.Once
var jwks *keyfunc.JWKS

// hubJWKS lazily fetches the fleet hub's JWKS when the device is
// hub-managed. Nil on standalone devices.
func hubJWKS() *keyfunc.JWKS {
	jwksOnce.Do(func() {
		url := os.Getenv("FACEGATE_HUB_JWKS_URL")
		if url == "" {
			return
		}
		var err error
		jwks, err = keyfunc.Get(url, keyfunc.Options{})
		if err != nil {
			logger.Error("auth - could not fetch hub jwks", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			}, logger.LoggerOptions{
				Key:  "url",
				Data: url,
			})
		}
	})
	return jwks
}

// GenerateAuthToken signs a device-local HS256 token for claimsData.
func GenerateAuthToken(claimsData ClaimsData) (*string, error) {
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":      "facegate",
		"role":     claimsData.Role,
		"deviceID": claimsData.DeviceID,
		"iat":      claimsData.IssuedAt,
		"exp":      claimsData.ExpiresAt,
	}).SignedString([]byte(os.Getenv("FACEGATE_JWT_SECRET")))
	if err != nil {
		return nil, err
	}
	return &tokenString, nil
}

// DecodeAuthToken validates a token against the local HS256 secret or, when
// the device is hub-managed, the hub's RS256 JWKS.
func DecodeAuthToken(tokenString string) (*jwt.Token, error) {
	if remote := hubJWKS(); remote != nil {
		token, err := jwt.Parse(tokenString, remote.Keyfunc)
		if err == nil && token.Valid {
			return token, nil
		}
	}
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(os.Getenv("FACEGATE_JWT_SECRET")), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return token, nil
}
