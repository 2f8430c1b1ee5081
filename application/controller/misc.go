package controller

import (
	"net/http"

	"facegate.io/application/interfaces"
	"facegate.io/application/repository"
	"facegate.io/infrastructure/biometric"
	"facegate.io/infrastructure/env"
	"facegate.io/infrastructure/events"
	"facegate.io/infrastructure/logger"
	server_response "facegate.io/infrastructure/serverResponse"
	"facegate.io/infrastructure/snapshots"
)

// HealthCheck reports whether the pipeline can take traffic plus the rolling
// processing stats. Returns 503 while models are still loading so fleet
// probes can gate traffic.
func HealthCheck(ctx *interfaces.ApplicationContext[any]) {
	healthy := biometric.BiometricService.IsHealthy()
	status := http.StatusOK
	message := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		message = "models not loaded"
	}
	attemptsRecorded, err := repository.AttemptLog().Count()
	if err != nil {
		logger.Error("could not count verification attempts", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
	}
	server_response.Responder.Respond(ctx.Ctx, status, message, map[string]any{
		"healthy":          healthy,
		"stats":            biometric.BiometricService.Stats(),
		"config":           biometric.BiometricService.Config(),
		"store":            env.Get("FACEGATE_STORE", "sqlite"),
		"attemptsRecorded": attemptsRecorded,
		"eventSubscribers": events.AttemptHub.SubscriberCount(),
		"snapshotsEnabled": snapshots.Enabled(),
	}, nil, nil)
}
