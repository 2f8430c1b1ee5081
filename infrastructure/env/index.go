package env

import (
	"os"

	"facegate.io/infrastructure/logger"
	"github.com/joho/godotenv"
)

// LoadEnv reads the .env file into the process environment. A missing file
// is fine in deployments where variables come from the service supervisor.
func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		logger.Info("error loading env variables")
	}
}

// Get returns the named variable or fallback when unset.
func Get(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
