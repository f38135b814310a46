package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/mpetrovs/spendvault/internal/flagx"
)

// parseEnv overlays Config fields from the environment, loading an optional
// .env file first (path from -e/-envfile, default ".env" when present).
//
// Recognized variables:
//
//	SPENDVAULT_ADDR          bind address
//	SPENDVAULT_DATABASE_DSN  PostgreSQL DSN
//	SPENDVAULT_SECRET_KEY    session token HMAC secret
//	SPENDVAULT_SESSION_TTL   session lifetime, hours
//	SPENDVAULT_CODE_TTL      verification code lifetime, minutes
func parseEnv(config *Config) {
	envFile := flagx.EnvFileFlag()
	if envFile == "" {
		envFile = ".env"
	}
	// Missing file is fine; the process environment still applies.
	_ = godotenv.Load(envFile)

	if v := os.Getenv("SPENDVAULT_ADDR"); v != "" {
		config.EndpointAddr = v
	}
	if v := os.Getenv("SPENDVAULT_DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("SPENDVAULT_SECRET_KEY"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("SPENDVAULT_SESSION_TTL"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil {
			config.SessionValidityDuration = time.Duration(hours) * time.Hour
		}
	}
	if v := os.Getenv("SPENDVAULT_CODE_TTL"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil {
			config.CodeValidityDuration = time.Duration(minutes) * time.Minute
		}
	}
}
