// Package config handles configuration for the CLI client: defaults, an
// optional .env overlay, and command-line flags.
package config

import (
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/mpetrovs/spendvault/internal/client/backup"
	"github.com/mpetrovs/spendvault/internal/flagx"
)

type Config struct {
	// ServerEndpointAddr is the vault server base URL.
	ServerEndpointAddr string
	// SessionDBPath is the local SQLite file holding logged-in identities.
	SessionDBPath string
	// Backup configures the optional snapshot store; empty bucket disables it.
	Backup backup.Config
}

func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://localhost:8080"
	c.SessionDBPath = "spendvault.db"
	c.Backup.Region = "us-east-1"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional .env file / environment and finally from command-line
// flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

// parseEnv overlays Config fields from the environment, loading an optional
// .env file first (path from -e/-envfile, default ".env" when present).
//
// Recognized variables:
//
//	SPENDVAULT_SERVER      server base URL
//	SPENDVAULT_SESSION_DB  local session database path
//	S3_REGION, S3_ENDPOINT, S3_BUCKET, S3_ACCESS_KEY, S3_SECRET_KEY
func parseEnv(config *Config) {
	envFile := flagx.EnvFileFlag()
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)

	if v := os.Getenv("SPENDVAULT_SERVER"); v != "" {
		config.ServerEndpointAddr = v
	}
	if v := os.Getenv("SPENDVAULT_SESSION_DB"); v != "" {
		config.SessionDBPath = v
	}
	if v := os.Getenv("S3_REGION"); v != "" {
		config.Backup.Region = v
	}
	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		config.Backup.BaseEndpoint = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		config.Backup.Bucket = v
	}
	if v := os.Getenv("S3_ACCESS_KEY"); v != "" {
		config.Backup.AccessKey = v
	}
	if v := os.Getenv("S3_SECRET_KEY"); v != "" {
		config.Backup.SecretKey = v
	}
}

// parseFlags populates selected fields from command-line flags:
//
//	-s string   server base URL
//	-f string   local session database path
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-s", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.StringVar(&config.ServerEndpointAddr, "s", config.ServerEndpointAddr, "server base URL")
	fs.StringVar(&config.SessionDBPath, "f", config.SessionDBPath, "session database path")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
