package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":8080", cfg.EndpointAddr)
	assert.NotEmpty(t, cfg.DatabaseDSN)
	assert.Equal(t, 30*24*time.Hour, cfg.SessionValidityDuration)
	assert.Equal(t, 15*time.Minute, cfg.CodeValidityDuration)
}

func TestParseEnv_Overrides(t *testing.T) {
	t.Setenv("SPENDVAULT_ADDR", ":9090")
	t.Setenv("SPENDVAULT_SECRET_KEY", "env-secret")
	t.Setenv("SPENDVAULT_SESSION_TTL", "48")
	t.Setenv("SPENDVAULT_CODE_TTL", "5")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, ":9090", cfg.EndpointAddr)
	assert.Equal(t, "env-secret", cfg.SecretKey)
	assert.Equal(t, 48*time.Hour, cfg.SessionValidityDuration)
	assert.Equal(t, 5*time.Minute, cfg.CodeValidityDuration)
}

func TestParseFlags_Overrides(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"cmd", "-a", ":7070", "-d", "postgres://x", "-t", "12", "-c", "3"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":7070", cfg.EndpointAddr)
	assert.Equal(t, "postgres://x", cfg.DatabaseDSN)
	assert.Equal(t, 12*time.Hour, cfg.SessionValidityDuration)
	assert.Equal(t, 3*time.Minute, cfg.CodeValidityDuration)
}
