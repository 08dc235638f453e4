package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EntornoInvalido(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FISK_ENV", "staging")

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_Fisk(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FISK_ENV", "PROD")
	t.Setenv("FISK_CERT_PATH", "/certs/fisk.p12")
	t.Setenv("FISK_STRICT_SIGNATURES", "true")
	t.Setenv("FISK_SKIP_VERIFY_DEMO", "no-es-bool")
	t.Setenv("FISK_TIMEOUT_SECONDS", "12")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Fisk.Env)
	assert.Equal(t, "/certs/fisk.p12", cfg.Fisk.CertPath)
	assert.True(t, cfg.Fisk.StrictSignatures)
	assert.False(t, cfg.Fisk.SkipVerifyDemo)
	assert.Equal(t, 12, cfg.Fisk.TimeoutSeconds)
	assert.Equal(t, 4, cfg.Fisk.BatchConcurrency)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestDBConfig_DSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "fiskal", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/fiskal?sslmode=disable", c.DSN())
	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
