package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.HTTP.Host)
	assert.Equal(t, 3000, cfg.HTTP.Port)
	assert.Equal(t, 3306, cfg.DB.Port)
	assert.Equal(t, "trove", cfg.DB.Name)
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
	assert.Equal(t, 60, cfg.JWT.ExpMin)
	assert.Equal(t, 5, cfg.Lockout.Threshold)
	assert.Equal(t, "uploads", cfg.Uploads.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.SMTP.Enabled)
}

func TestLoad_FileOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
http:
  port: 8080
lockout:
  threshold: 3
log:
  level: debug
`))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 3, cfg.Lockout.Threshold)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_SecretFromEnv(t *testing.T) {
	t.Setenv("TROVE_JWT_SECRET", "from-env")
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
}

func TestLoad_ClampsBadValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
lockout:
  threshold: 0
jwt:
  exp_min: -5
`))
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Lockout.Threshold)
	assert.Equal(t, 60, cfg.JWT.ExpMin)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
