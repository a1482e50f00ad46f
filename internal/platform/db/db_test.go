package db

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
mode: release
log_level: debug
store: memory
database:
  host: db
  user: lending
  password: secret
  dbname: desk
auth:
  jwt_secret: s3cr3t
policy:
  fine_rate_per_second: "0.25"
  fine_cap: "10.00"
  default_loan_period: 2m
  device_loan_limit: 1
  book_loan_limit: 3
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, ":8443", cfg.Server.Addr)
	assert.Equal(t, 3306, cfg.DB.Port)
	assert.Equal(t, "0.25", cfg.Policy.FineRatePerSecond)
	assert.Equal(t, 2*time.Minute, cfg.Policy.DefaultLoanPeriod)
	assert.Equal(t, 3, cfg.Policy.BookLoanLimit)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv(envDBPassword, "from-env")
	t.Setenv(envJWTSecret, "jwt-from-env")
	path := writeConfig(t, "mode: dev\ndatabase:\n  password: from-file\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.DB.Password)
	assert.Equal(t, "jwt-from-env", cfg.Auth.JWTSecret)
}

func TestLoadConfigRejectsUnknownMode(t *testing.T) {
	path := writeConfig(t, "mode: staging\n")

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "mode must be dev or release")
}

func TestLoadConfigReleaseNeedsSecret(t *testing.T) {
	path := writeConfig(t, "mode: release\nstore: memory\n")

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "jwt_secret")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestDSN(t *testing.T) {
	dsn := DatabaseConfig{Host: "db", Port: 3307, Username: "u", Password: "p", DBName: "desk"}.DSN()

	assert.Contains(t, dsn, "u:p@tcp(db:3307)/desk")
	assert.Contains(t, dsn, "parseTime=true")
}
