package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mdouchement/udeshare/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://api.udeshare.app", cfg.Backend.Endpoint)
	assert.Equal(t, "storm", cfg.Storage.Backend)
	assert.Equal(t, ".udemy.com", cfg.CookieDomain)
	assert.Equal(t, 30*time.Second, cfg.CoursesTTL)
	assert.Equal(t, "http://127.0.0.1:8765", cfg.BridgeURL())
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	filename := filepath.Join(dir, "custom.yml")
	err := os.WriteFile(filename, []byte(`
backend:
  endpoint: https://backend.nowhere.lan/
storage:
  backend: keyring
courses:
  ttl: 1m
`), 0o600)
	require.NoError(t, err)

	t.Setenv("UDESHARE_BRIDGE__ADDRESS", "http://localhost:9000/")

	cfg, err := config.Load(filename)
	require.NoError(t, err)

	assert.Equal(t, "https://backend.nowhere.lan", cfg.Backend.Endpoint)
	assert.Equal(t, "keyring", cfg.Storage.Backend)
	assert.Equal(t, time.Minute, cfg.CoursesTTL)
	assert.Equal(t, "http://localhost:9000", cfg.BridgeURL())
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("UDESHARE_COURSES__TTL", "0s")

	_, err := config.Load("")
	assert.EqualError(t, err, "courses.ttl must be a positive duration")
}
