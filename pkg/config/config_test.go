package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port     int     `env:"TEST_CFG_PORT" envDefault:"8010"`
	BaseURL  string  `env:"TEST_CFG_BASE_URL" envDefault:"https://dummyjson.com"`
	LogLevel string  `env:"TEST_CFG_LOG_LEVEL" envDefault:"info"`
	Rate     float64 `env:"TEST_CFG_RATE" envDefault:"0.1"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 8010, cfg.Port)
	assert.Equal(t, "https://dummyjson.com", cfg.BaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 0.1, cfg.Rate)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "9090")
	t.Setenv("TEST_CFG_BASE_URL", "http://catalog.local")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "http://catalog.local", cfg.BaseURL)
}

type requiredConfig struct {
	Secret string `env:"TEST_CFG_SECRET,required"`
}

func TestLoad_RequiredFieldMissing(t *testing.T) {
	var cfg requiredConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_InvalidType(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "not-a-number")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoadWithDotEnv_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TEST_CFG_SECRET=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("TEST_CFG_SECRET") })

	var cfg requiredConfig
	require.NoError(t, LoadWithDotEnv(&cfg, path))
	assert.Equal(t, "from-file", cfg.Secret)
}

func TestLoadWithDotEnv_EnvironmentWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TEST_CFG_PORT=1111\n"), 0o600))
	t.Setenv("TEST_CFG_PORT", "2222")

	var cfg testConfig
	require.NoError(t, LoadWithDotEnv(&cfg, path))
	assert.Equal(t, 2222, cfg.Port)
}

func TestLoadDotEnv_MissingFileIsSkipped(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}
