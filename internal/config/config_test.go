package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Store.MaxConns)
	assert.Equal(t, 1000, cfg.Import.BatchSize)
	assert.Equal(t, 50000, cfg.Import.ActivityKeyLimit)
	assert.True(t, cfg.Import.ActiveOnly)
	assert.Equal(t, 4, cfg.Enrich.Workers)
	assert.Equal(t, 20, cfg.Enrich.RequestsPerMinute)
	assert.Equal(t, 2, cfg.Enrich.MinDelaySecs)
	assert.Equal(t, 4, cfg.Enrich.MaxDelaySecs)
	assert.Equal(t, 3, cfg.Enrich.MaxRetries)
	assert.Equal(t, 180, cfg.Enrich.StalenessDays)
	assert.Equal(t, 200, cfg.Enrich.Limit)
	assert.Equal(t, 60, cfg.Portal.TimeoutSecs)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chTempDir(t)

	yaml := `
store:
  database_url: postgres://localhost/kbo
import:
  batch_size: 500
  active_only: false
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/kbo", cfg.Store.DatabaseURL)
	assert.Equal(t, 500, cfg.Import.BatchSize)
	assert.False(t, cfg.Import.ActiveOnly)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults still apply for unset values
	assert.Equal(t, 4, cfg.Enrich.Workers)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chTempDir(t)

	yaml := `
store:
  database_url: postgres://localhost/from_file
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("KBO_STORE_DATABASE_URL", "postgres://localhost/from_env")
	t.Setenv("KBO_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/from_env", cfg.Store.DatabaseURL)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chTempDir(t)

	t.Setenv("KBO_ENRICH_WORKERS", "8")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Enrich.Workers)
}

func TestStaleness(t *testing.T) {
	cfg := EnrichConfig{StalenessDays: 30}
	assert.Equal(t, 30*24.0, cfg.Staleness().Hours())
}

func validConfig() *Config {
	return &Config{
		Store:  StoreConfig{DatabaseURL: "postgres://localhost/kbo", MaxConns: 10},
		Import: ImportConfig{BatchSize: 1000, ActivityKeyLimit: 50000},
		Enrich: EnrichConfig{Workers: 4, RequestsPerMinute: 20, MinDelaySecs: 2, MaxDelaySecs: 4, MaxRetries: 3},
		Fetch:  FetchConfig{ExtractURL: "https://kbopub.example.be/extract.zip"},
	}
}

func TestValidateImport(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate("import"))

	cfg.Store.DatabaseURL = ""
	err := cfg.Validate("import")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
}

func TestValidateImport_BatchBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Import.BatchSize = 0
	err := cfg.Validate("import")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch_size must be between 1 and 10000")

	cfg.Import.BatchSize = 20000
	assert.Error(t, cfg.Validate("import"))
}

func TestValidateEnrich(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate("enrich"))

	cfg.Enrich.Workers = 0
	err := cfg.Validate("enrich")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers must be between 1 and 32")

	cfg = validConfig()
	cfg.Enrich.MinDelaySecs = 5
	cfg.Enrich.MaxDelaySecs = 2
	err = cfg.Validate("enrich")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_delay_secs")
}

func TestValidateFetchExtract(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate("fetch-extract"))

	cfg.Fetch.ExtractURL = ""
	err := cfg.Validate("fetch-extract")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch.extract_url")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validConfig().Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
