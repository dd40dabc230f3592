package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	return dir
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	d := Default()
	assert.Empty(t, cfg.Languages)
	assert.Equal(t, d.Gitignore, cfg.Gitignore)
	assert.Equal(t, d.MaxBytes, cfg.MaxBytes)
	assert.Equal(t, d.Jobs, cfg.Jobs)
	assert.Equal(t, d.Format, cfg.Format)
	assert.Equal(t, d.LogLevel, cfg.LogLevel)
	assert.Equal(t, d.CacheSize, cfg.CacheSize)
}

func TestLoadFile(t *testing.T) {
	dir := writeConfig(t, ".treeinv.yaml", `
languages: [go, sql]
exclude:
  - "**/testdata/**"
gitignore: false
max_bytes: 1024
jobs: 3
format: yaml
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sql"}, cfg.Languages)
	assert.Equal(t, []string{"**/testdata/**"}, cfg.Exclude)
	assert.Empty(t, cfg.Include)
	assert.False(t, cfg.Gitignore)
	assert.Equal(t, int64(1024), cfg.MaxBytes)
	assert.Equal(t, 3, cfg.Jobs)
	assert.Equal(t, "yaml", cfg.Format)
	assert.Equal(t, "warn", cfg.LogLevel, "unset keys keep their defaults")
}

func TestLoadYmlExtension(t *testing.T) {
	dir := writeConfig(t, ".treeinv.yml", "jobs: 2\n")
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Jobs)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := writeConfig(t, ".treeinv.yaml", "jobs: 3\nlog_level: info\n")
	t.Setenv("TREEINV_JOBS", "8")
	t.Setenv("TREEINV_LOG_LEVEL", "debug")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Jobs)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadErrors(t *testing.T) {
	dir := writeConfig(t, ".treeinv.yaml", "jobs: [\n")
	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")

	dir = writeConfig(t, ".treeinv.yaml", "jobs: -1\nformat: csv\nlog_level: loud\n")
	_, err = Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jobs must not be negative")
	assert.Contains(t, err.Error(), `unknown output format "csv"`)
	assert.Contains(t, err.Error(), `unknown log_level "loud"`)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]slog.Level{
		"":      slog.LevelWarn,
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
