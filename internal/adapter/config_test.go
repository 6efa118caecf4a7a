package adapter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644))
}

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	cfg, err := loadConfig(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "https://api-colombia.com/api/v1", cfg.Catalog.BaseURL)
	assert.Equal(t, 1280, cfg.Images.ThumbSize)
	assert.True(t, cfg.Images.CachePlaceholder)
	assert.Equal(t, 4, cfg.Images.Prefetch)
	assert.Equal(t, "colombia-explorer:v4", cfg.Store.Namespace)
	assert.Equal(t, 3, cfg.UI.ProximityRows)
	assert.Equal(t, "name-asc", cfg.UI.DefaultSort)
}

func TestLoadConfig_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
catalog:
  timeout: 3s
images:
  cache_placeholder: false
  prefetch: 2
store:
  path: ""
ui:
  default_sort: name-desc
viewer:
  command: feh
  args: ["--scale-down"]
`)
	cfg, err := loadConfig(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Catalog.Timeout)
	assert.False(t, cfg.Images.CachePlaceholder)
	assert.Equal(t, 2, cfg.Images.Prefetch)
	assert.Empty(t, cfg.Store.Path)
	assert.Equal(t, "name-desc", cfg.UI.DefaultSort)
	assert.Equal(t, "feh", cfg.Viewer.Command)
	assert.Equal(t, []string{"--scale-down"}, cfg.Viewer.Args)
	// untouched keys keep defaults
	assert.Equal(t, 1280, cfg.Images.ThumbSize)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("EXPLORADOR_IMAGES_PREFETCH", "8")
	t.Setenv("EXPLORADOR_LOGGING_LEVEL", "DEBUG")

	cfg, err := loadConfig(viper.New(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Images.Prefetch)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "ui:\n  default_sort: by-size\n")
	_, err := loadConfig(viper.New(), dir)
	assert.ErrorContains(t, err, "invalid config")

	writeConfig(t, dir, "catalog:\n  base_url: not a url\n")
	_, err = loadConfig(viper.New(), dir)
	assert.ErrorContains(t, err, "catalog")

	writeConfig(t, dir, "catalog: [\n")
	_, err = loadConfig(viper.New(), dir)
	assert.ErrorContains(t, err, "error reading config file")
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Images.Prefetch = 6
	cfg.UI.ProximityRows = 5
	cfg.Viewer.Command = "imv"
	cfg.Viewer.Args = []string{"-f"}
	require.NoError(t, saveConfig(cfg, dir))

	loaded, err := loadConfig(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestClearCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.db")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0600))

	cfg := DefaultConfig()
	cfg.Store.Path = path
	require.NoError(t, ClearCache(cfg))
	assert.NoFileExists(t, path)

	// already gone is fine
	assert.NoError(t, ClearCache(cfg))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLogLevel("debug").String())
	assert.Equal(t, "WARN", parseLogLevel("warning").String())
	assert.Equal(t, "INFO", parseLogLevel("").String())
}

func TestSetupLogger_WritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "explorador.log")
	logger, err := SetupLogger(&LoggingConfig{File: path, Level: "DEBUG"})
	require.NoError(t, err)

	logger.Debug("hello", "id", 5)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"app":"explorador"`)
}
