package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "editor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
editor:
  history_limit: 50
  name: "Остров"
storage:
  path: /tmp/island
  compression: false
logging:
  level: debug
  format: json
mapgen:
  seed: 9
  palette:
    tree: 77
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Editor.HistoryLimit)
	assert.Equal(t, "Остров", cfg.Editor.Name)
	assert.Equal(t, uint16(2048), cfg.Editor.Width, "незаданное поле берётся из Default")
	assert.Equal(t, "/tmp/island", cfg.Storage.Path)
	assert.False(t, cfg.Storage.Compression)
	assert.Equal(t, int64(100000), cfg.Storage.CacheEntries)
	assert.Equal(t, "json", cfg.Logging.Options().Format)
	assert.Equal(t, "debug", cfg.Logging.Options().Level)
	assert.Equal(t, ":2112", cfg.Metrics.GetMetricsAddr())
	assert.Equal(t, int64(9), cfg.Mapgen.Seed)
	assert.Equal(t, uint32(77), cfg.Mapgen.Palette.Tree)
	assert.Equal(t, Default().Mapgen.Palette.Grass, cfg.Mapgen.Palette.Grass)
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, "metrics:\n  addr: \":9100\"\n")
	t.Setenv("EDITOR_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.Metrics.Addr)
}

func TestLoadWithoutPathReturnsDefaults(t *testing.T) {
	t.Setenv("EDITOR_CONFIG", "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "нет.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "editor: [1, 2"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "logging:\n  format: xml\n"))
	assert.ErrorContains(t, err, "xml")

	_, err = Load(writeConfig(t, "editor:\n  history_limit: -1\n"))
	assert.Error(t, err)
}

func TestEnvFallbacks(t *testing.T) {
	t.Setenv("EDITOR_METRICS_ADDR", ":7000")
	t.Setenv("EDITOR_STORAGE_PATH", "/var/lib/editor")
	t.Setenv("EDITOR_HISTORY_LIMIT", "42")

	var cfg Config
	assert.Equal(t, ":7000", cfg.Metrics.GetMetricsAddr())
	assert.Equal(t, "/var/lib/editor", cfg.Storage.GetStoragePath())
	assert.Equal(t, 42, cfg.Editor.GetHistoryLimit())

	cfg.Editor.HistoryLimit = 10
	assert.Equal(t, 10, cfg.Editor.GetHistoryLimit(), "значение из конфига важнее окружения")

	t.Setenv("EDITOR_HISTORY_LIMIT", "мусор")
	cfg.Editor.HistoryLimit = 0
	assert.Equal(t, 500, cfg.Editor.GetHistoryLimit())
}
