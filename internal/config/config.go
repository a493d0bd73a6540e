package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/annel0/map-editor/internal/logging"
	"github.com/annel0/map-editor/internal/mapgen"
)

// Config корневая структура конфигурации редактора.
// Незаданные поля получают значения из Default.
type Config struct {
	Editor  EditorConfig  `yaml:"editor"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Items   ItemsConfig   `yaml:"items"`
	Mapgen  MapgenConfig  `yaml:"mapgen"`
}

type EditorConfig struct {
	HistoryLimit int    `yaml:"history_limit"`
	Name         string `yaml:"name"`
	Width        uint16 `yaml:"width"`
	Height       uint16 `yaml:"height"`
}

type StorageConfig struct {
	Path         string `yaml:"path"`
	Compression  bool   `yaml:"compression"`
	CacheEntries int64  `yaml:"cache_entries"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type ItemsConfig struct {
	Catalog string `yaml:"catalog"`
}

// MapgenConfig сид и палитра генератора ландшафта
type MapgenConfig struct {
	Seed    int64          `yaml:"seed"`
	Palette mapgen.Palette `yaml:"palette"`
}

// Default конфигурация по умолчанию
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			HistoryLimit: 500,
			Name:         "untitled",
			Width:        2048,
			Height:       2048,
		},
		Storage: StorageConfig{
			Path:         "data/map",
			Compression:  true,
			CacheEntries: 100000,
		},
		Logging: LoggingConfig{
			Level:      "INFO",
			Format:     "console",
			MaxSizeMB:  50,
			MaxBackups: 3,
		},
		Metrics: MetricsConfig{Addr: ":2112"},
		Items:   ItemsConfig{Catalog: "assets/items.yaml"},
		Mapgen: MapgenConfig{
			Seed: 1,
			Palette: mapgen.Palette{
				DeepWater: 4608,
				Water:     4609,
				Sand:      231,
				Grass:     4526,
				Dirt:      103,
				Stone:     919,
				Tree:      2700,
				Cactus:    2727,
				Rock:      1285,
			},
		},
	}
}

// GetMetricsAddr адрес /metrics: config -> EDITOR_METRICS_ADDR -> ":2112"
func (m *MetricsConfig) GetMetricsAddr() string {
	return getStringWithEnvFallback(m.Addr, "EDITOR_METRICS_ADDR", ":2112")
}

// GetStoragePath путь к базе: config -> EDITOR_STORAGE_PATH -> "data/map"
func (s *StorageConfig) GetStoragePath() string {
	return getStringWithEnvFallback(s.Path, "EDITOR_STORAGE_PATH", "data/map")
}

// GetHistoryLimit лимит истории: config -> EDITOR_HISTORY_LIMIT -> 500
func (e *EditorConfig) GetHistoryLimit() int {
	return getIntWithEnvFallback(e.HistoryLimit, "EDITOR_HISTORY_LIMIT", 500)
}

// Options переводит секцию logging в опции логгера
func (l *LoggingConfig) Options() logging.Options {
	return logging.Options{
		Level:      l.Level,
		Format:     l.Format,
		File:       l.File,
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
	}
}

func getStringWithEnvFallback(configValue, envVar, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		return envVal
	}
	return defaultValue
}

// getIntWithEnvFallback возвращает значение с приоритетом: config -> env -> default
func getIntWithEnvFallback(configValue int, envVar string, defaultValue int) int {
	if configValue > 0 {
		return configValue
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		if v, err := strconv.Atoi(envVal); err == nil && v > 0 {
			return v
		}
	}
	return defaultValue
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", берётся ENV EDITOR_CONFIG; если не задан и он, возвращается Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("EDITOR_CONFIG")
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения, которые нельзя исправить молча
func (c *Config) Validate() error {
	if c.Editor.HistoryLimit < 0 {
		return fmt.Errorf("editor.history_limit не может быть отрицательным: %d", c.Editor.HistoryLimit)
	}
	if c.Storage.CacheEntries < 0 {
		return fmt.Errorf("storage.cache_entries не может быть отрицательным: %d", c.Storage.CacheEntries)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: неизвестный формат %q", c.Logging.Format)
	}
	return nil
}
