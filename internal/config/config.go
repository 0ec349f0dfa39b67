package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Timeline TimelineConfig `toml:"timeline"`
	Logging  LoggingConfig  `toml:"logging"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// TimelineConfig controls the board geometry: how many padding days
// surround the event range and how zoom behaves.
type TimelineConfig struct {
	BufferDays   int     `toml:"buffer_days"`
	BaseDayWidth float64 `toml:"base_day_width"`
	ZoomMin      float64 `toml:"zoom_min"`
	ZoomMax      float64 `toml:"zoom_max"`
	ZoomFactor   float64 `toml:"zoom_factor"`
}

type LoggingConfig struct {
	Level   string `toml:"level"`    // debug | info | warn | error
	DevFile string `toml:"dev_file"` // optional logfmt sink for development
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Timeline: TimelineConfig{
			BufferDays:   5,
			BaseDayWidth: 3,
			ZoomMin:      0.1,
			ZoomMax:      5.0,
			ZoomFactor:   1.2,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}

	if c.Timeline.BufferDays < 0 {
		return fmt.Errorf("timeline.buffer_days must be >= 0, got %d", c.Timeline.BufferDays)
	}
	if c.Timeline.BaseDayWidth <= 0 {
		return fmt.Errorf("timeline.base_day_width must be > 0, got %v", c.Timeline.BaseDayWidth)
	}
	if c.Timeline.ZoomMin <= 0 {
		return fmt.Errorf("timeline.zoom_min must be > 0, got %v", c.Timeline.ZoomMin)
	}
	if c.Timeline.ZoomMax < c.Timeline.ZoomMin {
		return fmt.Errorf("timeline.zoom_max must be >= zoom_min, got %v < %v", c.Timeline.ZoomMax, c.Timeline.ZoomMin)
	}
	if c.Timeline.ZoomFactor <= 1 {
		return fmt.Errorf("timeline.zoom_factor must be > 1, got %v", c.Timeline.ZoomFactor)
	}

	switch strings.TrimSpace(strings.ToLower(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
