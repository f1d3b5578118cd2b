// Package config loads the editor's TOML configuration.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"pattern-tiler/internal/export"
)

// Config holds the editor and export settings.
type Config struct {
	TileSize      float64      `toml:"tile_size"`
	PreviewRepeat int          `toml:"preview_repeat"`
	Export        ExportConfig `toml:"export"`
}

// ExportConfig holds the defaults for rasterized output.
type ExportConfig struct {
	Resolution int     `toml:"resolution"`
	Format     string  `toml:"format"`
	Quality    float64 `toml:"quality"`
	Smoothing  string  `toml:"smoothing"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		TileSize:      512,
		PreviewRepeat: 3,
		Export: ExportConfig{
			Resolution: 1024,
			Format:     "png",
			Quality:    0.9,
			Smoothing:  "low",
		},
	}
}

// Load reads the config file at path, filling unset fields with
// defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the engine or exporter would refuse later.
func Validate(cfg Config) error {
	if cfg.TileSize <= 0 {
		return fmt.Errorf("tile_size must be positive, got %v", cfg.TileSize)
	}
	if cfg.PreviewRepeat < 1 {
		return fmt.Errorf("preview_repeat must be at least 1, got %d", cfg.PreviewRepeat)
	}
	if cfg.Export.Resolution < export.MinResolution || cfg.Export.Resolution > export.MaxResolution {
		return fmt.Errorf("export.resolution must be within [%d, %d], got %d",
			export.MinResolution, export.MaxResolution, cfg.Export.Resolution)
	}
	if cfg.Export.Quality <= 0 || cfg.Export.Quality > 1 {
		return fmt.Errorf("export.quality must be within (0, 1], got %v", cfg.Export.Quality)
	}
	if _, err := export.ParseFormat(cfg.Export.Format); err != nil {
		return fmt.Errorf("export.format: %w", err)
	}
	if _, err := export.ParseSmoothing(cfg.Export.Smoothing); err != nil {
		return fmt.Errorf("export.smoothing: %w", err)
	}
	return nil
}
