package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tiler.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
tile_size = 256
preview_repeat = 5

[export]
resolution = 2048
format = "jpeg"
quality = 0.8
smoothing = "high"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TileSize != 256 || cfg.PreviewRepeat != 5 {
		t.Errorf("editor settings = %+v", cfg)
	}
	if cfg.Export.Resolution != 2048 || cfg.Export.Format != "jpeg" ||
		cfg.Export.Quality != 0.8 || cfg.Export.Smoothing != "high" {
		t.Errorf("export settings = %+v", cfg.Export)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "tile_size = 128\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TileSize != 128 {
		t.Errorf("tile_size = %v", cfg.TileSize)
	}
	if cfg.Export != Default().Export {
		t.Errorf("export = %+v, want defaults", cfg.Export)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero tile size", "tile_size = 0\n"},
		{"negative tile size", "tile_size = -4\n"},
		{"resolution too small", "[export]\nresolution = 64\n"},
		{"resolution too large", "[export]\nresolution = 16384\n"},
		{"quality out of range", "[export]\nquality = 1.5\n"},
		{"unknown format", "[export]\nformat = \"webp\"\n"},
		{"unknown smoothing", "[export]\nsmoothing = \"ultra\"\n"},
		{"malformed toml", "tile_size = = 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
