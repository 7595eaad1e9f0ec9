package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected default config to be valid, got %v", err)
	}
	if cfg.Inpainting.PatchRadius != 5 {
		t.Errorf("Expected patch radius 5, got %d", cfg.Inpainting.PatchRadius)
	}
	if cfg.Depth.Solver != "auto" {
		t.Errorf("Expected solver auto, got %q", cfg.Depth.Solver)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Expected no error for a missing file, got %v", err)
	}
	if cfg.Input.Scale != 1.0 {
		t.Errorf("Expected default scale 1.0, got %f", cfg.Input.Scale)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Inpainting.PatchRadius = 3
	cfg.Depth.Solver = "cg"
	cfg.Depth.Guided = true
	cfg.Output.Dir = "results"

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Inpainting.PatchRadius != 3 {
		t.Errorf("Expected patch radius 3, got %d", loaded.Inpainting.PatchRadius)
	}
	if loaded.Depth.Solver != "cg" {
		t.Errorf("Expected solver cg, got %q", loaded.Depth.Solver)
	}
	if !loaded.Depth.Guided {
		t.Error("Expected guided depth to survive the round trip")
	}
	if loaded.Output.Dir != "results" {
		t.Errorf("Expected output dir results, got %q", loaded.Output.Dir)
	}
}

func TestLoadConfigPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("inpainting:\n  patchRadius: 4\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Inpainting.PatchRadius != 4 {
		t.Errorf("Expected patch radius 4, got %d", cfg.Inpainting.PatchRadius)
	}
	if cfg.Inpainting.BorderRadius != 5 {
		t.Errorf("Expected unset border radius to keep default 5, got %d", cfg.Inpainting.BorderRadius)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("inpainting: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected an error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero patch radius", func(c *Config) { c.Inpainting.PatchRadius = 0 }},
		{"negative iterations", func(c *Config) { c.Inpainting.MaxIterations = -1 }},
		{"unknown solver", func(c *Config) { c.Depth.Solver = "lu" }},
		{"zero tolerance", func(c *Config) { c.Depth.Tolerance = 0 }},
		{"zero scale", func(c *Config) { c.Input.Scale = 0 }},
		{"threshold above one", func(c *Config) { c.Input.MaskThreshold = 1.5 }},
		{"zero snapshot interval", func(c *Config) { c.Output.SnapshotEvery = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Expected ErrInvalid, got %v", err)
			}
		})
	}
}
