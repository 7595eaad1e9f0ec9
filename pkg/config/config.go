// Package config provides configuration loading and management for rgbdinpaint.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"rgbdinpaint/pkg/linsolve"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the application configuration loaded from YAML
type Config struct {
	// Texture inpainting parameters
	Inpainting struct {
		// PatchRadius is the half-size R of the (2R+1)x(2R+1) patches
		PatchRadius int `yaml:"patchRadius"`

		// BorderRadius is the half-window used for the contour normal fit
		BorderRadius int `yaml:"borderRadius"`

		// MaxIterations caps the number of fill rounds, 0 for no cap
		MaxIterations int `yaml:"maxIterations"`
	} `yaml:"inpainting"`

	// Depth reconstruction parameters
	Depth struct {
		// Solver is one of auto, cholesky or cg
		Solver string `yaml:"solver"`

		// Tolerance is the relative residual at which CG stops
		Tolerance float64 `yaml:"tolerance"`

		// MaxIterations caps CG, 0 for 10 x unknowns
		MaxIterations int `yaml:"maxIterations"`

		// Guided drives the depth fill with the Laplacian of the inpainted gray image
		Guided bool `yaml:"guided"`

		// GuideScale multiplies the guide Laplacian
		GuideScale float64 `yaml:"guideScale"`
	} `yaml:"depth"`

	// Input parameters
	Input struct {
		// Scale resizes all inputs before processing
		Scale float64 `yaml:"scale"`

		// MaskThreshold is the gray level in [0, 1] at which a mask pixel counts as set
		MaskThreshold float64 `yaml:"maskThreshold"`

		// MaskMarksHole flips the mask convention: set pixels are the region to fill
		MaskMarksHole bool `yaml:"maskMarksHole"`
	} `yaml:"input"`

	// Output parameters
	Output struct {
		// Dir receives the filled color and depth images
		Dir string `yaml:"dir"`

		// SaveIntermediaryResults writes a snapshot of every fill round
		SaveIntermediaryResults bool `yaml:"saveIntermediaryResults"`

		// SnapshotsDir receives the snapshots, relative to Dir
		SnapshotsDir string `yaml:"snapshotsDir"`

		// SnapshotEvery writes only every n-th round
		SnapshotEvery int `yaml:"snapshotEvery"`

		// Verbose enables debug logging
		Verbose bool `yaml:"verbose"`

		// Human selects console log output instead of JSON
		Human bool `yaml:"human"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Inpainting.PatchRadius = 5
	cfg.Inpainting.BorderRadius = 5
	cfg.Inpainting.MaxIterations = 0

	cfg.Depth.Solver = "auto"
	cfg.Depth.Tolerance = 1e-10
	cfg.Depth.MaxIterations = 0
	cfg.Depth.Guided = false
	cfg.Depth.GuideScale = 1.0

	cfg.Input.Scale = 1.0
	cfg.Input.MaskThreshold = 0.5
	cfg.Input.MaskMarksHole = false

	cfg.Output.Dir = "out"
	cfg.Output.SaveIntermediaryResults = false
	cfg.Output.SnapshotsDir = "stages"
	cfg.Output.SnapshotEvery = 1
	cfg.Output.Verbose = false
	cfg.Output.Human = true

	return cfg
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case c.Inpainting.PatchRadius < 1:
		return fmt.Errorf("%w: inpainting.patchRadius must be at least 1, got %d", ErrInvalid, c.Inpainting.PatchRadius)
	case c.Inpainting.BorderRadius < 1:
		return fmt.Errorf("%w: inpainting.borderRadius must be at least 1, got %d", ErrInvalid, c.Inpainting.BorderRadius)
	case c.Inpainting.MaxIterations < 0:
		return fmt.Errorf("%w: inpainting.maxIterations must not be negative", ErrInvalid)
	case c.Depth.Tolerance <= 0:
		return fmt.Errorf("%w: depth.tolerance must be positive, got %g", ErrInvalid, c.Depth.Tolerance)
	case c.Depth.MaxIterations < 0:
		return fmt.Errorf("%w: depth.maxIterations must not be negative", ErrInvalid)
	case c.Input.Scale <= 0:
		return fmt.Errorf("%w: input.scale must be positive, got %g", ErrInvalid, c.Input.Scale)
	case c.Input.MaskThreshold < 0 || c.Input.MaskThreshold > 1:
		return fmt.Errorf("%w: input.maskThreshold must be in [0, 1], got %g", ErrInvalid, c.Input.MaskThreshold)
	case c.Output.SnapshotEvery < 1:
		return fmt.Errorf("%w: output.snapshotEvery must be at least 1", ErrInvalid)
	}
	if _, err := linsolve.ByName(c.Depth.Solver, c.Depth.Tolerance, c.Depth.MaxIterations); err != nil {
		return fmt.Errorf("%w: depth.solver: %w", ErrInvalid, err)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
