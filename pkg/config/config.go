// Package config provides configuration loading and management for mprsync.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Engine parameters
	Engine struct {
		// ReorthonormalizeEvery is the number of rotation increments between
		// Gram-Schmidt passes over the rotated plane orientations
		ReorthonormalizeEvery int `yaml:"reorthonormalizeEvery"`

		// OrthogonalityTolerance bounds ||MᵀM - I|| when verifying state
		OrthogonalityTolerance float64 `yaml:"orthogonalityTolerance"`

		// ClampToBounds keeps the crosshair inside the volume bounds
		ClampToBounds bool `yaml:"clampToBounds"`
	} `yaml:"engine"`

	// Volume source parameters
	Volume struct {
		// InputDir holds numbered 2D slice images; empty selects the phantom
		InputDir string `yaml:"inputDir"`

		// Spacing is the voxel size in mm along x, y and z
		Spacing []float64 `yaml:"spacing"`

		// PhantomSize is the edge length in voxels of the synthetic volume
		PhantomSize int `yaml:"phantomSize"`
	} `yaml:"volume"`

	// Reslice output parameters
	Reslice struct {
		// Width and Height of each reformatted image in pixels
		Width  int `yaml:"width"`
		Height int `yaml:"height"`

		// Interpolation is nearest or linear
		Interpolation string `yaml:"interpolation"`

		// PixelSize is the in-plane pixel size in mm; 0 uses the finest
		// voxel spacing
		PixelSize float64 `yaml:"pixelSize"`

		// Window is range (full scalar range) or percentile
		Window string `yaml:"window"`

		// Percentile is the fraction clipped at each end in percentile mode
		Percentile float64 `yaml:"percentile"`

		// Quality is the JPEG quality (1-100)
		Quality int `yaml:"quality"`

		// OutputDir receives the reformatted images
		OutputDir string `yaml:"outputDir"`
	} `yaml:"reslice"`

	// Logging parameters
	Logging struct {
		// Level is one of debug, info, warn, error
		Level string `yaml:"level"`

		// LogFile enables a rotated log file when set
		LogFile string `yaml:"logFile"`
	} `yaml:"logging"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Engine.ReorthonormalizeEvery = 16
	cfg.Engine.OrthogonalityTolerance = 1e-6
	cfg.Engine.ClampToBounds = false

	cfg.Volume.InputDir = ""
	cfg.Volume.Spacing = []float64{1.0, 1.0, 1.0}
	cfg.Volume.PhantomSize = 64

	cfg.Reslice.Width = 256
	cfg.Reslice.Height = 256
	cfg.Reslice.Interpolation = "linear"
	cfg.Reslice.PixelSize = 0
	cfg.Reslice.Window = "range"
	cfg.Reslice.Percentile = 0.01
	cfg.Reslice.Quality = 90
	cfg.Reslice.OutputDir = "output"

	cfg.Logging.Level = "info"
	cfg.Logging.LogFile = ""

	return cfg
}

// Validate checks the configuration for values the engine cannot use
func (c *Config) Validate() error {
	if c.Engine.ReorthonormalizeEvery < 0 {
		return fmt.Errorf("engine.reorthonormalizeEvery must be non-negative, got %d", c.Engine.ReorthonormalizeEvery)
	}
	if c.Engine.OrthogonalityTolerance <= 0 {
		return fmt.Errorf("engine.orthogonalityTolerance must be positive, got %g", c.Engine.OrthogonalityTolerance)
	}
	if len(c.Volume.Spacing) != 3 {
		return fmt.Errorf("volume.spacing must have 3 components, got %d", len(c.Volume.Spacing))
	}
	for i, s := range c.Volume.Spacing {
		if s <= 0 {
			return fmt.Errorf("volume.spacing[%d] must be positive, got %g", i, s)
		}
	}
	if c.Volume.InputDir == "" && c.Volume.PhantomSize < 2 {
		return fmt.Errorf("volume.phantomSize must be at least 2, got %d", c.Volume.PhantomSize)
	}
	if c.Reslice.Width <= 0 || c.Reslice.Height <= 0 {
		return fmt.Errorf("reslice size must be positive, got %dx%d", c.Reslice.Width, c.Reslice.Height)
	}
	switch strings.ToLower(c.Reslice.Interpolation) {
	case "nearest", "linear":
	default:
		return fmt.Errorf("reslice.interpolation must be nearest or linear, got %q", c.Reslice.Interpolation)
	}
	if c.Reslice.PixelSize < 0 {
		return fmt.Errorf("reslice.pixelSize must be non-negative, got %g", c.Reslice.PixelSize)
	}
	switch strings.ToLower(c.Reslice.Window) {
	case "range", "percentile":
	default:
		return fmt.Errorf("reslice.window must be range or percentile, got %q", c.Reslice.Window)
	}
	if c.Reslice.Percentile < 0 || c.Reslice.Percentile >= 0.5 {
		return fmt.Errorf("reslice.percentile must be in [0, 0.5), got %g", c.Reslice.Percentile)
	}
	if c.Reslice.Quality < 1 || c.Reslice.Quality > 100 {
		return fmt.Errorf("reslice.quality must be in 1..100, got %d", c.Reslice.Quality)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
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

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
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
