// Package config loads config.yml from the data directory, creating it
// with defaults when missing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// configFileName is the file inside the data directory.
const configFileName = "config.yml"

// Limits holds the row budgets and pixel model for the viewer core.
type Limits struct {
	// DisplayCeiling is the maximum rows fetched for a table view.
	DisplayCeiling int `yaml:"display_ceiling"`
	// SampleSize is how many rows feed column width estimation.
	SampleSize int `yaml:"sample_size"`
	// SampleBlocks is the block count for spread sampling of large tables.
	SampleBlocks int `yaml:"sample_blocks"`
	// ClickScanCeiling is the per-table row budget for click-path matching.
	ClickScanCeiling int `yaml:"click_scan_ceiling"`
	// HoverScanCeiling is the per-table row budget for hover-path matching.
	HoverScanCeiling int `yaml:"hover_scan_ceiling"`
	// HoverPerSecond throttles hover rescans for new values.
	HoverPerSecond float64 `yaml:"hover_per_second"`
	// FastStoreQuotaBytes bounds the fast persistence tier (encoded size).
	FastStoreQuotaBytes int64 `yaml:"fast_store_quota_bytes"`
	// MaxUploadBytes bounds the accepted upload size. Zero disables.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Pixel model for column width estimation.
	PixelsPerChar float64 `yaml:"pixels_per_char"`
	PaddingPx     int     `yaml:"padding_px"`
	MinColumnPx   int     `yaml:"min_column_px"`
	MaxColumnPx   int     `yaml:"max_column_px"`
}

// Config is the server configuration persisted as config.yml.
type Config struct {
	Limits Limits `yaml:"limits"`
	// UploadPerMinute rate-limits file uploads per client IP.
	UploadPerMinute int `yaml:"upload_per_minute"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Limits: Limits{
			DisplayCeiling:      5000,
			SampleSize:          400,
			SampleBlocks:        10,
			ClickScanCeiling:    10000,
			HoverScanCeiling:    200,
			HoverPerSecond:      4,
			FastStoreQuotaBytes: 4 << 20,
			MaxUploadBytes:      256 << 20,
			PixelsPerChar:       8,
			PaddingPx:           24,
			MinColumnPx:         60,
			MaxColumnPx:         400,
		},
		UploadPerMinute: 20,
	}
}

// Validate checks the configuration for nonsensical values.
func (c *Config) Validate() error {
	l := &c.Limits
	switch {
	case l.DisplayCeiling <= 0:
		return errors.New("display_ceiling must be positive")
	case l.SampleSize <= 0:
		return errors.New("sample_size must be positive")
	case l.SampleBlocks <= 0:
		return errors.New("sample_blocks must be positive")
	case l.ClickScanCeiling <= 0 || l.HoverScanCeiling <= 0:
		return errors.New("scan ceilings must be positive")
	case l.HoverScanCeiling > l.ClickScanCeiling:
		return errors.New("hover_scan_ceiling must not exceed click_scan_ceiling")
	case l.HoverPerSecond <= 0:
		return errors.New("hover_per_second must be positive")
	case l.PixelsPerChar <= 0:
		return errors.New("pixels_per_char must be positive")
	case l.MinColumnPx <= 0 || l.MaxColumnPx < l.MinColumnPx:
		return errors.New("column pixel bounds are inverted")
	case c.UploadPerMinute <= 0:
		return errors.New("upload_per_minute must be positive")
	}
	return nil
}

// Load reads config.yml from dataDir, writing the defaults first when the
// file does not exist.
func Load(dataDir string) (*Config, error) {
	path := filepath.Join(dataDir, configFileName)
	raw, err := os.ReadFile(path) //nolint:gosec // G304: path is constructed from the data-dir flag, not user input
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read %s: %w", configFileName, err)
		}
		cfg := Default()
		if err := cfg.Save(dataDir); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configFileName, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", configFileName, err)
	}
	return &cfg, nil
}

// Save writes the configuration to dataDir.
func (c *Config) Save(dataDir string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, configFileName), data, 0o644); err != nil { //nolint:gosec // G306: config holds no secrets
		return fmt.Errorf("failed to write %s: %w", configFileName, err)
	}
	return nil
}
