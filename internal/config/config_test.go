package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *cfg != Default() {
		t.Errorf("Load = %+v, want defaults", cfg)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yml")); err != nil {
		t.Errorf("config.yml was not written: %v", err)
	}

	// A second load reads the file it just wrote.
	cfg2, err := Load(dir)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if *cfg2 != *cfg {
		t.Errorf("second Load = %+v, want %+v", cfg2, cfg)
	}
}

func TestLoadPartialOverride(t *testing.T) {
	dir := t.TempDir()
	content := "limits:\n  display_ceiling: 250\nupload_per_minute: 3\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Limits.DisplayCeiling != 250 {
		t.Errorf("DisplayCeiling = %d, want 250", cfg.Limits.DisplayCeiling)
	}
	if cfg.UploadPerMinute != 3 {
		t.Errorf("UploadPerMinute = %d, want 3", cfg.UploadPerMinute)
	}
	// Unset keys keep their defaults.
	if cfg.Limits.SampleSize != Default().Limits.SampleSize {
		t.Errorf("SampleSize = %d, want the default %d", cfg.Limits.SampleSize, Default().Limits.SampleSize)
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not yaml", "{{{{"},
		{"negative ceiling", "limits:\n  display_ceiling: -1\n"},
		{"hover ceiling above click ceiling", "limits:\n  click_scan_ceiling: 100\n  hover_scan_ceiling: 200\n"},
		{"zero uploads", "upload_per_minute: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte(tt.content), 0o644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			if _, err := Load(dir); err == nil {
				t.Error("Load accepted a bad config")
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults failed validation: %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Limits.DisplayCeiling = 123
	if err := cfg.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != cfg {
		t.Errorf("round trip = %+v, want %+v", got, cfg)
	}
}
