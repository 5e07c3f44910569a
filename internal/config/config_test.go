package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{EnvLogLevel, EnvLanguage, EnvTesseractPath, EnvDPI, EnvPreviewDPI, EnvPreprocess, EnvShutdownTimeout} {
		t.Setenv(key, "")
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Language != "fas" {
		t.Errorf("Language = %q, want fas", cfg.Language)
	}
	if cfg.DPI != 300 {
		t.Errorf("DPI = %d, want 300", cfg.DPI)
	}
	if cfg.PreviewDPI != 100 {
		t.Errorf("PreviewDPI = %d, want 100", cfg.PreviewDPI)
	}
	if !cfg.Preprocess {
		t.Error("Preprocess should default to true")
	}
	if cfg.TesseractPath != "" {
		t.Errorf("TesseractPath = %q, want empty", cfg.TesseractPath)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(EnvLanguage, "fas+eng")
	t.Setenv(EnvDPI, "400")
	t.Setenv(EnvPreprocess, "false")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvShutdownTimeout, "3s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Language != "fas+eng" || cfg.DPI != 400 || cfg.Preprocess || cfg.LogLevel != "debug" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 3s", cfg.ShutdownTimeout)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	t.Setenv(EnvPreviewDPI, "")
	os.Unsetenv(EnvPreviewDPI)

	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte(EnvPreviewDPI+"=150\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PreviewDPI != 150 {
		t.Errorf("PreviewDPI = %d, want 150 from env file", cfg.PreviewDPI)
	}
}

func TestLoad_MissingEnvFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing env file should be ignored, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			LogLevel:        "info",
			Language:        "fas",
			PdftoppmPath:    "pdftoppm",
			DPI:             300,
			PreviewDPI:      100,
			ShutdownTimeout: time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"empty language", func(c *Config) { c.Language = "" }, true},
		{"dpi too low", func(c *Config) { c.DPI = 10 }, true},
		{"dpi too high", func(c *Config) { c.DPI = 5000 }, true},
		{"preview dpi", func(c *Config) { c.PreviewDPI = 0 }, true},
		{"no pdftoppm", func(c *Config) { c.PdftoppmPath = "" }, true},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"zero timeout", func(c *Config) { c.ShutdownTimeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
