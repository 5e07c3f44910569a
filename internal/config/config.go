// Package config loads runtime settings from the environment.
//
// Values may be seeded from a .env file; variables already present in the
// process environment always win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvLogLevel        = "PERSIAN_OCR_LOG_LEVEL"
	EnvLanguage        = "PERSIAN_OCR_LANGUAGE"
	EnvTesseractPath   = "PERSIAN_OCR_TESSERACT_PATH"
	EnvTessdataPrefix  = "PERSIAN_OCR_TESSDATA_PREFIX"
	EnvPdftoppmPath    = "PERSIAN_OCR_PDFTOPPM_PATH"
	EnvDPI             = "PERSIAN_OCR_DPI"
	EnvPreviewDPI      = "PERSIAN_OCR_PREVIEW_DPI"
	EnvPreprocess      = "PERSIAN_OCR_PREPROCESS"
	EnvTempDir         = "PERSIAN_OCR_TEMP_DIR"
	EnvShutdownTimeout = "PERSIAN_OCR_SHUTDOWN_TIMEOUT"
)

// Config holds the settings shared by the server and the command line.
type Config struct {
	LogLevel string

	// Language is the Tesseract language code; Persian by default.
	Language string

	// TesseractPath selects the external tesseract binary. Empty means the
	// linked libtesseract is used through gosseract.
	TesseractPath  string
	TessdataPrefix string

	PdftoppmPath string
	DPI          int
	PreviewDPI   int

	Preprocess bool
	TempDir    string

	// ShutdownTimeout bounds how long closing waits for a running task.
	ShutdownTimeout time.Duration
}

// Load reads the configuration. If envFile is non-empty and exists it is
// loaded first; a missing file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		LogLevel:        strings.ToLower(getEnvOrDefault(EnvLogLevel, "info")),
		Language:        getEnvOrDefault(EnvLanguage, "fas"),
		TesseractPath:   os.Getenv(EnvTesseractPath),
		TessdataPrefix:  os.Getenv(EnvTessdataPrefix),
		PdftoppmPath:    getEnvOrDefault(EnvPdftoppmPath, "pdftoppm"),
		DPI:             getEnvAsIntOrDefault(EnvDPI, 300),
		PreviewDPI:      getEnvAsIntOrDefault(EnvPreviewDPI, 100),
		Preprocess:      getEnvAsBoolOrDefault(EnvPreprocess, true),
		TempDir:         getEnvOrDefault(EnvTempDir, os.TempDir()),
		ShutdownTimeout: getEnvAsDurationOrDefault(EnvShutdownTimeout, 10*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Language == "" {
		return fmt.Errorf("%s must not be empty", EnvLanguage)
	}
	if c.DPI < 72 || c.DPI > 1200 {
		return fmt.Errorf("%s must be between 72 and 1200, got %d", EnvDPI, c.DPI)
	}
	if c.PreviewDPI < 36 || c.PreviewDPI > 600 {
		return fmt.Errorf("%s must be between 36 and 600, got %d", EnvPreviewDPI, c.PreviewDPI)
	}
	if c.PdftoppmPath == "" {
		return fmt.Errorf("%s must not be empty", EnvPdftoppmPath)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%s must be positive, got %v", EnvShutdownTimeout, c.ShutdownTimeout)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%s must be one of debug, info, warn, error; got %q", EnvLogLevel, c.LogLevel)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
