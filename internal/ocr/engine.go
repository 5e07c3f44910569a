package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
)

// DefaultLanguage is the Tesseract code for Persian.
const DefaultLanguage = "fas"

// Engine recognizes text in a decoded raster image.
type Engine interface {
	// Recognize returns the UTF-8 text found in img. An empty string is a
	// valid result for an image without text.
	Recognize(ctx context.Context, img image.Image, language string) (string, error)

	// Name identifies the backend, e.g. "gosseract" or "tesseract-cli".
	Name() string
}

// Options selects and configures an engine.
type Options struct {
	// EnginePath is the tesseract executable to run. Empty selects the linked
	// libtesseract through gosseract.
	EnginePath string

	// TessdataPrefix overrides the directory holding *.traineddata files.
	TessdataPrefix string

	// PageSegMode is Tesseract's --psm value. Zero keeps the engine default.
	PageSegMode int
}

// Open returns the engine described by opts.
//
// A non-empty EnginePath that does not resolve to an executable yields an
// ENGINE_UNAVAILABLE error.
func Open(opts Options) (Engine, error) {
	if opts.EnginePath != "" {
		return NewCLIEngine(opts)
	}
	return NewTesseractEngine(opts), nil
}

// Info describes the OCR subsystem for diagnostics.
type Info struct {
	Available      bool   `json:"available"`
	Version        string `json:"version,omitempty"`
	Error          string `json:"error,omitempty"`
	Backend        string `json:"backend"`
	EnginePath     string `json:"engine_path,omitempty"`
	TessdataPrefix string `json:"tessdata_prefix,omitempty"`
}

// GetInfo reports whether the engine described by opts can be used.
func GetInfo(ctx context.Context, opts Options) Info {
	info := Info{
		EnginePath:     opts.EnginePath,
		TessdataPrefix: opts.TessdataPrefix,
	}

	if opts.EnginePath == "" {
		info.Backend = "gosseract"
		info.Version = LibraryVersion()
		info.Available = info.Version != ""
		if !info.Available {
			info.Error = "libtesseract did not report a version"
		}
		return info
	}

	info.Backend = "tesseract-cli"
	engine, err := NewCLIEngine(opts)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	version, err := engine.Version(ctx)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.Available = true
	info.Version = version
	return info
}

// encodePNG serializes img for engines that take encoded bytes.
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
