package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"

	ocrerrors "github.com/ironsheep/persian-ocr-mcp/internal/errors"
)

// TesseractEngine recognizes text with the linked libtesseract.
//
// A fresh gosseract client is created per call, so one engine may be shared
// between goroutines.
type TesseractEngine struct {
	tessdataPrefix string
	pageSegMode    int
	newClient      func() *gosseract.Client
}

// NewTesseractEngine creates a gosseract-backed engine.
func NewTesseractEngine(opts Options) *TesseractEngine {
	return &TesseractEngine{
		tessdataPrefix: opts.TessdataPrefix,
		pageSegMode:    opts.PageSegMode,
		newClient:      gosseract.NewClient,
	}
}

func (e *TesseractEngine) Name() string { return "gosseract" }

// Recognize performs OCR on img in the given language.
//
// The image is handed to Tesseract as PNG bytes, so no temporary file is
// written. The call cannot be interrupted once Tesseract has started; ctx is
// only checked before it begins.
func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image, language string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := encodePNG(img)
	if err != nil {
		return "", err
	}

	client := e.newClient()
	defer client.Close()

	if e.tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(e.tessdataPrefix); err != nil {
			return "", ocrerrors.NewEngineUnavailableError("", fmt.Errorf("failed to set tessdata path: %w", err))
		}
	}

	if err := client.SetLanguage(splitLanguages(language)...); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}

	if e.pageSegMode > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(e.pageSegMode)); err != nil {
			return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
		}
	}

	if err := client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		// Initialization errors mean the language data or library is missing,
		// not that this particular image was unreadable.
		if strings.Contains(err.Error(), "initialize") {
			return "", ocrerrors.NewEngineUnavailableError("", err)
		}
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}

// LibraryVersion returns the version of the linked libtesseract.
func LibraryVersion() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}

// splitLanguages turns "fas+eng" into {"fas", "eng"}.
func splitLanguages(language string) []string {
	if language == "" {
		return []string{DefaultLanguage}
	}
	var langs []string
	for _, l := range strings.Split(language, "+") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	if len(langs) == 0 {
		return []string{DefaultLanguage}
	}
	return langs
}
