package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// Default preview box, matching the thumbnail area of the desktop window.
const (
	DefaultPreviewWidth  = 400
	DefaultPreviewHeight = 300
)

// PreviewResult is a scaled-down PNG of an input file.
type PreviewResult struct {
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	SourceWidth  int    `json:"source_width"`
	SourceHeight int    `json:"source_height"`
	ImageBase64  string `json:"image_base64"`
	MimeType     string `json:"mime_type"`
}

// Thumbnail scales img to fit inside maxWidth x maxHeight, preserving aspect
// ratio, and returns it as base64 PNG. Images already inside the box are not
// enlarged. Non-positive bounds fall back to the defaults.
func Thumbnail(img image.Image, maxWidth, maxHeight int) (*PreviewResult, error) {
	if maxWidth <= 0 {
		maxWidth = DefaultPreviewWidth
	}
	if maxHeight <= 0 {
		maxHeight = DefaultPreviewHeight
	}

	src := img.Bounds()
	if src.Empty() {
		return nil, fmt.Errorf("cannot preview an empty image")
	}

	thumb := imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	return &PreviewResult{
		Width:        thumb.Bounds().Dx(),
		Height:       thumb.Bounds().Dy(),
		SourceWidth:  src.Dx(),
		SourceHeight: src.Dy(),
		ImageBase64:  base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:     "image/png",
	}, nil
}
