package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestThumbnail(t *testing.T) {
	tests := []struct {
		name         string
		srcW, srcH   int
		maxW, maxH   int
		wantW, wantH int
	}{
		{"landscape scaled", 800, 400, 400, 300, 400, 200},
		{"portrait scaled", 600, 1200, 400, 300, 150, 300},
		{"small kept", 100, 50, 400, 300, 100, 50},
		{"defaults", 1600, 1200, 0, 0, DefaultPreviewWidth, DefaultPreviewHeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := createInMemoryImage(tt.srcW, tt.srcH, color.RGBA{10, 20, 30, 255})

			result, err := Thumbnail(img, tt.maxW, tt.maxH)
			if err != nil {
				t.Fatalf("Thumbnail failed: %v", err)
			}
			if result.Width != tt.wantW || result.Height != tt.wantH {
				t.Errorf("dimensions: got %dx%d, want %dx%d", result.Width, result.Height, tt.wantW, tt.wantH)
			}
			if result.SourceWidth != tt.srcW || result.SourceHeight != tt.srcH {
				t.Errorf("source dimensions: got %dx%d", result.SourceWidth, result.SourceHeight)
			}
			if result.MimeType != "image/png" {
				t.Errorf("MimeType: got %s, want image/png", result.MimeType)
			}

			data, err := base64.StdEncoding.DecodeString(result.ImageBase64)
			if err != nil {
				t.Fatalf("failed to decode base64: %v", err)
			}
			decoded, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("failed to decode PNG: %v", err)
			}
			if decoded.Bounds().Dx() != tt.wantW {
				t.Errorf("decoded width %d, want %d", decoded.Bounds().Dx(), tt.wantW)
			}
		})
	}
}

func TestThumbnail_Empty(t *testing.T) {
	if _, err := Thumbnail(image.NewRGBA(image.Rect(0, 0, 0, 0)), 10, 10); err == nil {
		t.Error("Thumbnail should fail for an empty image")
	}
}
