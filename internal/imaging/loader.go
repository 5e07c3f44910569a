package imaging

import (
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	ocrerrors "github.com/ironsheep/persian-ocr-mcp/internal/errors"
)

// Load opens and decodes an image file for recognition.
//
// JPEG files are rotated according to their EXIF orientation tag so that text
// reaches the OCR engine upright. Supported formats are PNG, JPEG, GIF, BMP,
// TIFF and WebP.
//
// Any failure to open or decode the file is returned as a DECODE_FAILED
// *errors.OCRError.
func Load(path string) (image.Image, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, ocrerrors.NewDecodeError(path, err)
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, ocrerrors.NewDecodeError(path, err)
	}
	return img, nil
}

// ImageCache provides thread-safe caching of decoded images keyed by path.
//
// It backs the preview tool, where the same file is typically looked at
// several times while a user decides what to recognize. Recognition itself
// always decodes fresh so that an edited file is picked up on the next run.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or decodes it with Load.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len reports the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// FormatOf names the file format implied by the path's extension:
// "png", "jpeg", "gif", "bmp", "tiff", "webp", "pdf" or "unknown".
func FormatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	case ".webp":
		return "webp"
	case ".pdf":
		return "pdf"
	}
	return "unknown"
}
