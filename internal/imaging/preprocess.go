package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	// darkBackgroundLightness is the mean Lab L* below which a page is treated
	// as light text on a dark background and inverted.
	darkBackgroundLightness = 0.45

	// minOCRWidth is the narrowest image handed to the engine unscaled.
	// Screenshots and phone crops below it are upscaled 2x.
	minOCRWidth = 800

	contrastBoost = 0.2

	// sampleGrid bounds the number of pixels read by MeanLightness.
	sampleGrid = 64
)

// PrepareForOCR normalizes an image for Tesseract.
//
// Steps, in order:
//  1. Invert when the background is dark (see MeanLightness).
//  2. Convert to grayscale.
//  3. Apply a mild contrast boost.
//  4. Upscale 2x when narrower than minOCRWidth.
//
// The input image is never modified.
func PrepareForOCR(img image.Image) image.Image {
	b := img.Bounds()
	if b.Empty() {
		return img
	}

	var out image.Image = img
	if MeanLightness(out) < darkBackgroundLightness {
		out = imaging.Invert(out)
	}

	out = effect.Grayscale(out)
	out = adjust.Contrast(out, contrastBoost)

	if w := out.Bounds().Dx(); w < minOCRWidth {
		out = imaging.Resize(out, w*2, 0, imaging.Lanczos)
	}
	return out
}

// MeanLightness returns the average CIE L* of the image in [0, 1], sampled on
// a grid of at most sampleGrid x sampleGrid pixels. Fully transparent pixels
// are skipped. An empty image reports 1 (white).
func MeanLightness(img image.Image) float64 {
	b := img.Bounds()
	if b.Empty() {
		return 1
	}

	stepX := max(1, b.Dx()/sampleGrid)
	stepY := max(1, b.Dy()/sampleGrid)

	var sum float64
	var n int
	for y := b.Min.Y; y < b.Max.Y; y += stepY {
		for x := b.Min.X; x < b.Max.X; x += stepX {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			l, _, _ := c.Lab()
			sum += l
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return sum / float64(n)
}
