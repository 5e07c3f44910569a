// Package imaging decodes input images and prepares them for OCR.
//
// # Decoding
//
// Load decodes PNG, JPEG, GIF, BMP, TIFF and WebP files, applying EXIF
// orientation. Decode failures are reported as DECODE_FAILED errors from the
// internal errors package so the recognition runner can surface them
// verbatim.
//
// # Preprocessing
//
// PrepareForOCR applies the small set of corrections that help Tesseract on
// Persian scans and screenshots: dark-background inversion, grayscale,
// contrast and upscaling of narrow images.
//
// # Previews
//
// Thumbnail produces base64 PNG previews for the caller; ImageCache keeps
// decoded preview sources in memory. The cache is safe for concurrent use.
package imaging
