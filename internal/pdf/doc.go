// Package pdf turns PDF documents into page images for recognition.
//
// Rasterization is delegated to poppler's pdftoppm, run as a subprocess and
// cancelled with its context. Page counting for previews uses pdfcpu and does
// not render anything.
package pdf
