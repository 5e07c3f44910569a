// Package ocr adapts the Tesseract OCR engine for Persian text recognition.
//
// Two backends implement Engine:
//
//   - TesseractEngine: the linked libtesseract through gosseract/v2. Used when
//     no engine path is configured.
//   - CLIEngine: an external tesseract executable, selected by a request's
//     engine path. The image is piped on stdin, text is read from stdout.
//
// # Prerequisites
//
// Tesseract and the Persian language data must be installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-fas
//   - macOS: brew install tesseract tesseract-lang
//   - Windows: https://github.com/UB-Mannheim/tesseract/wiki
//
// The language defaults to "fas". Combined codes such as "fas+eng" are
// accepted by both backends.
//
// # Error Handling
//
// A missing executable, missing language data or a library that cannot be
// initialized is reported as ENGINE_UNAVAILABLE. Any other failure is returned
// as a plain wrapped error; the recognition runner classifies it as a
// recognition failure of the unit being processed.
package ocr
