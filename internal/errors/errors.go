// Package errors defines the failure taxonomy of a recognition request.
//
// Every failure that can end a recognition task is reported as an *OCRError
// carrying one of the ErrorCode values below. The recognition runner never
// lets these escape to its caller; it converts them into a failed terminal
// result whose text is the error's description.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode classifies why a recognition request failed.
type ErrorCode string

const (
	// ErrorEngineUnavailable means the OCR engine could not be located or started.
	ErrorEngineUnavailable ErrorCode = "ENGINE_UNAVAILABLE"
	// ErrorDecodeFailed means the input could not be opened or decoded.
	ErrorDecodeFailed ErrorCode = "DECODE_FAILED"
	// ErrorRasterizationFailed means document pages could not be converted to images.
	ErrorRasterizationFailed ErrorCode = "RASTERIZATION_FAILED"
	// ErrorRecognitionFailed means the engine raised while recognizing a unit.
	ErrorRecognitionFailed ErrorCode = "RECOGNITION_FAILED"
)

// OCRError is a classified recognition failure.
type OCRError struct {
	Code    ErrorCode
	Message string
	Path    string
	Cause   error
}

func (e *OCRError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *OCRError) Unwrap() error {
	return e.Cause
}

// NewEngineUnavailableError reports an engine that cannot be invoked.
func NewEngineUnavailableError(enginePath string, cause error) *OCRError {
	msg := "OCR engine unavailable"
	if enginePath != "" {
		msg = fmt.Sprintf("OCR engine unavailable at %s", enginePath)
	}
	return &OCRError{
		Code:    ErrorEngineUnavailable,
		Message: msg,
		Path:    enginePath,
		Cause:   cause,
	}
}

// NewDecodeError reports an input file that cannot be opened or decoded.
func NewDecodeError(path string, cause error) *OCRError {
	return &OCRError{
		Code:    ErrorDecodeFailed,
		Message: fmt.Sprintf("cannot decode %s", path),
		Path:    path,
		Cause:   cause,
	}
}

// NewRasterizationError reports a document whose pages could not be rendered.
func NewRasterizationError(path string, cause error) *OCRError {
	return &OCRError{
		Code:    ErrorRasterizationFailed,
		Message: fmt.Sprintf("cannot rasterize %s", path),
		Path:    path,
		Cause:   cause,
	}
}

// NewRecognitionError reports an engine failure while recognizing one unit.
func NewRecognitionError(unit int, cause error) *OCRError {
	return &OCRError{
		Code:    ErrorRecognitionFailed,
		Message: fmt.Sprintf("recognition of unit %d failed", unit),
		Cause:   cause,
	}
}

// CodeOf returns the code of the first *OCRError in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var oe *OCRError
	if stderrors.As(err, &oe) {
		return oe.Code
	}
	return ""
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// ToMap converts the error to a JSON-friendly map.
func (e *OCRError) ToMap() map[string]interface{} {
	result := map[string]interface{}{
		"error_code": string(e.Code),
		"message":    e.Message,
	}
	if e.Path != "" {
		result["path"] = e.Path
	}
	if e.Cause != nil {
		result["cause"] = e.Cause.Error()
	}
	return result
}
