package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestOCRError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *OCRError
		want string
	}{
		{"with cause", NewDecodeError("/tmp/a.png", fs.ErrNotExist), "cannot decode /tmp/a.png: file does not exist"},
		{"without cause", NewEngineUnavailableError("", nil), "OCR engine unavailable"},
		{"engine path", NewEngineUnavailableError("/opt/tesseract", nil), "OCR engine unavailable at /opt/tesseract"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOCRError_Unwrap(t *testing.T) {
	err := NewRasterizationError("doc.pdf", fs.ErrPermission)
	if !stderrors.Is(err, fs.ErrPermission) {
		t.Error("errors.Is should see the wrapped cause")
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("page 3: %w", NewRecognitionError(3, stderrors.New("boom")))

	if got := CodeOf(wrapped); got != ErrorRecognitionFailed {
		t.Errorf("CodeOf = %q, want %q", got, ErrorRecognitionFailed)
	}
	if !HasCode(wrapped, ErrorRecognitionFailed) {
		t.Error("HasCode should match through fmt.Errorf wrapping")
	}
	if got := CodeOf(stderrors.New("plain")); got != "" {
		t.Errorf("CodeOf(plain) = %q, want empty", got)
	}
}

func TestOCRError_ToMap(t *testing.T) {
	m := NewDecodeError("x.png", stderrors.New("bad header")).ToMap()

	if m["error_code"] != "DECODE_FAILED" {
		t.Errorf("error_code = %v", m["error_code"])
	}
	if m["path"] != "x.png" {
		t.Errorf("path = %v", m["path"])
	}
	if m["cause"] != "bad header" {
		t.Errorf("cause = %v", m["cause"])
	}
}
