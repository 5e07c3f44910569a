package pdf

import (
	"github.com/pdfcpu/pdfcpu/pkg/api"

	ocrerrors "github.com/ironsheep/persian-ocr-mcp/internal/errors"
)

// PageCount returns the number of pages in the document without rendering.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, ocrerrors.NewDecodeError(path, err)
	}
	return n, nil
}
