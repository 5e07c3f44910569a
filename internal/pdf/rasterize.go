package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	ocrerrors "github.com/ironsheep/persian-ocr-mcp/internal/errors"
	"github.com/ironsheep/persian-ocr-mcp/internal/imaging"
)

// Resolutions used by the application.
const (
	RecognitionDPI = 300
	PreviewDPI     = 100
)

const pagePrefix = "page"

// Rasterizer renders PDF pages with pdftoppm.
type Rasterizer struct {
	// Command is the pdftoppm executable. Empty means "pdftoppm" on PATH.
	Command string

	// TempDir is where scratch directories are created. Empty means os.TempDir.
	TempDir string
}

// NewRasterizer returns a rasterizer using command, or pdftoppm when empty.
func NewRasterizer(command, tempDir string) *Rasterizer {
	return &Rasterizer{Command: command, TempDir: tempDir}
}

// Rasterize renders every page of the document at dpi and returns the images
// in ascending page order. Any failure is a RASTERIZATION_FAILED error and no
// pages are returned.
func (r *Rasterizer) Rasterize(ctx context.Context, path string, dpi int) ([]image.Image, error) {
	return r.render(ctx, path, dpi, 0, 0)
}

// RasterizePage renders a single 1-based page at dpi.
func (r *Rasterizer) RasterizePage(ctx context.Context, path string, page, dpi int) (image.Image, error) {
	if page < 1 {
		return nil, ocrerrors.NewRasterizationError(path, fmt.Errorf("invalid page number %d", page))
	}
	pages, err := r.render(ctx, path, dpi, page, page)
	if err != nil {
		return nil, err
	}
	if len(pages) != 1 {
		return nil, ocrerrors.NewRasterizationError(path, fmt.Errorf("expected 1 page, got %d", len(pages)))
	}
	return pages[0], nil
}

func (r *Rasterizer) render(ctx context.Context, path string, dpi, first, last int) ([]image.Image, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, ocrerrors.NewRasterizationError(path, err)
	}
	if dpi <= 0 {
		dpi = RecognitionDPI
	}

	workDir, err := os.MkdirTemp(r.TempDir, "persian-ocr-pages-*")
	if err != nil {
		return nil, ocrerrors.NewRasterizationError(path, fmt.Errorf("failed to create scratch directory: %w", err))
	}
	defer os.RemoveAll(workDir)

	args := []string{"-r", strconv.Itoa(dpi), "-png"}
	if first > 0 {
		args = append(args, "-f", strconv.Itoa(first), "-l", strconv.Itoa(last))
	}
	args = append(args, path, filepath.Join(workDir, pagePrefix))

	cmd := exec.CommandContext(ctx, r.command(), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%s: %w", msg, err)
		}
		return nil, ocrerrors.NewRasterizationError(path, err)
	}

	files, err := pageFiles(workDir)
	if err != nil {
		return nil, ocrerrors.NewRasterizationError(path, err)
	}
	if len(files) == 0 {
		return nil, ocrerrors.NewRasterizationError(path, errors.New("pdftoppm produced no pages"))
	}

	pages := make([]image.Image, 0, len(files))
	for _, f := range files {
		img, err := imaging.Load(f)
		if err != nil {
			return nil, ocrerrors.NewRasterizationError(path, err)
		}
		pages = append(pages, img)
	}
	return pages, nil
}

func (r *Rasterizer) command() string {
	if r.Command == "" {
		return "pdftoppm"
	}
	return r.Command
}

// pageFiles lists pdftoppm output in page order. pdftoppm zero-pads the page
// number to the width of the page count (page-1.png, page-01.png, ...), so
// the number is parsed rather than sorted lexically.
func pageFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pagePrefix+"-*.png"))
	if err != nil {
		return nil, err
	}

	type numbered struct {
		path string
		page int
	}
	pages := make([]numbered, 0, len(matches))
	for _, m := range matches {
		base := strings.TrimSuffix(filepath.Base(m), ".png")
		n, err := strconv.Atoi(strings.TrimPrefix(base, pagePrefix+"-"))
		if err != nil {
			return nil, fmt.Errorf("unexpected page file %s", filepath.Base(m))
		}
		pages = append(pages, numbered{path: m, page: n})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].page < pages[j].page })

	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.path
	}
	return out, nil
}

// IsDocument reports whether path names a PDF, by extension or by its
// "%PDF-" header.
func IsDocument(path string) bool {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return true
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	header := make([]byte, 5)
	if _, err := io.ReadFull(f, header); err != nil {
		return false
	}
	return string(header) == "%PDF-"
}
