package ocr

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os/exec"
	"strconv"
	"strings"

	ocrerrors "github.com/ironsheep/persian-ocr-mcp/internal/errors"
)

// CLIEngine recognizes text by running an external tesseract executable.
//
// The image is written to the process's stdin as PNG and the text is read
// from stdout:
//
//	tesseract stdin stdout -l fas [--tessdata-dir DIR] [--psm N]
type CLIEngine struct {
	path           string
	tessdataPrefix string
	pageSegMode    int
}

// NewCLIEngine resolves opts.EnginePath and returns an engine for it.
func NewCLIEngine(opts Options) (*CLIEngine, error) {
	resolved, err := exec.LookPath(opts.EnginePath)
	if err != nil {
		return nil, ocrerrors.NewEngineUnavailableError(opts.EnginePath, err)
	}
	return &CLIEngine{
		path:           resolved,
		tessdataPrefix: opts.TessdataPrefix,
		pageSegMode:    opts.PageSegMode,
	}, nil
}

func (e *CLIEngine) Name() string { return "tesseract-cli" }

// Path returns the resolved executable path.
func (e *CLIEngine) Path() string { return e.path }

// Recognize runs tesseract on img. Cancelling ctx kills the process.
func (e *CLIEngine) Recognize(ctx context.Context, img image.Image, language string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := encodePNG(img)
	if err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, e.path, e.args(language)...)
	cmd.Stdin = bytes.NewReader(data)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		var pathErr *fs.PathError
		if errors.Is(err, exec.ErrNotFound) || errors.As(err, &pathErr) {
			return "", ocrerrors.NewEngineUnavailableError(e.path, err)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("tesseract failed: %s: %w", msg, err)
		}
		return "", fmt.Errorf("tesseract failed: %w", err)
	}
	return stdout.String(), nil
}

func (e *CLIEngine) args(language string) []string {
	args := []string{"stdin", "stdout", "-l", strings.Join(splitLanguages(language), "+")}
	if e.tessdataPrefix != "" {
		args = append(args, "--tessdata-dir", e.tessdataPrefix)
	}
	if e.pageSegMode > 0 {
		args = append(args, "--psm", strconv.Itoa(e.pageSegMode))
	}
	return args
}

// Version returns the first line of `tesseract --version`.
func (e *CLIEngine) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, e.path, "--version").CombinedOutput()
	if err != nil {
		return "", ocrerrors.NewEngineUnavailableError(e.path, err)
	}
	line, _, _ := bufio.NewReader(bytes.NewReader(out)).ReadLine()
	return strings.TrimSpace(string(line)), nil
}
