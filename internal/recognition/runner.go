package recognition

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	ocrerrors "github.com/ironsheep/persian-ocr-mcp/internal/errors"
	"github.com/ironsheep/persian-ocr-mcp/internal/imaging"
	"github.com/ironsheep/persian-ocr-mcp/internal/logging"
	"github.com/ironsheep/persian-ocr-mcp/internal/ocr"
	"github.com/ironsheep/persian-ocr-mcp/internal/pdf"
)

var (
	// ErrBusy is returned by Start while the runner's previous task is still
	// running.
	ErrBusy = errors.New("a recognition task is already running")

	// ErrInvalidRequest is returned by Start for a request without a file.
	ErrInvalidRequest = errors.New("invalid recognition request")

	// ErrClosed is returned by Start after Close.
	ErrClosed = errors.New("recognition runner is closed")
)

// Recognizer is the OCR engine call.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, language string) (string, error)
}

// Rasterizer is the page rasterization call.
type Rasterizer interface {
	Rasterize(ctx context.Context, path string, dpi int) ([]image.Image, error)
}

// EngineOpener returns the engine for a request's engine path.
type EngineOpener func(enginePath string) (Recognizer, error)

// PageSeparator formats the header placed before each page of a document.
const PageSeparator = "--- Page %d ---"

// Runner executes recognition requests one at a time on a background
// goroutine.
type Runner struct {
	openEngine EngineOpener
	rasterizer Rasterizer
	loadImage  func(path string) (image.Image, error)
	isDocument func(path string) bool
	preprocess func(image.Image) image.Image
	language   string
	dpi        int
	now        func() time.Time
	logger     *logging.Logger

	mu     sync.Mutex
	active *Task
	closed bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithEngineOpener replaces how engines are obtained.
func WithEngineOpener(open EngineOpener) Option {
	return func(r *Runner) { r.openEngine = open }
}

// WithRasterizer replaces the document rasterizer.
func WithRasterizer(rz Rasterizer) Option {
	return func(r *Runner) { r.rasterizer = rz }
}

// WithImageLoader replaces the image decoder.
func WithImageLoader(load func(path string) (image.Image, error)) Option {
	return func(r *Runner) { r.loadImage = load }
}

// WithDocumentDetector replaces the image/document decision.
func WithDocumentDetector(isDocument func(path string) bool) Option {
	return func(r *Runner) { r.isDocument = isDocument }
}

// WithPreprocessor transforms each unit before recognition.
func WithPreprocessor(fn func(image.Image) image.Image) Option {
	return func(r *Runner) { r.preprocess = fn }
}

// WithLanguage sets the Tesseract language code.
func WithLanguage(language string) Option {
	return func(r *Runner) { r.language = language }
}

// WithDPI sets the document rasterization resolution.
func WithDPI(dpi int) Option {
	return func(r *Runner) { r.dpi = dpi }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// NewRunner creates a runner. Without options it recognizes Persian text with
// the linked libtesseract (or the request's tesseract executable), rasterizes
// PDFs with pdftoppm at 300 DPI and applies no preprocessing.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		openEngine: func(enginePath string) (Recognizer, error) {
			return ocr.Open(ocr.Options{EnginePath: enginePath})
		},
		rasterizer: pdf.NewRasterizer("", ""),
		loadImage:  imaging.Load,
		isDocument: pdf.IsDocument,
		language:   ocr.DefaultLanguage,
		dpi:        pdf.RecognitionDPI,
		now:        time.Now,
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start validates req and begins recognizing it in the background. It
// returns as soon as the task is running; observe it through the task's
// events, Wait or Snapshot.
//
// ctx bounds the task's lifetime: cancelling it fails the task at the next
// unit boundary and kills any external process in flight.
func (r *Runner) Start(ctx context.Context, req Request) (*Task, error) {
	if strings.TrimSpace(req.FilePath) == "" {
		return nil, fmt.Errorf("%w: file path is empty", ErrInvalidRequest)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	if r.active != nil && !r.active.State().Terminal() {
		return nil, ErrBusy
	}

	taskCtx, cancel := context.WithCancel(ctx)
	t := newTask(uuid.NewString(), req, cancel, r.now())
	t.setRunning()
	r.active = t

	r.logger.Info("recognition started", "task_id", t.id, "path", req.FilePath)
	go r.run(taskCtx, t)
	return t, nil
}

// Active returns the most recently started task, or nil.
func (r *Runner) Active() *Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Close refuses further Start calls, cancels the running task if any, and
// waits for it to emit its terminal result or for ctx to end.
func (r *Runner) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	t := r.active
	r.mu.Unlock()

	if t == nil || t.State().Terminal() {
		return nil
	}

	r.logger.Warn("cancelling running recognition", "task_id", t.id)
	t.cancel()
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("task %s did not stop: %w", t.id, ctx.Err())
	}
}

func (r *Runner) run(ctx context.Context, t *Task) {
	start := r.now()

	text, total, err := r.execute(ctx, t)
	if err != nil {
		cause := err.Error()
		r.logger.Error("recognition failed", "task_id", t.id, "code", ocrerrors.CodeOf(err), "error", cause)
		t.logf(SeverityError, "Recognition failed: %s", cause)
		t.reportProgress(0, total)
		t.finish(Result{Text: "Error: " + cause, Succeeded: false}, r.now())
		return
	}

	elapsed := r.now().Sub(start)
	r.logger.Info("recognition complete", "task_id", t.id, "units", total, "elapsed", elapsed)
	t.logf(SeveritySuccess, "Recognition complete! Elapsed: %.2f s", elapsed.Seconds())
	t.finish(Result{Text: text, Succeeded: true}, r.now())
}

// execute recognizes every unit of the task's request in order. total is the
// number of units known when execution stopped.
func (r *Runner) execute(ctx context.Context, t *Task) (text string, total int, err error) {
	path := t.req.FilePath
	document := r.isDocument(path)
	if !document {
		total = 1
	}

	engine, err := r.openEngine(t.req.EnginePath)
	if err != nil {
		if ocrerrors.CodeOf(err) == "" {
			err = ocrerrors.NewEngineUnavailableError(t.req.EnginePath, err)
		}
		return "", total, err
	}

	units, err := r.units(ctx, path, document)
	if err != nil {
		return "", total, err
	}
	total = len(units)

	texts := make([]string, 0, total)
	var busy time.Duration
	for _, u := range units {
		if err := ctx.Err(); err != nil {
			return "", total, err
		}

		t.logf(SeverityInfo, "Processing unit %d/%d...", u.Index, total)
		unitStart := r.now()

		img := u.Image
		if r.preprocess != nil {
			img = r.preprocess(img)
		}

		out, err := engine.Recognize(ctx, img, r.language)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", total, ctxErr
			}
			if ocrerrors.CodeOf(err) == "" {
				err = ocrerrors.NewRecognitionError(u.Index, err)
			}
			return "", total, err
		}

		busy += r.now().Sub(unitStart)
		texts = append(texts, strings.TrimSpace(out))
		t.reportProgress(u.Index, total)

		if remaining := total - u.Index; document && u.Index >= 2 && remaining > 0 {
			avg := busy / time.Duration(u.Index)
			eta := avg * time.Duration(remaining)
			t.logf(SeverityInfo, "Estimated time remaining: %.1f s", eta.Seconds())
		}
	}

	if !document {
		return texts[0], total, nil
	}
	return joinPages(texts), total, nil
}

// units derives the recognition units of the input.
func (r *Runner) units(ctx context.Context, path string, document bool) ([]Unit, error) {
	if !document {
		img, err := r.loadImage(path)
		if err != nil {
			if ocrerrors.CodeOf(err) == "" {
				err = ocrerrors.NewDecodeError(path, err)
			}
			return nil, err
		}
		return []Unit{{Index: 1, Image: img}}, nil
	}

	pages, err := r.rasterizer.Rasterize(ctx, path, r.dpi)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if ocrerrors.CodeOf(err) == "" {
			err = ocrerrors.NewRasterizationError(path, err)
		}
		return nil, err
	}
	if len(pages) == 0 {
		return nil, ocrerrors.NewRasterizationError(path, errors.New("document has no pages"))
	}

	units := make([]Unit, len(pages))
	for i, p := range pages {
		units[i] = Unit{Index: i + 1, Image: p}
	}
	return units, nil
}

// joinPages concatenates page texts in order, each under its page header.
func joinPages(texts []string) string {
	var b strings.Builder
	for i, text := range texts {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, PageSeparator, i+1)
		b.WriteString("\n")
		b.WriteString(text)
	}
	return b.String()
}
