package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ironsheep/persian-ocr-mcp/internal/imaging"
	"github.com/ironsheep/persian-ocr-mcp/internal/logging"
	"github.com/ironsheep/persian-ocr-mcp/internal/ocr"
	"github.com/ironsheep/persian-ocr-mcp/internal/pdf"
	"github.com/ironsheep/persian-ocr-mcp/internal/recognition"
)

// PageRenderer renders a single document page for previews.
type PageRenderer interface {
	RasterizePage(ctx context.Context, path string, page, dpi int) (image.Image, error)
}

// Server handles MCP protocol communication
type Server struct {
	runner     *recognition.Runner
	cache      *imaging.ImageCache
	pages      PageRenderer
	pageCount  func(path string) (int, error)
	isDocument func(path string) bool
	engine     ocr.Options
	language   string
	previewDPI int
	shutdown   time.Duration
	logger     *logging.Logger

	// ctx bounds every task started by the server.
	ctx    context.Context
	cancel context.CancelFunc

	outMu sync.Mutex
	enc   *json.Encoder

	tasksMu sync.Mutex
	tasks   map[string]*recognition.Task

	forwarders sync.WaitGroup
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// MCPNotification represents an outgoing notification (no ID)
type MCPNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// Option configures a Server.
type Option func(*Server)

// WithPageRenderer replaces the renderer used for document previews.
func WithPageRenderer(r PageRenderer) Option {
	return func(s *Server) { s.pages = r }
}

// WithPageCounter replaces how document page counts are read.
func WithPageCounter(count func(path string) (int, error)) Option {
	return func(s *Server) { s.pageCount = count }
}

// WithDocumentDetector replaces the image/document decision for previews.
func WithDocumentDetector(isDocument func(path string) bool) Option {
	return func(s *Server) { s.isDocument = isDocument }
}

// WithEngineOptions sets the engine reported by ocr_info when the call names
// no engine path.
func WithEngineOptions(opts ocr.Options) Option {
	return func(s *Server) { s.engine = opts }
}

// WithLanguage sets the language reported by ocr_info.
func WithLanguage(language string) Option {
	return func(s *Server) { s.language = language }
}

// WithPreviewDPI sets the resolution of document previews.
func WithPreviewDPI(dpi int) Option {
	return func(s *Server) { s.previewDPI = dpi }
}

// WithShutdownTimeout bounds how long Serve waits for a running task after
// the input closes.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { s.shutdown = d }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a new MCP server instance around runner
func New(runner *recognition.Runner, opts ...Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		runner:     runner,
		cache:      imaging.NewImageCache(),
		pages:      pdf.NewRasterizer("", ""),
		pageCount:  pdf.PageCount,
		isDocument: pdf.IsDocument,
		language:   ocr.DefaultLanguage,
		previewDPI: pdf.PreviewDPI,
		shutdown:   10 * time.Second,
		logger:     logging.Discard(),
		ctx:        ctx,
		cancel:     cancel,
		enc:        json.NewEncoder(io.Discard),
		tasks:      make(map[string]*recognition.Task),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve answers requests read line by line from in, writing responses and
// notifications to out. It returns when in is exhausted, after the running
// task (if any) has been stopped.
func (s *Server) Serve(in io.Reader, out io.Writer) error {
	s.attach(out)
	defer s.Shutdown()

	scanner := bufio.NewScanner(in)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", "error", err)
			continue
		}

		if resp := s.handleRequest(&req); resp != nil {
			s.write(resp)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	return nil
}

// Shutdown stops the running task, waiting up to the shutdown timeout, and
// then flushes pending notifications.
func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()

	if err := s.runner.Close(ctx); err != nil {
		s.logger.Error("running task did not stop", "error", err)
	} else {
		// Every task has finished, so forwarders drain on their own.
		s.forwarders.Wait()
	}
	s.cancel()
	s.forwarders.Wait()
}

func (s *Server) attach(w io.Writer) {
	s.outMu.Lock()
	s.enc = json.NewEncoder(w)
	s.outMu.Unlock()
}

// write serializes one message; responses and notifications from forwarders
// share the output stream.
func (s *Server) write(v interface{}) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if err := s.enc.Encode(v); err != nil {
		s.logger.Error("failed to encode message", "error", err)
	}
}

func (s *Server) notify(method string, params interface{}) {
	s.write(&MCPNotification{JSONRPC: "2.0", Method: method, Params: params})
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools":   map[string]interface{}{},
				"logging": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "persian-ocr-mcp",
				"version": "0.1.0",
			},
		},
	}
}

// rememberTask makes a task addressable by ocr_status and ocr_save.
func (s *Server) rememberTask(t *recognition.Task) {
	s.tasksMu.Lock()
	s.tasks[t.ID()] = t
	s.tasksMu.Unlock()
}

func (s *Server) lookupTask(id string) (*recognition.Task, error) {
	s.tasksMu.Lock()
	defer s.tasksMu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("unknown task: %s", id)
	}
	return t, nil
}

// forward relays a task's events to the client: logs as notifications/message,
// progress as notifications/progress, and the result as a final log message.
// Progress is only sent when the caller supplied a progress token. The
// returned channel is closed once the last event has been written.
func (s *Server) forward(t *recognition.Task, progressToken interface{}) <-chan struct{} {
	done := make(chan struct{})
	s.forwarders.Add(1)
	go func() {
		defer s.forwarders.Done()
		defer close(done)
		for e := range t.Subscribe(s.ctx) {
			switch ev := e.(type) {
			case recognition.LogEvent:
				s.notify("notifications/message", map[string]interface{}{
					"level":  logLevel(ev.Severity),
					"logger": "persian-ocr",
					"data": map[string]interface{}{
						"task_id":  t.ID(),
						"message":  ev.Message,
						"severity": ev.Severity,
					},
				})
			case recognition.ProgressEvent:
				if progressToken == nil {
					continue
				}
				s.notify("notifications/progress", map[string]interface{}{
					"progressToken": progressToken,
					"progress":      ev.Completed,
					"total":         ev.Total,
				})
			case recognition.Result:
				level := "notice"
				if !ev.Succeeded {
					level = "error"
				}
				s.notify("notifications/message", map[string]interface{}{
					"level":  level,
					"logger": "persian-ocr",
					"data": map[string]interface{}{
						"task_id": t.ID(),
						"result":  ev,
					},
				})
			}
		}
	}()
	return done
}

// logLevel maps a task log severity to an MCP logging level.
func logLevel(sev recognition.Severity) string {
	switch sev {
	case recognition.SeveritySuccess:
		return "notice"
	case recognition.SeverityError:
		return "error"
	default:
		return "info"
	}
}
