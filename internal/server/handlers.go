package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/persian-ocr-mcp/internal/export"
	"github.com/ironsheep/persian-ocr-mcp/internal/imaging"
	"github.com/ironsheep/persian-ocr-mcp/internal/ocr"
	"github.com/ironsheep/persian-ocr-mcp/internal/recognition"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "ocr_recognize", "ocr_start").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`

	// Meta carries the client's progress token, if any.
	Meta *struct {
		ProgressToken interface{} `json:"progressToken,omitempty"`
	} `json:"_meta,omitempty"`
}

func (p ToolCallParams) progressToken() interface{} {
	if p.Meta == nil {
		return nil
	}
	return p.Meta.ProgressToken
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments, params.progressToken())
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage, progressToken interface{}) (interface{}, error) {
	switch name {
	// Recognition
	case "ocr_recognize":
		return s.handleRecognize(args, progressToken)
	case "ocr_start":
		return s.handleStart(args, progressToken)
	case "ocr_status":
		return s.handleStatus(args)
	case "ocr_save":
		return s.handleSave(args)

	// Inputs and engine
	case "document_preview":
		return s.handleDocumentPreview(args)
	case "ocr_info":
		return s.handleInfo(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return errors.New("missing arguments")
	}
	return json.Unmarshal(args, v)
}

// === Recognition Handlers ===

type recognizeArgs struct {
	Path       string `json:"path"`
	EnginePath string `json:"engine_path"`
}

func (a recognizeArgs) request() recognition.Request {
	return recognition.Request{FilePath: a.Path, EnginePath: a.EnginePath}
}

// start launches a task and its notification forwarder. The returned channel
// closes after the task's last notification has been written.
func (s *Server) start(args json.RawMessage, progressToken interface{}) (*recognition.Task, <-chan struct{}, error) {
	var a recognizeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, nil, err
	}
	t, err := s.runner.Start(s.ctx, a.request())
	if err != nil {
		return nil, nil, err
	}
	s.rememberTask(t)
	return t, s.forward(t, progressToken), nil
}

// handleRecognize runs a recognition to completion. Events are still streamed
// as notifications while it runs, and all of them are written before the
// response.
func (s *Server) handleRecognize(args json.RawMessage, progressToken interface{}) (interface{}, error) {
	t, forwarded, err := s.start(args, progressToken)
	if err != nil {
		return nil, err
	}
	if _, err := t.Wait(s.ctx); err != nil {
		return nil, err
	}
	select {
	case <-forwarded:
	case <-s.ctx.Done():
		return nil, s.ctx.Err()
	}
	return t.Snapshot(), nil
}

type startResult struct {
	TaskID   string            `json:"task_id"`
	FilePath string            `json:"file_path"`
	State    recognition.State `json:"state"`
}

func (s *Server) handleStart(args json.RawMessage, progressToken interface{}) (interface{}, error) {
	t, _, err := s.start(args, progressToken)
	if err != nil {
		return nil, err
	}
	return &startResult{
		TaskID:   t.ID(),
		FilePath: t.Request().FilePath,
		State:    recognition.StateRunning,
	}, nil
}

type taskArgs struct {
	TaskID string `json:"task_id"`
}

func (s *Server) handleStatus(args json.RawMessage) (interface{}, error) {
	var a taskArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	t, err := s.lookupTask(a.TaskID)
	if err != nil {
		return nil, err
	}
	return t.Snapshot(), nil
}

type saveArgs struct {
	TaskID     string `json:"task_id"`
	Text       string `json:"text"`
	OutputPath string `json:"output_path"`
}

type saveResult struct {
	Path  string `json:"path"`
	Bytes int    `json:"bytes"`
}

// handleSave writes either a finished task's text or the given text.
func (s *Server) handleSave(args json.RawMessage) (interface{}, error) {
	var a saveArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	text := a.Text
	if a.TaskID != "" {
		t, err := s.lookupTask(a.TaskID)
		if err != nil {
			return nil, err
		}
		snap := t.Snapshot()
		if snap.Result == nil {
			return nil, fmt.Errorf("task %s is still %s", a.TaskID, snap.State)
		}
		if !snap.Result.Succeeded {
			return nil, fmt.Errorf("task %s failed: %s", a.TaskID, strings.TrimPrefix(snap.Result.Text, "Error: "))
		}
		text = snap.Result.Text
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("nothing to save: provide task_id or text")
	}

	path, err := export.SaveText(a.OutputPath, text)
	if err != nil {
		return nil, err
	}
	return &saveResult{Path: path, Bytes: len(text)}, nil
}

// === Input and Engine Handlers ===

type previewArgs struct {
	Path      string `json:"path"`
	MaxWidth  int    `json:"max_width"`
	MaxHeight int    `json:"max_height"`
}

type previewResult struct {
	*imaging.PreviewResult
	Path      string `json:"path"`
	Kind      string `json:"kind"`
	Format    string `json:"format,omitempty"`
	PageCount int    `json:"page_count,omitempty"`
}

// handleDocumentPreview thumbnails an image, or the first page of a document.
func (s *Server) handleDocumentPreview(args json.RawMessage) (interface{}, error) {
	var a previewArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	if !s.isDocument(a.Path) {
		img, err := s.cache.Load(a.Path)
		if err != nil {
			return nil, err
		}
		thumb, err := imaging.Thumbnail(img, a.MaxWidth, a.MaxHeight)
		if err != nil {
			return nil, err
		}
		return &previewResult{PreviewResult: thumb, Path: a.Path, Kind: "image", Format: imaging.FormatOf(a.Path)}, nil
	}

	pages, err := s.pageCount(a.Path)
	if err != nil {
		return nil, err
	}
	page, err := s.pages.RasterizePage(s.ctx, a.Path, 1, s.previewDPI)
	if err != nil {
		return nil, err
	}
	thumb, err := imaging.Thumbnail(page, a.MaxWidth, a.MaxHeight)
	if err != nil {
		return nil, err
	}
	return &previewResult{PreviewResult: thumb, Path: a.Path, Kind: "document", PageCount: pages}, nil
}

type infoArgs struct {
	EnginePath string `json:"engine_path"`
}

type infoResult struct {
	ocr.Info
	Language string `json:"language"`
}

func (s *Server) handleInfo(args json.RawMessage) (interface{}, error) {
	var a infoArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
	}
	opts := s.engine
	if a.EnginePath != "" {
		opts.EnginePath = a.EnginePath
	}
	return &infoResult{Info: ocr.GetInfo(s.ctx, opts), Language: s.language}, nil
}
