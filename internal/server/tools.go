package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

var enginePathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Optional path to a tesseract executable. Defaults to the server's configured engine.",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Recognition
		{
			Name:        "ocr_recognize",
			Description: "Recognize Persian text in an image or PDF and wait for the result. PDF pages are recognized in order and joined under '--- Page N ---' headers. Progress is streamed as notifications while it runs. The server answers no other request (ping, ocr_status) until it finishes; use ocr_start for long documents.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":        pathProperty("Absolute path to the image (png, jpg, jpeg, bmp, ...) or PDF file"),
					"engine_path": enginePathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "ocr_start",
			Description: "Start recognizing Persian text in an image or PDF in the background and return its task_id immediately. Log lines arrive as notifications/message and progress as notifications/progress when the call carries a progressToken. Poll ocr_status for the rest. Only one recognition runs at a time.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":        pathProperty("Absolute path to the image or PDF file"),
					"engine_path": enginePathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "ocr_status",
			Description: "Get the state, latest progress, log history and (once finished) result of a recognition task.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"task_id": map[string]interface{}{
						"type":        "string",
						"description": "Task identifier returned by ocr_start or ocr_recognize",
					},
				},
				"required": []string{"task_id"},
			},
		},
		{
			Name:        "ocr_save",
			Description: "Save recognized text as a UTF-8 text file. Give either the task_id of a successful recognition or the text itself. '.txt' is appended when the output path has no extension.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"task_id": map[string]interface{}{
						"type":        "string",
						"description": "Task whose result text should be saved",
					},
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Text to save when no task_id is given",
					},
					"output_path": pathProperty("Absolute path of the file to write"),
				},
				"required": []string{"output_path"},
			},
		},

		// Inputs and engine
		{
			Name:        "document_preview",
			Description: "Return a PNG thumbnail of an image, or of the first page of a PDF together with its page count.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image or PDF file"),
					"max_width": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum thumbnail width in pixels. Default 400",
						"default":     400,
					},
					"max_height": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum thumbnail height in pixels. Default 300",
						"default":     300,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "ocr_info",
			Description: "Report whether the OCR engine is available, its version and the recognition language.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"engine_path": enginePathProperty,
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
