// Package server implements the MCP (Model Context Protocol) server for
// Persian OCR.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses and notifications on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Recognition:
//   - ocr_recognize: Recognize an image or PDF and wait for the text
//   - ocr_start: Start a recognition in the background
//   - ocr_status: Snapshot of a task (state, progress, logs, result)
//   - ocr_save: Write recognized text to a UTF-8 file
//
// Inputs and engine:
//   - document_preview: Thumbnail of an image or a PDF's first page
//   - ocr_info: Engine availability and version
//
// # Notifications
//
// While a task started by ocr_recognize or ocr_start runs, its events are
// relayed as they happen. Log lines become notifications/message (level info,
// notice or error). Progress becomes notifications/progress keyed by the
// caller's progressToken and is not sent when the call carries none. The
// terminal result is sent as a final notifications/message. ocr_recognize
// writes all of a task's notifications before its response.
//
// Requests are answered one at a time, so ocr_recognize holds off every
// other request (ping and ocr_status included) until it finishes. Long
// documents should go through ocr_start and ocr_status instead.
//
// Only one recognition runs at a time; starting another while one is running
// fails with a tool error.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// A recognition that fails is not a tool error: the task's snapshot reports
// state "failed" and a result text starting with "Error: ".
//
// # Usage
//
//	runner := recognition.NewRunner()
//	srv := server.New(runner)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
