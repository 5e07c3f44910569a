package server

import (
	"strings"
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expectedTools := []string{
		"ocr_recognize",
		"ocr_start",
		"ocr_status",
		"ocr_save",
		"document_preview",
		"ocr_info",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("got %d tools, want %d", len(tools), len(expectedTools))
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("tool %s defined twice", tool.Name)
		}
		toolMap[tool.Name] = tool
	}
	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}
			if _, ok := tool.InputSchema["properties"].(map[string]interface{}); !ok {
				t.Error("InputSchema properties should be a map")
			}
		})
	}
}

func TestToolDefinitions_RecognizePointsAtStart(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		if tool.Name != "ocr_recognize" {
			continue
		}
		for _, want := range []string{"ping", "ocr_status", "ocr_start"} {
			if !strings.Contains(tool.Description, want) {
				t.Errorf("ocr_recognize description does not mention %s", want)
			}
		}
		return
	}
	t.Fatal("ocr_recognize not defined")
}

func TestToolDefinitions_Required(t *testing.T) {
	want := map[string][]string{
		"ocr_recognize":    {"path"},
		"ocr_start":        {"path"},
		"ocr_status":       {"task_id"},
		"ocr_save":         {"output_path"},
		"document_preview": {"path"},
	}

	for _, tool := range GetToolDefinitions() {
		expected, ok := want[tool.Name]
		if !ok {
			if _, has := tool.InputSchema["required"]; has {
				t.Errorf("%s: no parameter should be required", tool.Name)
			}
			continue
		}

		required, ok := tool.InputSchema["required"].([]string)
		if !ok {
			t.Errorf("%s: required should be []string", tool.Name)
			continue
		}
		if len(required) != len(expected) {
			t.Errorf("%s: required = %v, want %v", tool.Name, required, expected)
			continue
		}
		props := tool.InputSchema["properties"].(map[string]interface{})
		for i, name := range expected {
			if required[i] != name {
				t.Errorf("%s: required = %v, want %v", tool.Name, required, expected)
			}
			if _, ok := props[name]; !ok {
				t.Errorf("%s: required parameter %s is not described", tool.Name, name)
			}
		}
	}
}

func TestToolDefinitions_PreviewDefaults(t *testing.T) {
	var preview Tool
	for _, tool := range GetToolDefinitions() {
		if tool.Name == "document_preview" {
			preview = tool
		}
	}
	props := preview.InputSchema["properties"].(map[string]interface{})

	for param, want := range map[string]int{"max_width": 400, "max_height": 300} {
		p, ok := props[param].(map[string]interface{})
		if !ok {
			t.Errorf("%s: parameter not found", param)
			continue
		}
		if p["default"] != want {
			t.Errorf("%s: default got %v, want %d", param, p["default"], want)
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer(t, &stubEngine{texts: []string{"x"}}, 1)
	resp := s.handleToolsList(&MCPRequest{JSONRPC: "2.0", ID: 1})

	if resp == nil || resp.Error != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	toolsList, ok := resp.Result.(map[string]interface{})["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}
	if len(toolsList) != len(GetToolDefinitions()) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(GetToolDefinitions()))
	}
}
