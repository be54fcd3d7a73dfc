package server

import (
	"strings"
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"image_blockhash",
		"image_blockhash_compare",
		"image_blockhash_batch",
		"hash_distance",
		"image_load",
		"image_dimensions",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		toolMap[tool.Name] = tool
	}

	// Check all expected tools exist
	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	tools := GetToolDefinitions()

	for _, tool := range tools {
		t.Run(tool.Name, func(t *testing.T) {
			// Name should not be empty
			if tool.Name == "" {
				t.Error("Tool name is empty")
			}

			// Description should not be empty
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}

			// InputSchema should exist
			if tool.InputSchema == nil {
				t.Error("Tool InputSchema is nil")
			}

			// InputSchema should be an object type
			schemaType, ok := tool.InputSchema["type"]
			if !ok {
				t.Error("InputSchema missing 'type' field")
			}
			if schemaType != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", schemaType)
			}

			// InputSchema should have properties
			props, ok := tool.InputSchema["properties"]
			if !ok {
				t.Error("InputSchema missing 'properties' field")
			}
			if props == nil {
				t.Error("InputSchema properties is nil")
			}
		})
	}
}

func TestToolDefinitions_Required(t *testing.T) {
	want := map[string][]string{
		"image_blockhash":         nil,
		"image_blockhash_compare": {"a", "b"},
		"image_blockhash_batch":   {"paths"},
		"hash_distance":           {"a", "b"},
		"image_load":              {"path"},
		"image_dimensions":        {"path"},
	}

	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			expected, ok := want[tool.Name]
			if !ok {
				t.Fatalf("unexpected tool %s", tool.Name)
			}

			required, _ := tool.InputSchema["required"].([]string)
			if len(required) != len(expected) {
				t.Fatalf("required: got %v, want %v", required, expected)
			}
			for i := range expected {
				if required[i] != expected[i] {
					t.Errorf("required[%d]: got %s, want %s", i, required[i], expected[i])
				}
			}
		})
	}
}

func TestToolDefinitions_HashParameters(t *testing.T) {
	// Every hashing tool accepts the optional bits and method arguments.
	for _, tool := range GetToolDefinitions() {
		if !strings.HasPrefix(tool.Name, "image_blockhash") {
			continue
		}
		t.Run(tool.Name, func(t *testing.T) {
			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("properties should be a map")
			}
			for _, name := range []string{"bits", "method"} {
				if _, ok := props[name]; !ok {
					t.Errorf("missing %s property", name)
				}
			}
		})
	}
}

func TestToolDefinitions_SourceProperties(t *testing.T) {
	var tool Tool
	for _, tt := range GetToolDefinitions() {
		if tt.Name == "image_blockhash" {
			tool = tt
		}
	}
	if tool.Name == "" {
		t.Fatal("image_blockhash tool not found")
	}

	props := tool.InputSchema["properties"].(map[string]interface{})
	for _, name := range []string{"path", "url", "data", "ext", "name"} {
		if _, ok := props[name]; !ok {
			t.Errorf("image_blockhash missing %s property", name)
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := New(nil, nil)
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
	}

	resp := s.handleToolsList(req)

	if resp == nil {
		t.Fatal("handleToolsList returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}

	tools, ok := result["tools"]
	if !ok {
		t.Fatal("Result should contain 'tools' key")
	}

	toolsList, ok := tools.([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}

	// Should match GetToolDefinitions
	expected := GetToolDefinitions()
	if len(toolsList) != len(expected) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(expected))
	}
}

func TestToolStruct(t *testing.T) {
	tool := Tool{
		Name:        "test_tool",
		Description: "A test tool",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"param1": map[string]interface{}{
					"type":        "string",
					"description": "A test parameter",
				},
			},
			"required": []string{"param1"},
		},
	}

	if tool.Name != "test_tool" {
		t.Errorf("Name: got %s, want test_tool", tool.Name)
	}
	if tool.Description != "A test tool" {
		t.Errorf("Description: got %s, want 'A test tool'", tool.Description)
	}
	if tool.InputSchema == nil {
		t.Error("InputSchema should not be nil")
	}
}
