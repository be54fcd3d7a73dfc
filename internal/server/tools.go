package server

import "github.com/ironsheep/image-blockhash-mcp/internal/imaging"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func bitsProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Hash length in bits. Must be a perfect square (16, 64, 144, 256...). Defaults to the server setting, normally 64",
	}
}

func methodProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        []string{"string", "integer", "boolean"},
		"description": "Block partition method: \"quick\" (area-weighted, default) or \"precise\" (whole-pixel blocks). 1/2 and false/true are accepted as aliases",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Fingerprinting
		{
			Name:        "image_blockhash",
			Description: "Compute the perceptual block hash of an image and return it as a hex string. Visually similar images produce hashes with a small Hamming distance. Provide exactly one of path, url or data.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"url": map[string]interface{}{
						"type":        "string",
						"description": "http or https URL to fetch the image from",
					},
					"data": map[string]interface{}{
						"type":        "string",
						"description": "Base64-encoded PNG, JPEG or WebP content",
					},
					"ext": map[string]interface{}{
						"type":        "string",
						"description": "Optional MIME type or extension of data (e.g., \"image/png\"). Sniffed when omitted",
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Optional file name for data. Its extension must match the content",
					},
					"region": map[string]interface{}{
						"type":        "string",
						"enum":        imaging.RegionNames,
						"description": "Optional part of the image to hash instead of the whole. Quadrants and halves split at the midpoint; center is the middle 50%",
					},
					"bits":   bitsProperty(),
					"method": methodProperty(),
				},
			},
		},
		{
			Name:        "image_blockhash_compare",
			Description: "Hash two images with the same parameters and report their Hamming distance and similarity (1 - distance/bits).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"a": map[string]interface{}{
						"type":        "string",
						"description": "First image: absolute path or http(s) URL",
					},
					"b": map[string]interface{}{
						"type":        "string",
						"description": "Second image: absolute path or http(s) URL",
					},
					"bits":   bitsProperty(),
					"method": methodProperty(),
				},
				"required": []string{"a", "b"},
			},
		},
		{
			Name:        "image_blockhash_batch",
			Description: "Hash many images concurrently. Results are returned in input order; a failure on one image is reported in its item and does not stop the batch.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Absolute paths or http(s) URLs",
					},
					"bits":   bitsProperty(),
					"method": methodProperty(),
				},
				"required": []string{"paths"},
			},
		},
		{
			Name:        "hash_distance",
			Description: "Hamming distance between two hex block hashes of the same length.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"a": map[string]interface{}{
						"type":        "string",
						"description": "First hex hash",
					},
					"b": map[string]interface{}{
						"type":        "string",
						"description": "Second hex hash",
					},
					"bits": map[string]interface{}{
						"type":        "integer",
						"description": "Hash length in bits. Inferred as 4 per hex digit when omitted",
					},
				},
				"required": []string{"a", "b"},
			},
		},

		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and alpha information. The decoded image is cached for later hashing.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
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
