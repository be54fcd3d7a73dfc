package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/image-blockhash-mcp/internal/blockhash"
	"github.com/ironsheep/image-blockhash-mcp/internal/hasher"
	"github.com/ironsheep/image-blockhash-mcp/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_blockhash", "hash_distance").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
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
// Argument errors (bad bit count, unknown method, no source, bad region) use -32602.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		if s.cfg.Debug() {
			s.logger.Printf("tool %s failed: %v", params.Name, err)
		}
		if isArgumentError(err) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
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
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies configured defaults for bits and method
//  3. Delegates to the hasher service or the image cache
//  4. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Fingerprinting
	case "image_blockhash":
		return s.handleImageBlockhash(ctx, args)
	case "image_blockhash_compare":
		return s.handleImageBlockhashCompare(ctx, args)
	case "image_blockhash_batch":
		return s.handleImageBlockhashBatch(ctx, args)
	case "hash_distance":
		return s.handleHashDistance(args)

	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

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
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func isArgumentError(err error) bool {
	return errors.Is(err, blockhash.ErrInvalidBitCount) ||
		errors.Is(err, blockhash.ErrUnsupportedMethod) ||
		errors.Is(err, blockhash.ErrInvalidHash) ||
		errors.Is(err, blockhash.ErrLengthMismatch) ||
		errors.Is(err, imaging.ErrNoSource) ||
		errors.Is(err, imaging.ErrInvalidRegion)
}

// hashParams holds the optional bits and method arguments shared by the
// fingerprint tools. Method may be a name, a number or the legacy boolean flag.
type hashParams struct {
	Bits   int             `json:"bits"`
	Method json.RawMessage `json:"method"`
}

func (s *Server) resolve(p hashParams) (int, blockhash.Method, error) {
	bits := p.Bits
	if bits == 0 {
		bits = s.cfg.DefaultBits
	}

	raw := bytes.TrimSpace(p.Method)
	if len(raw) == 0 || string(raw) == "null" {
		return bits, s.cfg.DefaultMethod, nil
	}
	m, err := blockhash.ParseMethod(strings.Trim(string(raw), `"`))
	if err != nil {
		return 0, 0, err
	}
	return bits, m, nil
}

// === Fingerprint Handlers ===

type imageBlockhashArgs struct {
	hashParams
	Path string `json:"path"`
	URL  string `json:"url"`
	// Data is base64-encoded image content.
	Data []byte `json:"data"`
	Ext  string `json:"ext"`
	Name string `json:"name"`
	// Region optionally restricts hashing to a named part of the image.
	Region string `json:"region"`
}

func (s *Server) handleImageBlockhash(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageBlockhashArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	bits, method, err := s.resolve(a.hashParams)
	if err != nil {
		return nil, err
	}

	src := imaging.Source{URL: a.URL, Path: a.Path}
	if len(a.Data) > 0 {
		src.Buffer = &imaging.Buffer{Data: a.Data, Ext: a.Ext, Name: a.Name}
	}
	if a.Region != "" {
		return s.svc.HashRegion(ctx, src, a.Region, bits, method)
	}
	return s.svc.HashSource(ctx, src, bits, method)
}

type imageBlockhashCompareArgs struct {
	hashParams
	// A and B are file paths or http(s) URLs.
	A string `json:"a"`
	B string `json:"b"`
}

func (s *Server) handleImageBlockhashCompare(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageBlockhashCompareArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	bits, method, err := s.resolve(a.hashParams)
	if err != nil {
		return nil, err
	}
	return s.svc.Compare(ctx, imaging.ParseSource(a.A), imaging.ParseSource(a.B), bits, method)
}

type imageBlockhashBatchArgs struct {
	hashParams
	Paths []string `json:"paths"`
}

// batchResult wraps HashMany output with summary counts.
type batchResult struct {
	Items     []hasher.BatchItem `json:"items"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
}

func (s *Server) handleImageBlockhashBatch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageBlockhashBatchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	bits, method, err := s.resolve(a.hashParams)
	if err != nil {
		return nil, err
	}

	items, err := s.svc.HashMany(ctx, a.Paths, bits, method)
	if err != nil {
		return nil, err
	}
	res := &batchResult{Items: items}
	for _, item := range items {
		if item.Error != "" {
			res.Failed++
		} else {
			res.Succeeded++
		}
	}
	return res, nil
}

type hashDistanceArgs struct {
	A    string `json:"a"`
	B    string `json:"b"`
	Bits int    `json:"bits"`
}

type hashDistanceResult struct {
	Distance   int     `json:"distance"`
	Bits       int     `json:"bits"`
	Similarity float64 `json:"similarity"`
}

func (s *Server) handleHashDistance(args json.RawMessage) (interface{}, error) {
	var a hashDistanceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	// Infer the length from the hex digits when bits is omitted.
	if a.Bits == 0 {
		a.Bits = len(a.A) * 4
	}
	d, err := hasher.Distance(a.A, a.B, a.Bits)
	if err != nil {
		return nil, err
	}
	return &hashDistanceResult{
		Distance:   d,
		Bits:       a.Bits,
		Similarity: 1 - float64(d)/float64(a.Bits),
	}, nil
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.svc.Images(), a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.svc.Images(), a.Path)
}
