// Package server implements the MCP (Model Context Protocol) server for perceptual
// image fingerprinting.
//
// This package provides a JSON-RPC 2.0 server that exposes block hashing through
// the MCP protocol, so an MCP client can fingerprint images and find near
// duplicates without decoding pixels itself.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Fingerprinting:
//   - image_blockhash: Hash one image given as a path, URL or base64 data
//   - image_blockhash_compare: Hash two images and report their distance
//   - image_blockhash_batch: Hash many images with a worker pool
//   - hash_distance: Hamming distance between two hex hashes
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// The bits and method arguments are optional and fall back to the values in
// config.Config (BLOCKHASH_DEFAULT_BITS and BLOCKHASH_DEFAULT_METHOD).
//
// # Image Caching
//
// Decoded images are cached by path in the hasher service and shared with the
// metadata tools, so image_load followed by image_blockhash decodes once. When
// BLOCKHASH_CACHE_DB is set, computed hashes are also persisted in SQLite and
// reused until the file's size or modification time changes.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses with:
//   - code: -32602 for invalid arguments (bit count, method, hash text, missing
//     source), -32000 for other tool failures
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(hasher.New(), cfg)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
