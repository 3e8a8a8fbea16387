// Package server implements the MCP (Model Context Protocol) server for the
// invoice extraction tools.
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
// Pipeline:
//   - invoice_extract: Detect, recognize and assemble a record
//   - invoice_detect: List detected regions
//
// Stages:
//   - invoice_crop_region: Crop a bounding box as PNG
//   - invoice_parse_table: Rebuild a table from recognized text
//   - invoice_normalize: Clean a field value
//
// Image Information:
//   - invoice_image_info: Dimensions, format and size
//
// Images are cached by path for the lifetime of the process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with code
// -32000 and the Go error string as data. Malformed tools/call parameters
// return -32602, and unknown methods -32601.
//
// Diagnostics go to the configured zerolog logger; stdout carries protocol
// traffic only.
package server
