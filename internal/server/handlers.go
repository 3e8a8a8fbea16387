package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/invoice-tools/internal/detection"
	"github.com/ironsheep/invoice-tools/internal/imaging"
	"github.com/ironsheep/invoice-tools/internal/invoice"
	"github.com/ironsheep/invoice-tools/internal/table"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "invoice_extract").
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
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Warn().Err(err).Str("tool", params.Name).Msg("tool failed")
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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Pipeline
	case "invoice_extract":
		return s.handleExtract(ctx, args)
	case "invoice_detect":
		return s.handleDetect(ctx, args)

	// Stages
	case "invoice_crop_region":
		return s.handleCropRegion(args)
	case "invoice_parse_table":
		return s.handleParseTable(args)
	case "invoice_normalize":
		return s.handleNormalize(args)

	// Image Information
	case "invoice_image_info":
		return s.handleImageInfo(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

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

func mustMarshalJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": "failed to marshal result: %s"}`, err.Error())
	}
	return string(b)
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// Pipeline handlers

type extractArgs struct {
	Path          string   `json:"path"`
	Detections    string   `json:"detections"`
	MinConfidence *float64 `json:"min_confidence"`
}

func (s *Server) handleExtract(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a extractArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if s.extractor == nil || s.extractor.Assembler == nil {
		return nil, fmt.Errorf("extraction is not configured")
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	det, err := s.detectorFor(a.Path, a.Detections)
	if err != nil {
		return nil, err
	}

	// Per-call copy so overrides do not leak into later calls.
	ex := *s.extractor
	ex.Detectors = detection.Shared(det)
	if a.MinConfidence != nil {
		ex.MinConfidence = *a.MinConfidence
	}

	return ex.Extract(ctx, a.Path, img)
}

type detectArgs struct {
	Path          string   `json:"path"`
	Detections    string   `json:"detections"`
	MinConfidence *float64 `json:"min_confidence"`
}

type detectResult struct {
	Path    string                   `json:"path"`
	Regions []invoice.DetectedRegion `json:"regions"`
}

func (s *Server) handleDetect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a detectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	det, err := s.detectorFor(a.Path, a.Detections)
	if err != nil {
		return nil, err
	}
	regions, err := det.Detect(ctx, img)
	if err != nil {
		return nil, &invoice.CollaboratorError{Stage: invoice.StageDetect, ImageID: a.Path, Err: err}
	}

	minConfidence := 0.0
	if s.extractor != nil {
		minConfidence = s.extractor.MinConfidence
	}
	if a.MinConfidence != nil {
		minConfidence = *a.MinConfidence
	}
	regions = detection.FilterConfidence(regions, minConfidence)
	if regions == nil {
		regions = []invoice.DetectedRegion{}
	}
	return &detectResult{Path: a.Path, Regions: regions}, nil
}

// Stage handlers

type cropRegionArgs struct {
	Path  string  `json:"path"`
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Scale float64 `json:"scale"`
}

func (s *Server) handleCropRegion(args json.RawMessage) (interface{}, error) {
	var a cropRegionArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	rect := invoice.Rect{X1: a.X1, Y1: a.Y1, X2: a.X2, Y2: a.Y2}
	return imaging.EncodeCrop(imaging.CropRegion(img, rect), a.Scale)
}

type parseTableArgs struct {
	Text string `json:"text"`
}

type parseTableResult struct {
	Parsed  bool          `json:"parsed"`
	Columns int           `json:"columns"`
	Table   invoice.Table `json:"table"`
}

func (s *Server) handleParseTable(args json.RawMessage) (interface{}, error) {
	var a parseTableArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	t := table.Reconstruct(a.Text)
	return &parseTableResult{Parsed: t.Parsed(), Columns: len(t.Headers), Table: t}, nil
}

type normalizeArgs struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

type normalizeResult struct {
	Label string `json:"label"`
	Raw   string `json:"raw"`
	Value string `json:"value"`
}

func (s *Server) handleNormalize(args json.RawMessage) (interface{}, error) {
	var a normalizeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Label == "" {
		return nil, fmt.Errorf("label is required")
	}
	return &normalizeResult{
		Label: a.Label,
		Raw:   a.Text,
		Value: s.normalizer.Normalize(a.Label, a.Text),
	}, nil
}

// Image information

type imageInfoArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	var a imageInfoArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}
