package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the invoice image",
	}
}

func detectionsProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Optional path to a JSON detections file. Defaults to the configured detector",
	}
}

func minConfidenceProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": "Optional minimum detector confidence in [0,1]. Lower-scored regions are dropped",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Pipeline
		{
			Name:        "invoice_extract",
			Description: "Run the full extraction on an invoice image: detect regions, recognize each one, normalize field values and reconstruct the line-item table. Returns the regions and the assembled record.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":           pathProperty(),
					"detections":     detectionsProperty(),
					"min_confidence": minConfidenceProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "invoice_detect",
			Description: "List the labeled regions (label, confidence, bounding box) found on an invoice image without recognizing their text.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":           pathProperty(),
					"detections":     detectionsProperty(),
					"min_confidence": minConfidenceProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Stages
		{
			Name:        "invoice_crop_region",
			Description: "Crop a bounding box from an invoice image and return it as base64-encoded PNG. Boxes are clamped to the image; a box outside the image returns empty=true.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x1": map[string]interface{}{
						"type":        "number",
						"description": "Left edge X coordinate",
					},
					"y1": map[string]interface{}{
						"type":        "number",
						"description": "Top edge Y coordinate",
					},
					"x2": map[string]interface{}{
						"type":        "number",
						"description": "Right edge X coordinate (exclusive)",
					},
					"y2": map[string]interface{}{
						"type":        "number",
						"description": "Bottom edge Y coordinate (exclusive)",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "x1", "y1", "x2", "y2"},
			},
		},
		{
			Name:        "invoice_parse_table",
			Description: "Rebuild a table from recognized text. The first line is the header row; columns are split on runs of two or more spaces and lines with fewer cells than headers are dropped.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Recognized text of the table region",
					},
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        "invoice_normalize",
			Description: "Clean the recognized text of a field: strip the label's caption prefix and trim whitespace.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"label": map[string]interface{}{
						"type":        "string",
						"description": "Field label, e.g. TOTAL or INVOICE_NUMBER",
					},
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Raw recognized text",
					},
				},
				"required": []string{"label", "text"},
			},
		},

		// Image Information
		{
			Name:        "invoice_image_info",
			Description: "Get the width, height, format and file size of an invoice image. Detector boxes use these pixel coordinates.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
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
