package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the schema of the frame path argument shared by most tools
var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the captured frame (PNG, JPEG, GIF, BMP, TIFF or WebP)",
}

var scaleProperty = map[string]interface{}{
	"type":        "number",
	"description": "Scale factor for returned images (default: 1.0)",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Session configuration
		{
			Name:        "omr_set_template",
			Description: "Set the size of the rectified answer sheet in pixels. Existing sections are kept and revalidated against the new size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Template width in pixels",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Template height in pixels",
					},
				},
				"required": []string{"width", "height"},
			},
		},
		{
			Name:        "omr_set_sections",
			Description: "Replace the graded sections. Each section is a rectangle of the rectified sheet with one row per question and five option columns A-E. The new configuration is validated before it replaces the old one.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sections": map[string]interface{}{
						"type":        "array",
						"description": "Sections in grading order",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"name":    map[string]interface{}{"type": "string"},
								"left":    map[string]interface{}{"type": "integer"},
								"top":     map[string]interface{}{"type": "integer"},
								"width":   map[string]interface{}{"type": "integer"},
								"height":  map[string]interface{}{"type": "integer"},
								"rows":    map[string]interface{}{"type": "integer", "description": "Question rows (default: length of answers)"},
								"answers": map[string]interface{}{"type": "string", "description": "Answer key, one letter A-E per row"},
							},
							"required": []string{"left", "top", "width", "height", "answers"},
						},
					},
					"tie_break": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"smallest", "largest"},
						"description": "Which mark wins when a row has several (default: smallest)",
					},
					"rotate": map[string]interface{}{
						"type":        "boolean",
						"description": "Rotate frames 90 degrees clockwise before processing (default: true)",
					},
					"reject_degenerate": map[string]interface{}{
						"type":        "boolean",
						"description": "Reject frames with missing or degenerate corner markers (default: true)",
					},
					"parallel": map[string]interface{}{
						"type":        "boolean",
						"description": "Grade sections concurrently (default: false)",
					},
				},
				"required": []string{"sections"},
			},
		},
		{
			Name:        "omr_load_form",
			Description: "Load a YAML form file describing the template, sections and label regions, replacing the session configuration.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the form file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "omr_save_form",
			Description: "Write the session configuration to a YAML form file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path of the form file to write",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "omr_session",
			Description: "Describe the active template, sections, labels and grading options.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Frame processing
		{
			Name:        "omr_process_frame",
			Description: "Grade one captured frame. Returns the total score (-1 when the frame is rejected), the rejection reason and per-row answers. With debug_level > 0 the display image is returned as base64 PNG: the rectified sheet, or at level 2 the last section with its selected marks circled.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"debug_level": map[string]interface{}{
						"type":        "integer",
						"description": "0 = no image, 1 = rectified sheet, 2 = mark overlay of the last section",
					},
					"scale": scaleProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "omr_locate_corners",
			Description: "Find the four corner markers of a frame and report their positions, which are missing, whether they form a usable quadrilateral and how square the sheet sits.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"tolerance": map[string]interface{}{
						"type":        "number",
						"description": "Pixel tolerance for the edge alignment checks (default: 5)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "omr_check_pattern",
			Description: "Rectify a frame and read the fiducial pattern strip along its bottom edge.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"include_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the rectified sheet and the pattern strip as base64 PNG (default: false)",
					},
					"scale": scaleProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "omr_read_labels",
			Description: "Rectify a frame and OCR the label regions of the active form, such as a candidate name box. Requires a build with OCR support.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code (default: eng)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "omr_clear_cache",
			Description: "Drop decoded frames from the cache. Frames are cached by path, so call this after a file has been overwritten.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Frame to evict (default: clear the whole cache)",
					},
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
