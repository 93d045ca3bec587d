package server

import "github.com/ironsheep/dominant-colors/internal/imaging"

// Tool is an MCP tool definition as listed by tools/list.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// schema is a JSON Schema fragment.
type schema = map[string]interface{}

func objectSchema(props schema, required ...string) schema {
	return schema{"type": "object", "properties": props, "required": required}
}

func integerProp(desc string, def, min, max int) schema {
	p := schema{"type": "integer", "description": desc, "minimum": min}
	if def != 0 {
		p["default"] = def
	}
	if max != 0 {
		p["maximum"] = max
	}
	return p
}

var pathProp = schema{
	"type":        "string",
	"description": "Absolute path to the image file",
}

// GetToolDefinitions lists the tools in the order tools/list reports them.
func GetToolDefinitions() []Tool {
	corner := schema{"type": "integer", "minimum": 0}

	return []Tool{
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format, color depth and file size. The decoded image is cached for subsequent calls.",
			InputSchema: objectSchema(schema{"path": pathProp}, "path"),
		},
		{
			Name: "image_dominant_colors",
			Description: "Return the most common colors of an image as lowercase #rrggbb hex with their share of pixels. " +
				"The image is resampled to 100x100 and each channel is quantized down to a multiple of step before counting.",
			InputSchema: objectSchema(schema{
				"path": pathProp,
				"step": integerProp("Quantization step per channel. Larger steps merge similar colors",
					32, 1, 256),
				"count": integerProp("Maximum number of colors to return", 10, 1, 0),
				"region": schema{
					"type":        "object",
					"description": "Pixel rectangle to analyze, x2/y2 exclusive. Omit for the whole image",
					"properties":  schema{"x1": corner, "y1": corner, "x2": corner, "y2": corner},
				},
				"quadrant": schema{
					"type":        "string",
					"enum":        imaging.NamedRegions,
					"description": "Named part of the image to analyze. Cannot be combined with region",
				},
			}, "path"),
		},
	}
}

func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  map[string]interface{}{"tools": GetToolDefinitions()},
	}
}
