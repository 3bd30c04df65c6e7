package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// scanPatternsTool returns the tool definition for scan_patterns
func scanPatternsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "scan_patterns",
		Description: "Scan candidate snippets for semantic clones of a target snippet, ranked by amplified probability",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"target_source": map[string]interface{}{
					"type":        "string",
					"description": "Go source of the pattern to search for (full file, declaration, or statement snippet)",
				},
				"candidates": map[string]interface{}{
					"type":        "array",
					"description": "Candidate snippets to scan",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"file": map[string]interface{}{
								"type":        "string",
								"description": "File path used as the pattern identifier (optional)",
							},
							"source": map[string]interface{}{
								"type":        "string",
								"description": "Go source of the candidate snippet",
							},
						},
						"required": []string{"source"},
					},
				},
			},
			Required: []string{"target_source", "candidates"},
		},
	}
}

// markPatternTool returns the tool definition for mark_pattern
func markPatternTool() mcp.Tool {
	return mcp.Tool{
		Name:        "mark_pattern",
		Description: "Mark a pattern identifier so amplified searches boost it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"pattern_id": map[string]interface{}{
					"type":        "string",
					"description": "Pattern identifier to mark",
				},
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Mark category (e.g., semantic_duplicate, refactor_candidate)",
					"default":     "semantic_duplicate",
				},
				"confidence": map[string]interface{}{
					"type":        "number",
					"description": "Mark confidence in (0.0, 1.0]; out-of-range values are clamped to 1.0",
					"default":     1.0,
				},
			},
			Required: []string{"pattern_id"},
		},
	}
}

// amplifiedSearchTool returns the tool definition for amplified_search
func amplifiedSearchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "amplified_search",
		Description: "Rank marked candidates by amplitude-amplified probability over a candidate set",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"candidate_ids": map[string]interface{}{
					"type":        "array",
					"description": "Pattern identifiers forming the search space",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Restrict to marks in this category (empty matches any category)",
				},
				"iterations": map[string]interface{}{
					"type":        "integer",
					"description": "Explicit amplification rounds; 0 selects floor(pi/4*sqrt(N/M)), capped at 64",
					"default":     0,
					"minimum":     0,
					"maximum":     64,
				},
			},
			Required: []string{"candidate_ids"},
		},
	}
}

// weighAttentionTool returns the tool definition for weigh_attention
func weighAttentionTool() mcp.Tool {
	return mcp.Tool{
		Name:        "weigh_attention",
		Description: "Build an attention-weighted superposition over keys for a query, optionally sampling one outcome",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural language query",
				},
				"keys": map[string]interface{}{
					"type":        "array",
					"description": "Key strings to weigh against the query",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"measure": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, sample one outcome from the weighted distribution and record it",
					"default":     false,
				},
				"decoherence_rate": map[string]interface{}{
					"type":        "number",
					"description": "Gaussian noise scale applied before measurement (0 disables noise)",
					"default":     0.0,
					"minimum":     0.0,
				},
			},
			Required: []string{"query", "keys"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report store row counts, build mode, and loaded mark count",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
