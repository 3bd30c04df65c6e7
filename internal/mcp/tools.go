package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/qpattern-mcp/internal/amplitude"
	"github.com/dshills/qpattern-mcp/internal/measurement"
	"github.com/dshills/qpattern-mcp/internal/scanner"
)

// MCP error codes
const (
	ErrorCodeInvalidParams     = -32602 // Invalid method parameters
	ErrorCodeInternalError     = -32603 // Internal JSON-RPC error
	ErrorCodeUnparseableTarget = -32001 // Target snippet could not be fingerprinted
	ErrorCodeEmptyQuery        = -32004 // Query parameter is empty
)

// handleScanPatterns handles the scan_patterns tool invocation
func (s *Server) handleScanPatterns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	targetSource, ok := args["target_source"].(string)
	if !ok || targetSource == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "target_source parameter is required", map[string]interface{}{
			"param":  "target_source",
			"reason": "missing or empty",
		})
	}

	rawCandidates, ok := args["candidates"].([]interface{})
	if !ok || len(rawCandidates) == 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "candidates parameter is required", map[string]interface{}{
			"param":  "candidates",
			"reason": "missing or empty",
		})
	}

	candidates := make([]scanner.CandidateSource, 0, len(rawCandidates))
	for i, raw := range rawCandidates {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid candidate entry", map[string]interface{}{
				"index":  i,
				"reason": "expected an object with file and source",
			})
		}
		source, ok := entry["source"].(string)
		if !ok || source == "" {
			return nil, newMCPError(ErrorCodeInvalidParams, "candidate source is required", map[string]interface{}{
				"index":  i,
				"reason": "missing or empty source",
			})
		}
		file, _ := entry["file"].(string)
		candidates = append(candidates, scanner.CandidateSource{File: file, Source: source})
	}

	report, err := s.scanner.Scan(ctx, targetSource, candidates)
	if err != nil {
		return nil, newMCPError(ErrorCodeUnparseableTarget, "scan failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results := make([]map[string]interface{}, 0, len(report.Results))
	for _, r := range report.Results {
		results = append(results, map[string]interface{}{
			"file":        r.File,
			"pattern_id":  r.PatternID,
			"status":      string(r.Status),
			"confidence":  r.Confidence,
			"probability": r.Probability,
			"explanation": r.Explanation,
		})
	}

	response := map[string]interface{}{
		"target_pattern_id": report.TargetPatternID,
		"results":           results,
		"statistics": map[string]interface{}{
			"files_scanned": report.Stats.FilesScanned,
			"files_skipped": report.Stats.FilesSkipped,
			"matched":       report.Stats.Matched,
			"marked":        report.Stats.Marked,
			"duration_ms":   report.Stats.Duration.Milliseconds(),
		},
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleMarkPattern handles the mark_pattern tool invocation
func (s *Server) handleMarkPattern(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	patternID, ok := args["pattern_id"].(string)
	if !ok || patternID == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "pattern_id parameter is required", map[string]interface{}{
			"param":  "pattern_id",
			"reason": "missing or empty",
		})
	}

	category := getStringDefault(args, "category", scanner.DefaultMarkCategory)
	confidence := getFloatDefault(args, "confidence", 1.0)

	mark := s.marker.Mark(patternID, category, confidence)
	if err := s.store.AppendMark(ctx, mark); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to persist mark", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"marked":      true,
		"pattern_id":  mark.PatternID,
		"category":    mark.Category,
		"phase":       mark.Phase,
		"confidence":  mark.Confidence,
		"total_marks": s.marker.Len(),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleAmplifiedSearch handles the amplified_search tool invocation
func (s *Server) handleAmplifiedSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	rawIDs, ok := args["candidate_ids"].([]interface{})
	if !ok || len(rawIDs) == 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "candidate_ids parameter is required", map[string]interface{}{
			"param":  "candidate_ids",
			"reason": "missing or empty",
		})
	}
	candidateIDs := make([]string, 0, len(rawIDs))
	for i, raw := range rawIDs {
		id, ok := raw.(string)
		if !ok || id == "" {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid candidate id", map[string]interface{}{
				"index":  i,
				"reason": "expected a non-empty string",
			})
		}
		candidateIDs = append(candidateIDs, id)
	}

	category := getStringDefault(args, "category", "")
	iterations := getIntDefault(args, "iterations", 0)

	ranked := s.search.Run(candidateIDs, category, iterations)

	results := make([]map[string]interface{}, 0, len(ranked))
	for _, r := range ranked {
		results = append(results, map[string]interface{}{
			"pattern_id":  r.PatternID,
			"probability": r.Probability,
			"explanation": r.Explanation,
		})
	}

	response := map[string]interface{}{
		"candidates": len(candidateIDs),
		"matches":    len(ranked),
		"results":    results,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleWeighAttention handles the weigh_attention tool invocation
func (s *Server) handleWeighAttention(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	rawKeys, ok := args["keys"].([]interface{})
	if !ok || len(rawKeys) == 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "keys parameter is required", map[string]interface{}{
			"param":  "keys",
			"reason": "missing or empty",
		})
	}
	keys := make([]string, 0, len(rawKeys))
	for i, raw := range rawKeys {
		key, ok := raw.(string)
		if !ok || key == "" {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid key", map[string]interface{}{
				"index":  i,
				"reason": "expected a non-empty string",
			})
		}
		keys = append(keys, key)
	}

	measure := getBoolDefault(args, "measure", false)
	decoherenceRate := getFloatDefault(args, "decoherence_rate", 0.0)

	s.rngMu.Lock()
	records := s.weighter.Records(query, keys)
	vec := make(amplitude.Vector, len(records))
	for i, r := range records {
		vec[i] = r.Weight
	}

	var measured map[string]interface{}
	if measure {
		perturbed, factor := s.simulator.MeasureWithDecoherence(vec, decoherenceRate)
		index, probability := s.simulator.Measure(perturbed)
		s.rngMu.Unlock()

		vectorID := "attention-" + uuid.NewString()
		record := measurement.Record(vectorID, index, probability, factor)
		if err := s.store.AppendMeasurement(ctx, record); err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to persist measurement", map[string]interface{}{
				"error": err.Error(),
			})
		}

		measured = map[string]interface{}{
			"vector_id":          vectorID,
			"outcome_index":      index,
			"outcome_label":      record.OutcomeLabel,
			"probability":        probability,
			"decoherence_factor": factor,
		}
		if index >= 0 && index < len(keys) {
			measured["key"] = keys[index]
		}
	} else {
		s.rngMu.Unlock()
	}

	weights := make([]map[string]interface{}, 0, len(records))
	for _, r := range records {
		if err := s.store.AppendAttention(ctx, r); err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to persist attention record", map[string]interface{}{
				"error": err.Error(),
			})
		}
		weights = append(weights, map[string]interface{}{
			"key":          r.Key,
			"weight_real":  real(r.Weight),
			"weight_imag":  imag(r.Weight),
			"probability":  real(r.Weight)*real(r.Weight) + imag(r.Weight)*imag(r.Weight),
			"entanglement": r.EntanglementScore,
		})
	}

	response := map[string]interface{}{
		"query":   query,
		"weights": weights,
	}
	if measured != nil {
		response["measurement"] = measured
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.store.Status(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"server": map[string]interface{}{
			"name":       ServerName,
			"version":    ServerVersion,
			"driver":     status.DriverName,
			"build_mode": status.BuildMode,
		},
		"statistics": map[string]interface{}{
			"patterns":     status.Patterns,
			"vectors":      status.Vectors,
			"marks":        status.Marks,
			"measurements": status.Measurements,
			"attention":    status.Attention,
			"marks_loaded": s.marker.Len(),
		},
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getFloatDefault extracts a float parameter with a default value
func getFloatDefault(args map[string]interface{}, key string, defaultValue float64) float64 {
	if val, ok := args[key].(float64); ok {
		return val
	}
	if val, ok := args[key].(int); ok {
		return float64(val)
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
