package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cloneTarget = `
func join(parts []string) string {
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(p)
	}
	return sb.String()
}
`

const cloneRenamed = `
func concat(segments []string) string {
	var out strings.Builder
	for _, seg := range segments {
		out.WriteString(seg)
	}
	return out.String()
}
`

const cloneUnrelated = `
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.store.Close() })
	return s
}

func toolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &decoded))
	return decoded
}

func TestNewServerComponents(t *testing.T) {
	s := newTestServer(t)
	assert.NotNil(t, s.store)
	assert.NotNil(t, s.scanner)
	assert.NotNil(t, s.marker)
	assert.NotNil(t, s.search)
	assert.NotNil(t, s.weighter)
	assert.NotNil(t, s.simulator)
}

func TestMarkPatternToolPersistsAndRehydrates(t *testing.T) {
	dir := t.TempDir()
	s, err := NewServer(dir, zerolog.Nop())
	require.NoError(t, err)

	result, err := s.handleMarkPattern(context.Background(), toolRequest("mark_pattern", map[string]interface{}{
		"pattern_id": "pkg/foo.go",
		"category":   "refactor_candidate",
		"confidence": 0.8,
	}))
	require.NoError(t, err)

	response := resultJSON(t, result)
	assert.Equal(t, true, response["marked"])
	assert.Equal(t, "refactor_candidate", response["category"])
	assert.InDelta(t, 0.8, response["confidence"].(float64), 1e-12)
	assert.InDelta(t, -1.0, response["phase"].(float64), 1e-12)

	require.NoError(t, s.store.Close())

	// A fresh server over the same database sees the persisted mark.
	s2, err := NewServer(dir, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s2.store.Close() })
	assert.True(t, s2.marker.IsMarked("pkg/foo.go"))
	assert.Equal(t, 1, s2.marker.Len())
}

func TestMarkPatternToolRequiresPatternID(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleMarkPattern(context.Background(), toolRequest("mark_pattern", map[string]interface{}{}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestScanPatternsTool(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleScanPatterns(context.Background(), toolRequest("scan_patterns", map[string]interface{}{
		"target_source": cloneTarget,
		"candidates": []interface{}{
			map[string]interface{}{"file": "clone.go", "source": cloneRenamed},
			map[string]interface{}{"file": "max.go", "source": cloneUnrelated},
		},
	}))
	require.NoError(t, err)

	response := resultJSON(t, result)
	assert.NotEmpty(t, response["target_pattern_id"])

	results := response["results"].([]interface{})
	require.Len(t, results, 2)
	first := results[0].(map[string]interface{})
	assert.Equal(t, "clone.go", first["file"])
	assert.Equal(t, "matched", first["status"])

	stats := response["statistics"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["matched"])
	assert.Equal(t, float64(2), stats["files_scanned"])
}

func TestScanPatternsToolUnparseableTarget(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleScanPatterns(context.Background(), toolRequest("scan_patterns", map[string]interface{}{
		"target_source": "@@ not go @@",
		"candidates": []interface{}{
			map[string]interface{}{"source": cloneUnrelated},
		},
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeUnparseableTarget, mcpErr.Code)
}

func TestAmplifiedSearchTool(t *testing.T) {
	s := newTestServer(t)
	s.marker.Mark("p3", "semantic_duplicate", 1.0)

	candidateIDs := make([]interface{}, 0, 10)
	for _, id := range []string{"p0", "p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8", "p9"} {
		candidateIDs = append(candidateIDs, id)
	}

	result, err := s.handleAmplifiedSearch(context.Background(), toolRequest("amplified_search", map[string]interface{}{
		"candidate_ids": candidateIDs,
	}))
	require.NoError(t, err)

	response := resultJSON(t, result)
	assert.Equal(t, float64(10), response["candidates"])
	assert.Equal(t, float64(1), response["matches"])

	results := response["results"].([]interface{})
	require.Len(t, results, 1)
	top := results[0].(map[string]interface{})
	assert.Equal(t, "p3", top["pattern_id"])
	assert.Greater(t, top["probability"].(float64), 0.2, "amplified probability must exceed the 2/N baseline")
}

func TestAmplifiedSearchToolNoMarks(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleAmplifiedSearch(context.Background(), toolRequest("amplified_search", map[string]interface{}{
		"candidate_ids": []interface{}{"a", "b"},
	}))
	require.NoError(t, err)

	response := resultJSON(t, result)
	assert.Equal(t, float64(0), response["matches"])
}

func TestWeighAttentionTool(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleWeighAttention(ctx, toolRequest("weigh_attention", map[string]interface{}{
		"query":   "find error handling",
		"keys":    []interface{}{"error module", "database driver", "render loop"},
		"measure": true,
	}))
	require.NoError(t, err)

	response := resultJSON(t, result)
	weights := response["weights"].([]interface{})
	require.Len(t, weights, 3)

	total := 0.0
	for _, w := range weights {
		entry := w.(map[string]interface{})
		total += entry["probability"].(float64)
	}
	assert.InDelta(t, 1.0, total, 1e-9, "weighted probabilities must sum to one")

	measurement := response["measurement"].(map[string]interface{})
	assert.NotEmpty(t, measurement["outcome_label"])
	assert.Equal(t, "error module", measurement["key"], "only one key overlaps the query")

	status, err := s.store.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, status.Attention)
	assert.Equal(t, 1, status.Measurements)
}

func TestWeighAttentionToolRequiresQuery(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleWeighAttention(context.Background(), toolRequest("weigh_attention", map[string]interface{}{
		"keys": []interface{}{"a"},
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeEmptyQuery, mcpErr.Code)
}

func TestGetStatusTool(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleGetStatus(context.Background(), toolRequest("get_status", nil))
	require.NoError(t, err)

	response := resultJSON(t, result)
	serverInfo := response["server"].(map[string]interface{})
	assert.Equal(t, ServerName, serverInfo["name"])
	assert.NotEmpty(t, serverInfo["driver"])

	stats := response["statistics"].(map[string]interface{})
	assert.Equal(t, float64(0), stats["patterns"])
	assert.Equal(t, float64(0), stats["marks"])
}

func TestParamHelpers(t *testing.T) {
	args := map[string]interface{}{
		"flag":  true,
		"count": float64(7),
		"rate":  0.25,
		"name":  "x",
	}
	assert.True(t, getBoolDefault(args, "flag", false))
	assert.False(t, getBoolDefault(args, "missing", false))
	assert.Equal(t, 7, getIntDefault(args, "count", 1))
	assert.Equal(t, 1, getIntDefault(args, "missing", 1))
	assert.InDelta(t, 0.25, getFloatDefault(args, "rate", 1.0), 1e-12)
	assert.InDelta(t, 1.0, getFloatDefault(args, "missing", 1.0), 1e-12)
	assert.Equal(t, "x", getStringDefault(args, "name", "d"))
	assert.Equal(t, "d", getStringDefault(args, "missing", "d"))
}
