// Package types provides shared type definitions for the QPattern MCP server.
//
// This package defines the domain types passed between the fingerprinting,
// scoring, oracle-marking, and amplified-search components, along with the
// sentinel errors callers branch on.
//
// # Core Types
//
// Fingerprint is the structural summary extracted from a source snippet:
//
//	fp := &types.Fingerprint{
//	    PatternID:      "pattern-42",
//	    NodeKinds:      types.Multiset{"FuncDecl": 1, "BlockStmt": 1},
//	    ControlFlow:    types.Multiset{"if": 2},
//	    Operations:     types.Multiset{"call": 3},
//	    DataFlow:       types.Multiset{"return": 1},
//	    StructuralHash: "9f3a1c...",
//	}
//
// OracleMark flags a pattern identifier as interesting for amplified search.
// SearchResult carries the amplified probability and similarity confidence
// for a single ranked candidate. MeasurementRecord and AttentionRecord are
// append-only rows produced by the measurement simulator and the attention
// weighter.
//
// # Error Handling
//
// Parse failures are soft: extraction returns an error wrapping
// ErrExtraction and batch scans skip the offending snippet. Codec failures
// wrap ErrEncoding or ErrDecoding and signal data corruption; they are
// surfaced, never retried.
package types
