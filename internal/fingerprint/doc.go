// Package fingerprint extracts structural fingerprints from Go source
// snippets using AST parsing.
//
// A fingerprint reduces a snippet's syntax tree to four feature multisets
// (node kinds, control flow, operations, data flow) plus a deterministic
// structural hash over their sorted contents. Because the hash is computed
// over sorted multisets it identifies semantic shape: renaming identifiers
// or reordering declarations does not change it.
//
// # Snippet Parsing
//
// Snippets rarely arrive as complete files, so extraction tries three
// parse forms in order: the text as-is, the text under a synthetic package
// clause, and the text wrapped in a function body. If none parse, Extract
// returns an error wrapping types.ErrExtraction; callers running a batch
// scan recover by skipping the snippet.
package fingerprint
