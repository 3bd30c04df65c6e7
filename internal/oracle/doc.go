// Package oracle maintains the membership set of marked pattern
// identifiers and applies phase flips to amplitude vectors.
//
// Membership lookup hashes pattern identifiers with 64-bit FNV-1a and
// collapses the category dimension for O(1) checks; hash collisions are
// possible and accepted. The full mark records, category included, are
// retained for persistence.
//
// The marker is the one piece of process-wide mutable state in the engine,
// so it is an injected instance rather than a package-level singleton, and
// searches operate on an immutable Snapshot taken at search start: marks
// added mid-search are not observed by that search.
package oracle
