// Package attention builds lexical-overlap-weighted amplitude vectors over
// a query and a set of keys.
//
// Each key's amplitude magnitude is the token-set Jaccard overlap with the
// query, its phase a deterministic key-derived angle in [0, 2pi), and the
// whole vector is renormalized to unit norm. Sampling from the resulting
// |amplitude|^2 distribution uses an injectable random source so tests can
// seed determinism without changing production defaults.
package attention
