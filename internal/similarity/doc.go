// Package similarity scores pairs of structural fingerprints.
//
// Scoring is per-feature-class Jaccard overlap averaged over the classes
// that carry data, with a fast path returning 1.0 when the structural
// hashes match. Scores are symmetric and always in [0,1].
package similarity
