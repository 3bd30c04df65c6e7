// Package amplitude provides the complex-valued amplitude vector type, its
// fixed binary wire codec, and the entropy-derived coherence measure.
//
// Vectors are transient values: every transforming operation returns a fresh
// copy so no aliasing exists between pipeline stages. After any transforming
// operation the squared magnitudes sum to 1 within 1e-6, except for the
// explicit zero vector.
//
// # Wire Format
//
// Encode writes a little-endian uint32 dimension header followed by each
// entry as two float64 values (real, imaginary). Decode is the exact
// inverse and fails when the buffer length disagrees with the declared
// dimension. The round trip is exact to within 1e-9 for any finite vector.
//
// # Coherence
//
// Coherence is the Shannon entropy of the per-basis probability
// distribution normalized by log2(dimension): 1.0 for a uniform
// superposition, 0.0 for a classical (single-basis or all-zero) vector.
package amplitude
