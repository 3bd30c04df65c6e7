// Package amplify ranks marked candidates with a classical simulation of
// amplitude amplification.
//
// A search initializes a uniform superposition over N candidate
// identifiers, then repeats k oracle-plus-diffusion rounds: the oracle
// phase-flips marked amplitudes and the diffusion operator inverts every
// amplitude about the mean, concentrating probability mass on marked
// entries. Marked candidates whose final probability exceeds the 2/N
// baseline are returned sorted by probability.
//
// This is an iterative re-ranking heuristic with O(N) cost per round, not
// hardware quantum search, and no asymptotic advantage is claimed.
// Degenerate inputs (N=0, M=0, M>=N) produce defined, non-error results
// so a batch scan never aborts because nothing matched.
package amplify
