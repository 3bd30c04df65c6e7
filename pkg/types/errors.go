package types

import "errors"

// Domain errors shared across components
var (
	// ErrExtraction indicates an unparseable snippet. Soft: batch scans
	// skip the candidate and continue.
	ErrExtraction = errors.New("fingerprint extraction failed")

	// ErrEncoding indicates a vector that cannot be encoded (zero or
	// non-power-of-two dimension). Treated as a data-corruption signal.
	ErrEncoding = errors.New("amplitude encoding failed")

	// ErrDecoding indicates a buffer whose length disagrees with its
	// declared dimension. Treated as a data-corruption signal.
	ErrDecoding = errors.New("amplitude decoding failed")
)
