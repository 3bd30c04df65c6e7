package types

// DefaultMarkPhase is the phase applied to marked amplitudes by the oracle.
const DefaultMarkPhase = -1.0

// OracleMark flags a pattern identifier as interesting within a category.
// One pattern may hold marks across several categories; the persisted record
// keeps the category even though membership lookup collapses it.
type OracleMark struct {
	PatternID  string
	Category   string
	Phase      float64
	Confidence float64
}

// SearchResult is a single ranked candidate from amplified search.
// Ephemeral: the search component never persists it.
type SearchResult struct {
	PatternID   string
	Probability float64 // |amplitude|^2 after amplification
	Confidence  float64 // similarity confidence, filled by the caller
	Explanation string
}

// AttentionRecord captures one query/key weighting produced by the
// attention weighter.
type AttentionRecord struct {
	Query             string
	Key               string
	Weight            complex128
	EntanglementScore float64
}

// MeasurementRecord is an append-only row describing one simulated
// measurement of an amplitude vector. A vector may generate many records
// over its lifetime.
type MeasurementRecord struct {
	VectorID           string
	Basis              string
	OutcomeLabel       string
	OutcomeProbability float64
	DecoherenceFactor  float64
}
