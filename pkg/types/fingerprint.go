package types

import "sort"

// Multiset is a bag of feature labels with occurrence counts.
type Multiset map[string]int

// Add increments the count for a label.
func (m Multiset) Add(label string) {
	m[label]++
}

// Total returns the sum of all counts in the multiset.
func (m Multiset) Total() int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}

// Sorted returns the labels in lexicographic order.
// Used to make hashing and explanation output deterministic.
func (m Multiset) Sorted() []string {
	labels := make([]string, 0, len(m))
	for label := range m {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Clone returns an independent copy of the multiset.
func (m Multiset) Clone() Multiset {
	out := make(Multiset, len(m))
	for label, n := range m {
		out[label] = n
	}
	return out
}

// Fingerprint is the structural summary of a source snippet.
//
// It is immutable once built: the four feature multisets describe the shape
// of the syntax tree, and StructuralHash is a digest over their sorted
// contents, so token order and identifier naming do not affect it.
type Fingerprint struct {
	PatternID string

	NodeKinds   Multiset // every syntax node kind seen
	ControlFlow Multiset // branch / loop / select / defer constructs
	Operations  Multiset // calls, binary operators, comparisons
	DataFlow    Multiset // assignments, returns, channel sends

	// StructuralHash is a short hex digest over the sorted multisets.
	// Collision-tolerant identifier, not a cryptographic commitment.
	StructuralHash string
}

// FeatureClasses returns the four feature multisets in canonical order.
func (f *Fingerprint) FeatureClasses() []Multiset {
	return []Multiset{f.NodeKinds, f.ControlFlow, f.Operations, f.DataFlow}
}

// FeatureClassNames are the canonical names matching FeatureClasses order.
var FeatureClassNames = []string{"node_kinds", "control_flow", "operations", "data_flow"}
