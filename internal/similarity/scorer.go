package similarity

import (
	"fmt"
	"strings"

	"github.com/dshills/qpattern-mcp/pkg/types"
)

// DefaultThreshold is the score above which two fingerprints are
// considered semantically similar.
const DefaultThreshold = 0.7

// Scorer compares structural fingerprints.
type Scorer struct {
	threshold float64
}

// New creates a Scorer with the default similarity threshold.
func New() *Scorer {
	return &Scorer{threshold: DefaultThreshold}
}

// NewWithThreshold creates a Scorer with a custom threshold in (0,1).
func NewWithThreshold(threshold float64) *Scorer {
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultThreshold
	}
	return &Scorer{threshold: threshold}
}

// Threshold returns the configured similarity threshold.
func (s *Scorer) Threshold() float64 {
	return s.threshold
}

// Score returns the similarity confidence in [0,1] for a pair of
// fingerprints. Identical structural hashes short-circuit to 1.0;
// otherwise the score is the mean per-class Jaccard overlap across the
// feature classes where at least one side has data.
func (s *Scorer) Score(a, b *types.Fingerprint) float64 {
	if a == nil || b == nil {
		return 0.0
	}
	if a.StructuralHash != "" && a.StructuralHash == b.StructuralHash {
		return 1.0
	}

	sum := 0.0
	classes := 0
	aClasses := a.FeatureClasses()
	bClasses := b.FeatureClasses()
	for i := range aClasses {
		overlap, ok := classJaccard(aClasses[i], bClasses[i])
		if !ok {
			continue
		}
		sum += overlap
		classes++
	}
	if classes == 0 {
		return 0.0
	}
	return sum / float64(classes)
}

// IsSemanticallySimilar reports whether the pair scores above threshold.
func (s *Scorer) IsSemanticallySimilar(a, b *types.Fingerprint) bool {
	return s.Score(a, b) > s.threshold
}

// Explain returns a short human-readable per-class overlap summary.
func (s *Scorer) Explain(a, b *types.Fingerprint) string {
	if a == nil || b == nil {
		return "no fingerprint to compare"
	}
	if a.StructuralHash != "" && a.StructuralHash == b.StructuralHash {
		return fmt.Sprintf("identical structural hash %s", a.StructuralHash)
	}

	parts := make([]string, 0, len(types.FeatureClassNames)+1)
	aClasses := a.FeatureClasses()
	bClasses := b.FeatureClasses()
	for i := range aClasses {
		overlap, ok := classJaccard(aClasses[i], bClasses[i])
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%.2f", types.FeatureClassNames[i], overlap))
	}
	if len(parts) == 0 {
		return "no structural features on either side"
	}
	parts = append(parts, fmt.Sprintf("score=%.2f", s.Score(a, b)))
	return strings.Join(parts, " ")
}

// classJaccard computes multiset Jaccard overlap for one feature class:
// sum of per-label minimum counts over sum of per-label maximum counts.
// When both sides are empty the class carries no signal and is excluded
// from the average (ok=false); nonempty against empty scores 0.0 per
// standard Jaccard.
func classJaccard(a, b types.Multiset) (score float64, ok bool) {
	if len(a) == 0 && len(b) == 0 {
		return 0.0, false
	}

	intersection := 0
	union := 0
	for label, na := range a {
		nb := b[label]
		intersection += min(na, nb)
		union += max(na, nb)
	}
	for label, nb := range b {
		if _, seen := a[label]; !seen {
			union += nb
		}
	}
	if union == 0 {
		return 0.0, false
	}
	return float64(intersection) / float64(union), true
}
