package amplify

import (
	"fmt"
	"math"
	"sort"

	"github.com/dshills/qpattern-mcp/internal/amplitude"
	"github.com/dshills/qpattern-mcp/internal/oracle"
	"github.com/dshills/qpattern-mcp/pkg/types"
)

// DefaultMaxIterations caps the oracle+diffusion rounds regardless of the
// pi/4*sqrt(N/M) estimate. The estimate was only validated around N=100;
// the cap keeps very large scans bounded.
const DefaultMaxIterations = 64

// baselineFactor sets the selection threshold at baselineFactor/N.
const baselineFactor = 2.0

// Search runs amplitude-amplification ranking over candidate sets using
// an injected oracle marker.
type Search struct {
	marker        *oracle.Marker
	maxIterations int
}

// New creates a Search bound to a marker instance.
func New(marker *oracle.Marker) *Search {
	return &Search{
		marker:        marker,
		maxIterations: DefaultMaxIterations,
	}
}

// Run ranks the candidates marked under category (empty = any category)
// by amplified probability. iterations <= 0 selects the
// floor(pi/4*sqrt(N/M)) estimate. Degenerate inputs return defined
// results: empty slice for N=0 or M=0, uniform baseline for M>=N.
func (s *Search) Run(candidateIDs []string, category string, iterations int) []types.SearchResult {
	n := len(candidateIDs)
	if n == 0 {
		return []types.SearchResult{}
	}

	// Searches operate on a membership snapshot: marks added mid-search
	// are not observed.
	snap := s.marker.Snapshot(category)
	m := snap.MarkedCount(candidateIDs)
	if m == 0 {
		return []types.SearchResult{}
	}

	k := s.iterationCount(n, m, iterations)

	vec := amplitude.Uniform(n)
	for i := 0; i < k; i++ {
		vec = snap.ApplyPhaseFlip(vec, candidateIDs)
		vec = diffuse(vec)
	}

	probs := vec.Probabilities()
	explanation := fmt.Sprintf("amplified over %d iterations (N=%d, M=%d)", k, n, m)

	// With k=0 every candidate sits at the uniform baseline; the
	// threshold would reject everything, so marked entries are returned
	// at baseline instead.
	threshold := baselineFactor / float64(n)
	results := make([]types.SearchResult, 0, m)
	for i, id := range candidateIDs {
		if !snap.IsMarked(id) {
			continue
		}
		if k > 0 && probs[i] <= threshold {
			continue
		}
		results = append(results, types.SearchResult{
			PatternID:   id,
			Probability: probs[i],
			Explanation: explanation,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Probability > results[j].Probability
	})
	return results
}

// iterationCount resolves the number of rounds: M>=N forces zero even
// when an explicit count was supplied (the sqrt argument would be <=1
// and diffusion over an all-marked set cannot redistribute anything),
// otherwise an explicit positive count wins and the fallback is
// floor(pi/4*sqrt(N/M)), both capped at maxIterations.
func (s *Search) iterationCount(n, m, explicit int) int {
	if m >= n {
		return 0
	}
	if explicit > 0 {
		if explicit > s.maxIterations {
			return s.maxIterations
		}
		return explicit
	}
	k := int(math.Floor(math.Pi / 4.0 * math.Sqrt(float64(n)/float64(m))))
	if k > s.maxIterations {
		return s.maxIterations
	}
	return k
}

// diffuse applies inversion about the mean: each amplitude becomes
// 2*mean - amplitude. Unitary, so the normalization invariant holds.
func diffuse(v amplitude.Vector) amplitude.Vector {
	var sum complex128
	for _, c := range v {
		sum += c
	}
	mean := sum / complex(float64(len(v)), 0)

	out := make(amplitude.Vector, len(v))
	for i, c := range v {
		out[i] = 2*mean - c
	}
	return out
}
