package attention

import (
	"hash/fnv"
	"math"
	"math/cmplx"
	"strings"
	"time"
	"unicode"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"

	"github.com/dshills/qpattern-mcp/internal/amplitude"
	"github.com/dshills/qpattern-mcp/pkg/types"
)

// Weighter builds and samples attention-weighted amplitude vectors.
// Not safe for concurrent use: the random source is stateful.
type Weighter struct {
	rng *rand.Rand
}

// New creates a Weighter. A nil source seeds from the wall clock.
func New(src rand.Source) *Weighter {
	if src == nil {
		src = rand.NewSource(uint64(time.Now().UnixNano()))
	}
	return &Weighter{rng: rand.New(src)}
}

// Weigh builds the amplitude vector over keys for a query: uniform
// superposition scaled per key by token-set Jaccard overlap, rotated by a
// key-derived phase, renormalized to unit norm. When no key overlaps the
// query at all the uniform superposition is returned, since a zero vector
// cannot be normalized.
func (w *Weighter) Weigh(query string, keys []string) amplitude.Vector {
	n := len(keys)
	if n == 0 {
		return nil
	}

	queryTokens := tokenize(query)
	base := 1.0 / math.Sqrt(float64(n))

	v := make(amplitude.Vector, n)
	for i, key := range keys {
		magnitude := base * tokenOverlap(queryTokens, tokenize(key))
		v[i] = complex(magnitude, 0) * cmplx.Exp(complex(0, phaseAngle(key)))
	}
	if v.IsZero() {
		return amplitude.Uniform(n)
	}
	return v.Normalize()
}

// Measure draws n stochastic samples of key indices from the vector's
// |amplitude|^2 distribution.
func (w *Weighter) Measure(v amplitude.Vector, n int) []int {
	if len(v) == 0 || n <= 0 {
		return nil
	}

	probs := v.Probabilities()
	total := floats.Sum(probs)
	if total == 0 {
		return nil
	}

	samples := make([]int, n)
	for s := range samples {
		target := w.rng.Float64() * total
		cumulative := 0.0
		index := len(probs) - 1
		for i, p := range probs {
			cumulative += p
			if target < cumulative {
				index = i
				break
			}
		}
		samples[s] = index
	}
	return samples
}

// Records weighs the query against the keys and builds one attention
// record per key, carrying the complex weight and the pairwise
// entanglement between the weighted vector and that key's basis vector.
func (w *Weighter) Records(query string, keys []string) []types.AttentionRecord {
	v := w.Weigh(query, keys)
	records := make([]types.AttentionRecord, len(keys))
	for i, key := range keys {
		records[i] = types.AttentionRecord{
			Query:             query,
			Key:               key,
			Weight:            v[i],
			EntanglementScore: Entanglement(v, amplitude.Basis(len(keys), i)),
		}
	}
	return records
}

// Entanglement scores the correlation between two equal-dimension vectors
// as 1 - 2*abs(|<a,b>| - 0.5), peaking at 1.0 when the inner-product magnitude
// sits at 0.5 (maximal mixing) and falling to 0.0 at the orthogonal and
// parallel extremes. Unequal dimensions yield the 0.0 sentinel.
func Entanglement(a, b amplitude.Vector) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0.0
	}
	overlap := cmplx.Abs(amplitude.InnerProduct(a, b))
	score := 1.0 - 2.0*math.Abs(overlap-0.5)
	if score < 0 {
		return 0.0
	}
	if score > 1 {
		return 1.0
	}
	return score
}

// tokenize lowercases and splits on non-alphanumeric runes, returning the
// token set.
func tokenize(text string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		tokens[f] = struct{}{}
	}
	return tokens
}

// tokenOverlap computes Jaccard overlap between two token sets.
func tokenOverlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	intersection := 0
	for token := range a {
		if _, ok := b[token]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// phaseAngle derives a deterministic angle in [0, 2pi) from a key.
func phaseAngle(key string) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	const resolution = 1 << 20
	return 2 * math.Pi * float64(h.Sum64()%resolution) / resolution
}
