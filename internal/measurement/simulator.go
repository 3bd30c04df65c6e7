package measurement

import (
	"fmt"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/dshills/qpattern-mcp/internal/amplitude"
	"github.com/dshills/qpattern-mcp/pkg/types"
)

// ComputationalBasis labels the default measurement basis.
const ComputationalBasis = "computational"

// Simulator collapses and perturbs amplitude vectors. Not safe for
// concurrent use: the random source is stateful.
type Simulator struct {
	rng *rand.Rand
	src rand.Source
}

// New creates a Simulator. A nil source seeds from the wall clock.
func New(src rand.Source) *Simulator {
	if src == nil {
		src = rand.NewSource(uint64(time.Now().UnixNano()))
	}
	return &Simulator{rng: rand.New(src), src: src}
}

// Measure draws a single outcome index from the vector's |amplitude|^2
// distribution and returns it with its probability. A zero or empty
// vector yields (-1, 0).
func (s *Simulator) Measure(v amplitude.Vector) (int, float64) {
	if len(v) == 0 {
		return -1, 0.0
	}
	probs := v.Probabilities()
	total := floats.Sum(probs)
	if total == 0 {
		return -1, 0.0
	}

	target := s.rng.Float64() * total
	cumulative := 0.0
	index := len(probs) - 1
	for i, p := range probs {
		cumulative += p
		if target < cumulative {
			index = i
			break
		}
	}
	return index, probs[index] / total
}

// MeasureWithDecoherence adds independent Gaussian noise to the real and
// imaginary parts of each amplitude, scaled by rate, renormalizes, and
// reports the coherence lost: max(0, coherence(v) - coherence(v')).
// A rate <= 0 returns the vector unchanged with factor 0.
func (s *Simulator) MeasureWithDecoherence(v amplitude.Vector, rate float64) (amplitude.Vector, float64) {
	if len(v) == 0 || rate <= 0 {
		return v.Clone(), 0.0
	}

	noise := distuv.Normal{Mu: 0, Sigma: rate, Src: s.src}
	perturbed := make(amplitude.Vector, len(v))
	for i, c := range v {
		perturbed[i] = complex(real(c)+noise.Rand(), imag(c)+noise.Rand())
	}
	perturbed = perturbed.Normalize()

	factor := amplitude.Coherence(v) - amplitude.Coherence(perturbed)
	if factor < 0 {
		factor = 0.0
	}
	return perturbed, factor
}

// Collapse deterministically projects the vector onto the given basis
// state. Out-of-range indices yield nil.
func (s *Simulator) Collapse(v amplitude.Vector, index int) amplitude.Vector {
	return amplitude.Basis(len(v), index)
}

// Record builds the append-only measurement record for one outcome.
func Record(vectorID string, index int, probability, decoherence float64) types.MeasurementRecord {
	return types.MeasurementRecord{
		VectorID:           vectorID,
		Basis:              ComputationalBasis,
		OutcomeLabel:       fmt.Sprintf("|%d>", index),
		OutcomeProbability: probability,
		DecoherenceFactor:  decoherence,
	}
}
