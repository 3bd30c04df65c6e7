package amplitude

import (
	"math"
	"math/cmplx"
)

// Vector is an ordered sequence of complex amplitudes over a candidate
// basis. The dimension never changes after creation.
type Vector []complex128

// Uniform returns the uniform superposition over n basis states: every
// amplitude is 1/sqrt(n). Returns nil for n <= 0.
func Uniform(n int) Vector {
	if n <= 0 {
		return nil
	}
	v := make(Vector, n)
	amp := complex(1.0/math.Sqrt(float64(n)), 0)
	for i := range v {
		v[i] = amp
	}
	return v
}

// Basis returns the classical basis vector with all probability mass on
// index. Returns nil if index is out of range.
func Basis(n, index int) Vector {
	if n <= 0 || index < 0 || index >= n {
		return nil
	}
	v := make(Vector, n)
	v[index] = 1
	return v
}

// Clone returns an independent copy of the vector.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Norm returns the Euclidean norm sqrt(sum |amplitude|^2).
func (v Vector) Norm() float64 {
	var sum float64
	for _, c := range v {
		sum += real(c)*real(c) + imag(c)*imag(c)
	}
	return math.Sqrt(sum)
}

// Normalize returns a unit-norm copy of the vector. The zero vector is
// returned unchanged, as a copy.
func (v Vector) Normalize() Vector {
	out := v.Clone()
	norm := v.Norm()
	if norm == 0 {
		return out
	}
	scale := complex(1.0/norm, 0)
	for i := range out {
		out[i] *= scale
	}
	return out
}

// Probabilities returns |amplitude_i|^2 for every basis state.
func (v Vector) Probabilities() []float64 {
	probs := make([]float64, len(v))
	for i, c := range v {
		m := cmplx.Abs(c)
		probs[i] = m * m
	}
	return probs
}

// IsZero reports whether every amplitude is exactly zero.
func (v Vector) IsZero() bool {
	for _, c := range v {
		if c != 0 {
			return false
		}
	}
	return true
}

// InnerProduct computes <a|b> with conjugation on a. Unequal dimensions
// yield 0 (sentinel for heuristic scoring paths, not an error).
func InnerProduct(a, b Vector) complex128 {
	if len(a) != len(b) {
		return 0
	}
	var sum complex128
	for i := range a {
		sum += cmplx.Conj(a[i]) * b[i]
	}
	return sum
}
