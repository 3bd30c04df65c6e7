package amplitude

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/qpattern-mcp/pkg/types"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	v := Vector{
		complex(0.5, 0.25),
		complex(-0.125, 0.75),
		complex(0.0, -0.33),
		complex(0.1, 0.0),
	}

	blob, err := Encode(v)
	require.NoError(t, err)

	decoded, err := Decode(blob)
	require.NoError(t, err)
	require.Len(t, decoded, len(v))

	for i := range v {
		assert.InDelta(t, real(v[i]), real(decoded[i]), 1e-9)
		assert.InDelta(t, imag(v[i]), imag(decoded[i]), 1e-9)
	}
}

func TestEncodeBlobLayout(t *testing.T) {
	const dim = 16
	v := Uniform(dim)

	blob, err := Encode(v)
	require.NoError(t, err)
	assert.Len(t, blob, headerSize+dim*entrySize)

	decoded, err := Decode(blob)
	require.NoError(t, err)
	assert.Len(t, decoded, dim)
}

func TestEncodeRejectsBadDimensions(t *testing.T) {
	_, err := Encode(Vector{})
	assert.True(t, errors.Is(err, types.ErrEncoding))

	// 3 is not a power of two
	_, err = Encode(make(Vector, 3))
	assert.True(t, errors.Is(err, types.ErrEncoding))
}

func TestDecodeRejectsCorruptBuffers(t *testing.T) {
	// Too short for the header
	_, err := Decode([]byte{0x01})
	assert.True(t, errors.Is(err, types.ErrDecoding))

	// Valid header, truncated body
	blob, err := Encode(Uniform(4))
	require.NoError(t, err)
	_, err = Decode(blob[:len(blob)-8])
	assert.True(t, errors.Is(err, types.ErrDecoding))

	// Declared dimension not a power of two
	bad := append([]byte{0x03, 0x00, 0x00, 0x00}, make([]byte, 3*entrySize)...)
	_, err = Decode(bad)
	assert.True(t, errors.Is(err, types.ErrDecoding))
}

func TestCoherenceUniformIsOne(t *testing.T) {
	for _, dim := range []int{2, 4, 16, 64} {
		assert.InDelta(t, 1.0, Coherence(Uniform(dim)), 1e-9, "dimension %d", dim)
	}
}

func TestCoherenceClassicalIsZero(t *testing.T) {
	// Single-basis vector
	assert.Equal(t, 0.0, Coherence(Basis(16, 3)))

	// All-zero vector
	assert.Equal(t, 0.0, Coherence(make(Vector, 16)))

	// Unnormalized single-nonzero vector is still classical
	v := make(Vector, 8)
	v[5] = complex(3.7, -1.2)
	assert.Equal(t, 0.0, Coherence(v))
}

func TestCoherenceBounds(t *testing.T) {
	v := Vector{complex(0.9, 0), complex(0.3, 0.2), complex(0, 0.1), complex(0.05, 0)}
	c := Coherence(v)
	assert.GreaterOrEqual(t, c, 0.0)
	assert.LessOrEqual(t, c, 1.0)
	assert.Greater(t, c, 0.0) // multiple nonzero bases, so some spread
}

func TestNormalizePreservesInvariant(t *testing.T) {
	v := Vector{complex(2, 1), complex(-3, 0.5), complex(0, 4), complex(1, 1)}
	normalized := v.Normalize()

	var sum float64
	for _, p := range normalized.Probabilities() {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-6)

	// Original untouched (value semantics)
	assert.InDelta(t, 2.0, real(v[0]), 1e-12)
}

func TestNormalizeZeroVector(t *testing.T) {
	v := make(Vector, 4)
	assert.True(t, v.Normalize().IsZero())
}

func TestInnerProductDimensionMismatch(t *testing.T) {
	a := Uniform(4)
	b := Uniform(8)
	assert.Equal(t, complex128(0), InnerProduct(a, b))
}

func TestInnerProductSelfIsUnit(t *testing.T) {
	v := Uniform(16)
	assert.InDelta(t, 1.0, real(InnerProduct(v, v)), 1e-9)
	assert.InDelta(t, 0.0, imag(InnerProduct(v, v)), 1e-9)
}

func TestUniformAmplitudes(t *testing.T) {
	v := Uniform(100)
	require.Len(t, v, 100)
	assert.InDelta(t, 1.0/math.Sqrt(100), real(v[0]), 1e-12)
	assert.InDelta(t, 1.0, v.Norm(), 1e-9)
}
