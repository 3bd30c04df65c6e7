package amplitude

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dshills/qpattern-mcp/pkg/types"
)

const (
	// headerSize is the byte width of the dimension header.
	headerSize = 4
	// entrySize is the byte width of one (real, imaginary) float64 pair.
	entrySize = 16
)

// Encode serializes a vector as a little-endian blob: a uint32 dimension
// header followed by (real, imaginary) float64 pairs. The dimension must be
// a nonzero power of two per the wire contract.
func Encode(v Vector) ([]byte, error) {
	dim := len(v)
	if dim == 0 {
		return nil, fmt.Errorf("%w: empty vector", types.ErrEncoding)
	}
	if !isPowerOfTwo(dim) {
		return nil, fmt.Errorf("%w: dimension %d is not a power of two", types.ErrEncoding, dim)
	}

	blob := make([]byte, headerSize+dim*entrySize)
	binary.LittleEndian.PutUint32(blob, uint32(dim))
	for i, c := range v {
		offset := headerSize + i*entrySize
		binary.LittleEndian.PutUint64(blob[offset:], math.Float64bits(real(c)))
		binary.LittleEndian.PutUint64(blob[offset+8:], math.Float64bits(imag(c)))
	}
	return blob, nil
}

// Decode is the inverse of Encode. It fails when the buffer length
// disagrees with the declared dimension.
func Decode(blob []byte) (Vector, error) {
	if len(blob) < headerSize {
		return nil, fmt.Errorf("%w: buffer shorter than header", types.ErrDecoding)
	}
	dim := int(binary.LittleEndian.Uint32(blob))
	if dim == 0 || !isPowerOfTwo(dim) {
		return nil, fmt.Errorf("%w: declared dimension %d is not a power of two", types.ErrDecoding, dim)
	}
	if want := headerSize + dim*entrySize; len(blob) != want {
		return nil, fmt.Errorf("%w: buffer length %d disagrees with declared dimension %d (want %d bytes)",
			types.ErrDecoding, len(blob), dim, want)
	}

	v := make(Vector, dim)
	for i := range v {
		offset := headerSize + i*entrySize
		re := math.Float64frombits(binary.LittleEndian.Uint64(blob[offset:]))
		im := math.Float64frombits(binary.LittleEndian.Uint64(blob[offset+8:]))
		v[i] = complex(re, im)
	}
	return v, nil
}

// Coherence measures how spread out the vector's probability mass is:
// Shannon entropy over nonzero per-basis probabilities normalized by
// log2(dimension). A uniform superposition scores 1.0; an all-zero or
// single-nonzero ("classical") vector scores 0.0.
func Coherence(v Vector) float64 {
	if len(v) <= 1 || v.IsZero() {
		return 0.0
	}

	probs := v.Normalize().Probabilities()
	nonzero := 0
	entropy := 0.0
	for _, p := range probs {
		if p <= 0 {
			continue
		}
		nonzero++
		entropy -= p * math.Log2(p)
	}
	if nonzero <= 1 {
		return 0.0
	}

	score := entropy / math.Log2(float64(len(v)))
	return clamp01(score)
}

// isPowerOfTwo reports whether n is a positive power of two.
func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
