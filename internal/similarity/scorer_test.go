package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/qpattern-mcp/internal/fingerprint"
	"github.com/dshills/qpattern-mcp/pkg/types"
)

const serializeHashSnippet = `package snippet

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

func SerializeAndHash(payload map[string]string) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
`

// Same operations as serializeHashSnippet, different names throughout.
const renamedHashSnippet = `package snippet

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

func DigestRecord(record map[string]string) (string, error) {
	encoded, err := json.Marshal(record)
	if err != nil {
		return "", err
	}
	digest := sha256.Sum256(encoded)
	return hex.EncodeToString(digest[:]), nil
}
`

const sortSnippet = `package snippet

func BubbleSort(items []int) []int {
	for i := 0; i < len(items); i++ {
		for j := 0; j < len(items)-i-1; j++ {
			if items[j] > items[j+1] {
				items[j], items[j+1] = items[j+1], items[j]
			}
		}
	}
	return items
}
`

func extract(t *testing.T, id, source string) *types.Fingerprint {
	t.Helper()
	fp, err := fingerprint.New().Extract(id, source)
	require.NoError(t, err)
	return fp
}

func TestScoreSemanticDuplicate(t *testing.T) {
	s := New()
	a := extract(t, "a", serializeHashSnippet)
	b := extract(t, "b", renamedHashSnippet)

	score := s.Score(a, b)
	assert.Greater(t, score, 0.7)
	assert.True(t, s.IsSemanticallySimilar(a, b))
}

func TestScoreUnrelatedShapes(t *testing.T) {
	s := New()
	a := extract(t, "a", serializeHashSnippet)
	b := extract(t, "b", sortSnippet)

	score := s.Score(a, b)
	assert.Less(t, score, 0.5)
	assert.False(t, s.IsSemanticallySimilar(a, b))
}

func TestScoreBounds(t *testing.T) {
	s := New()
	a := extract(t, "a", serializeHashSnippet)
	b := extract(t, "b", sortSnippet)

	for _, pair := range [][2]*types.Fingerprint{{a, a}, {a, b}, {b, b}} {
		score := s.Score(pair[0], pair[1])
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestScoreIdentity(t *testing.T) {
	s := New()
	a := extract(t, "a", serializeHashSnippet)
	assert.Equal(t, 1.0, s.Score(a, a))
}

func TestScoreSymmetric(t *testing.T) {
	s := New()
	a := extract(t, "a", serializeHashSnippet)
	b := extract(t, "b", sortSnippet)
	assert.InDelta(t, s.Score(a, b), s.Score(b, a), 1e-12)
}

func TestScoreNilFingerprint(t *testing.T) {
	s := New()
	a := extract(t, "a", serializeHashSnippet)
	assert.Equal(t, 0.0, s.Score(a, nil))
	assert.Equal(t, 0.0, s.Score(nil, nil))
}

func TestClassJaccardEmptyRules(t *testing.T) {
	// Both empty: excluded from the average
	_, ok := classJaccard(types.Multiset{}, types.Multiset{})
	assert.False(t, ok)

	// Nonempty against empty: standard Jaccard zero
	score, ok := classJaccard(types.Multiset{"if": 2}, types.Multiset{})
	assert.True(t, ok)
	assert.Equal(t, 0.0, score)

	// Identical multisets
	score, ok = classJaccard(types.Multiset{"if": 2, "for": 1}, types.Multiset{"if": 2, "for": 1})
	assert.True(t, ok)
	assert.Equal(t, 1.0, score)

	// Partial count overlap: min/max semantics
	score, ok = classJaccard(types.Multiset{"call": 2}, types.Multiset{"call": 4})
	assert.True(t, ok)
	assert.InDelta(t, 0.5, score, 1e-12)
}

func TestExplain(t *testing.T) {
	s := New()
	a := extract(t, "a", serializeHashSnippet)
	b := extract(t, "b", sortSnippet)

	explanation := s.Explain(a, b)
	assert.Contains(t, explanation, "control_flow=")
	assert.Contains(t, explanation, "score=")

	// Hash fast path has its own explanation
	assert.Contains(t, s.Explain(a, a), "identical structural hash")
}

func TestNewWithThreshold(t *testing.T) {
	assert.Equal(t, 0.9, NewWithThreshold(0.9).Threshold())
	// Out-of-range values fall back to the default
	assert.Equal(t, DefaultThreshold, NewWithThreshold(-1).Threshold())
	assert.Equal(t, DefaultThreshold, NewWithThreshold(1.5).Threshold())
}
