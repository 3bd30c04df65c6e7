package oracle

import (
	"hash/fnv"
	"sync"

	"github.com/dshills/qpattern-mcp/internal/amplitude"
	"github.com/dshills/qpattern-mcp/pkg/types"
)

// Marker maintains marked pattern identifiers. Safe for concurrent use;
// writers serialize on the internal mutex.
type Marker struct {
	mu     sync.RWMutex
	member map[uint64]struct{}
	marks  []types.OracleMark
}

// New creates an empty Marker.
func New() *Marker {
	return &Marker{
		member: make(map[uint64]struct{}),
	}
}

// Mark inserts a pattern identifier into the membership set under a
// category and records the full mark. Confidence outside (0,1] is clamped
// to 1.0.
func (m *Marker) Mark(patternID, category string, confidence float64) types.OracleMark {
	if confidence <= 0 || confidence > 1 {
		confidence = 1.0
	}
	mark := types.OracleMark{
		PatternID:  patternID,
		Category:   category,
		Phase:      types.DefaultMarkPhase,
		Confidence: confidence,
	}

	m.mu.Lock()
	m.member[idHash(patternID)] = struct{}{}
	m.marks = append(m.marks, mark)
	m.mu.Unlock()

	return mark
}

// IsMarked reports whether a pattern identifier is marked in any
// category. O(1); collisions in the hashed set are accepted.
func (m *Marker) IsMarked(patternID string) bool {
	m.mu.RLock()
	_, ok := m.member[idHash(patternID)]
	m.mu.RUnlock()
	return ok
}

// Marks returns a copy of all recorded marks, categories preserved.
func (m *Marker) Marks() []types.OracleMark {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.OracleMark, len(m.marks))
	copy(out, m.marks)
	return out
}

// Len returns the number of recorded marks.
func (m *Marker) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.marks)
}

// Snapshot captures the membership set for the given category at a point
// in time. An empty category captures membership across all categories.
func (m *Marker) Snapshot(category string) *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	member := make(map[uint64]struct{})
	if category == "" {
		for h := range m.member {
			member[h] = struct{}{}
		}
	} else {
		for _, mark := range m.marks {
			if mark.Category == category {
				member[idHash(mark.PatternID)] = struct{}{}
			}
		}
	}
	return &Snapshot{member: member}
}

// Snapshot is an immutable view of the membership set. Searches hold one
// snapshot for their whole run.
type Snapshot struct {
	member map[uint64]struct{}
}

// IsMarked reports membership within the snapshot.
func (s *Snapshot) IsMarked(patternID string) bool {
	_, ok := s.member[idHash(patternID)]
	return ok
}

// MarkedCount returns how many of the candidate identifiers are marked.
func (s *Snapshot) MarkedCount(candidateIDs []string) int {
	count := 0
	for _, id := range candidateIDs {
		if s.IsMarked(id) {
			count++
		}
	}
	return count
}

// ApplyPhaseFlip negates the amplitude at every index whose candidate
// identifier is marked, leaving others unchanged (the oracle step).
// Returns a fresh vector; the input is not modified.
func (s *Snapshot) ApplyPhaseFlip(v amplitude.Vector, candidateIDs []string) amplitude.Vector {
	out := v.Clone()
	for i, id := range candidateIDs {
		if i >= len(out) {
			break
		}
		if s.IsMarked(id) {
			out[i] = -out[i]
		}
	}
	return out
}

// idHash hashes a pattern identifier with 64-bit FNV-1a.
func idHash(patternID string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(patternID))
	return h.Sum64()
}
