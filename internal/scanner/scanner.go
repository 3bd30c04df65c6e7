package scanner

import (
	"context"
	"crypto/sha256"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/qpattern-mcp/internal/amplify"
	"github.com/dshills/qpattern-mcp/internal/fingerprint"
	"github.com/dshills/qpattern-mcp/internal/oracle"
	"github.com/dshills/qpattern-mcp/internal/similarity"
	"github.com/dshills/qpattern-mcp/internal/storage"
	"github.com/dshills/qpattern-mcp/pkg/types"
)

// DefaultMarkCategory is the category candidates are marked under when a
// scan finds them semantically similar to the target.
const DefaultMarkCategory = "semantic_duplicate"

// defaultCacheSize bounds the fingerprint cache.
const defaultCacheSize = 1024

// CandidateSource is one snippet in a batch scan.
type CandidateSource struct {
	File   string
	Source string
}

// Config tunes a Scanner.
type Config struct {
	Workers      int     // concurrent extraction workers (default: NumCPU)
	Threshold    float64 // similarity threshold (default: 0.7)
	MarkCategory string  // category for scan marks (default: semantic_duplicate)
	CacheSize    int     // fingerprint cache entries (default: 1024)
}

// Report is the outcome of one batch scan, results ordered by amplified
// probability for matched entries.
type Report struct {
	TargetPatternID string
	Results         []types.ScanResult
	Stats           types.ScanStats
}

// Scanner runs batch scans against an injected marker and optional store.
type Scanner struct {
	extractor *fingerprint.Extractor
	scorer    *similarity.Scorer
	marker    *oracle.Marker
	search    *amplify.Search
	store     storage.Store // nil for in-memory scans
	cache     *lru.Cache[[32]byte, *types.Fingerprint]
	workers   int
	category  string
	log       zerolog.Logger
}

// New creates a Scanner. The store may be nil, in which case nothing is
// persisted.
func New(marker *oracle.Marker, store storage.Store, config *Config, log zerolog.Logger) *Scanner {
	if config == nil {
		config = &Config{}
	}
	workers := config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	category := config.MarkCategory
	if category == "" {
		category = DefaultMarkCategory
	}
	cacheSize := config.CacheSize
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	scorer := similarity.New()
	if config.Threshold > 0 {
		scorer = similarity.NewWithThreshold(config.Threshold)
	}

	// lru.New only fails for a non-positive size, which is guarded above.
	cache, err := lru.New[[32]byte, *types.Fingerprint](cacheSize)
	if err != nil {
		panic(fmt.Sprintf("failed to create fingerprint cache: %v", err))
	}

	return &Scanner{
		extractor: fingerprint.New(),
		scorer:    scorer,
		marker:    marker,
		search:    amplify.New(marker),
		store:     store,
		cache:     cache,
		workers:   workers,
		category:  category,
		log:       log,
	}
}

// candidateState is the per-candidate working record built during the
// parallel extraction phase.
type candidateState struct {
	source      CandidateSource
	patternID   string
	fp          *types.Fingerprint
	status      types.ScanStatus
	confidence  float64
	explanation string
	mark        *types.OracleMark
}

// Scan extracts fingerprints for the target and all candidates, scores
// each pair, marks qualifying candidates, runs amplified search over the
// candidate set, and returns the annotated, ordered report. An
// unparseable target is an error; unparseable candidates are skipped.
func (s *Scanner) Scan(ctx context.Context, targetSource string, candidates []CandidateSource) (*Report, error) {
	start := time.Now()

	targetID := "target-" + uuid.NewString()
	target, err := s.fingerprintSource(targetID, targetSource)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint target: %w", err)
	}

	patternIDs := assignPatternIDs(candidates)
	states := make([]*candidateState, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, candidate := range candidates {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			states[i] = s.evaluateCandidate(target, candidate, patternIDs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Amplified re-ranking over every successfully fingerprinted candidate.
	candidateIDs := make([]string, 0, len(states))
	for _, st := range states {
		if st.status != types.ScanSkippedUnparseable {
			candidateIDs = append(candidateIDs, st.patternID)
		}
	}
	ranked := s.search.Run(candidateIDs, s.category, 0)
	probabilities := make(map[string]types.SearchResult, len(ranked))
	for _, r := range ranked {
		probabilities[r.PatternID] = r
	}

	report := s.buildReport(targetID, states, probabilities, start)

	if err := s.persist(ctx, target, states); err != nil {
		return nil, fmt.Errorf("failed to persist scan: %w", err)
	}

	s.log.Debug().
		Int("candidates", len(candidates)).
		Int("matched", report.Stats.Matched).
		Int("skipped", report.Stats.FilesSkipped).
		Dur("duration", report.Stats.Duration).
		Msg("scan complete")

	return report, nil
}

// evaluateCandidate fingerprints and scores one candidate against the
// target, marking it when the score clears the threshold.
func (s *Scanner) evaluateCandidate(target *types.Fingerprint, candidate CandidateSource, patternID string) *candidateState {
	st := &candidateState{source: candidate, patternID: patternID}

	fp, err := s.fingerprintSource(st.patternID, candidate.Source)
	if err != nil {
		st.status = types.ScanSkippedUnparseable
		st.explanation = err.Error()
		s.log.Debug().Str("file", candidate.File).Err(err).Msg("skipping unparseable candidate")
		return st
	}
	st.fp = fp

	st.confidence = s.scorer.Score(target, fp)
	st.explanation = s.scorer.Explain(target, fp)
	if st.confidence > s.scorer.Threshold() {
		st.status = types.ScanMatched
		mark := s.marker.Mark(st.patternID, s.category, st.confidence)
		st.mark = &mark
	} else {
		st.status = types.ScanNoMatch
	}
	return st
}

// fingerprintSource extracts a fingerprint, consulting the digest-keyed
// cache first. Cached fingerprints are rebound to the caller's pattern id;
// the feature multisets are immutable and safely shared.
func (s *Scanner) fingerprintSource(patternID, source string) (*types.Fingerprint, error) {
	key := sha256.Sum256([]byte(source))
	if cached, ok := s.cache.Get(key); ok {
		rebound := *cached
		rebound.PatternID = patternID
		return &rebound, nil
	}

	fp, err := s.extractor.Extract(patternID, source)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, fp)
	return fp, nil
}

// assignPatternIDs derives one unique identifier per candidate: the file
// path when present, a fresh UUID for anonymous snippets. Repeated file
// paths get an ordinal suffix so every candidate keys its own pattern row
// and probability slot.
func assignPatternIDs(candidates []CandidateSource) []string {
	ids := make([]string, len(candidates))
	seen := make(map[string]int, len(candidates))
	for i, candidate := range candidates {
		if candidate.File == "" {
			ids[i] = uuid.NewString()
			continue
		}
		seen[candidate.File]++
		if n := seen[candidate.File]; n > 1 {
			ids[i] = fmt.Sprintf("%s#%d", candidate.File, n)
		} else {
			ids[i] = candidate.File
		}
	}
	return ids
}

// buildReport merges amplified probabilities into the per-candidate
// outcomes and orders them: matched by probability descending, then
// no-match, then skipped.
func (s *Scanner) buildReport(targetID string, states []*candidateState, probabilities map[string]types.SearchResult, start time.Time) *Report {
	results := make([]types.ScanResult, 0, len(states))
	stats := types.ScanStats{}

	for _, st := range states {
		result := types.ScanResult{
			File:        st.source.File,
			PatternID:   st.patternID,
			Status:      st.status,
			Confidence:  st.confidence,
			Explanation: st.explanation,
		}
		switch st.status {
		case types.ScanSkippedUnparseable:
			stats.FilesSkipped++
		case types.ScanMatched:
			stats.FilesScanned++
			stats.Matched++
			stats.Marked++
			if ranked, ok := probabilities[st.patternID]; ok {
				result.Probability = ranked.Probability
				result.Explanation = fmt.Sprintf("%s; %s", result.Explanation, ranked.Explanation)
			}
		default:
			stats.FilesScanned++
		}
		results = append(results, result)
	}

	statusRank := map[types.ScanStatus]int{
		types.ScanMatched:            0,
		types.ScanNoMatch:            1,
		types.ScanSkippedUnparseable: 2,
	}
	sort.SliceStable(results, func(i, j int) bool {
		if statusRank[results[i].Status] != statusRank[results[j].Status] {
			return statusRank[results[i].Status] < statusRank[results[j].Status]
		}
		return results[i].Probability > results[j].Probability
	})

	stats.Duration = time.Since(start)
	return &Report{
		TargetPatternID: targetID,
		Results:         results,
		Stats:           stats,
	}
}

// persist writes the target fingerprint, candidate fingerprints, and new
// marks in one transaction. Store failures are fatal to the scan.
func (s *Scanner) persist(ctx context.Context, target *types.Fingerprint, states []*candidateState) error {
	if s.store == nil {
		return nil
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.SavePattern(ctx, target); err != nil {
		return err
	}
	for _, st := range states {
		if st.fp == nil {
			continue
		}
		if err := tx.SavePattern(ctx, st.fp); err != nil {
			return err
		}
		if st.mark != nil {
			if err := tx.AppendMark(ctx, *st.mark); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}
