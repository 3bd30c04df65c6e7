package types

import "time"

// ScanStatus is the per-file outcome of a batch scan.
type ScanStatus string

const (
	// ScanMatched means the candidate scored above the similarity
	// threshold and was marked for amplified search.
	ScanMatched ScanStatus = "matched"
	// ScanSkippedUnparseable means the snippet could not be parsed and
	// was skipped without aborting the scan.
	ScanSkippedUnparseable ScanStatus = "skipped-unparseable"
	// ScanNoMatch means the candidate parsed but scored below threshold.
	ScanNoMatch ScanStatus = "no-match"
)

// ScanResult is one per-file entry in a batch scan report, ordered by
// amplified probability for matched entries.
type ScanResult struct {
	File        string
	PatternID   string
	Status      ScanStatus
	Confidence  float64
	Probability float64
	Explanation string
}

// ScanStats summarizes a batch scan.
type ScanStats struct {
	FilesScanned int
	FilesSkipped int
	Matched      int
	Marked       int
	Duration     time.Duration
}
