// Package scanner composes the full scan pipeline: fingerprint extraction,
// pairwise similarity scoring, oracle marking, and amplified re-ranking.
//
// Extraction and scoring across candidates are embarrassingly parallel and
// run on a bounded errgroup worker pool. Fingerprints are cached by source
// digest so repeated scans of unchanged snippets skip the parser.
// Unparseable candidates are skipped and reported, never fatal; only an
// unreachable persistence store aborts a scan.
package scanner
