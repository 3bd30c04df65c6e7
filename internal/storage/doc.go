// Package storage persists fingerprints, encoded amplitude vectors, oracle
// marks, and measurement/attention records in SQLite.
//
// The package is a thin facade: vectors pass through the amplitude codec
// on the way in and out, and the round-trip contract (decode(encode(v)) ==
// v within 1e-9) is the only algorithmic content here. Marks,
// measurements, and attention weights are append-only tables.
//
// Two build modes select the SQLite driver: the default pure-Go build uses
// modernc.org/sqlite, the cgo build (tag sqlite_vec) uses mattn/go-sqlite3.
package storage
