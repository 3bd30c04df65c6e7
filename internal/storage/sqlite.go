package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dshills/qpattern-mcp/internal/amplitude"
	"github.com/dshills/qpattern-mcp/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Single writer; marking follows single-writer discipline anyway
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, nil
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStore) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, store: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx    *sql.Tx
	store *SQLiteStore
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// Pattern operations

func (s *SQLiteStore) savePatternWithQuerier(ctx context.Context, q querier, fp *types.Fingerprint) error {
	if fp == nil || fp.PatternID == "" {
		return fmt.Errorf("fingerprint requires a pattern id")
	}

	classes := fp.FeatureClasses()
	encoded := make([]string, len(classes))
	for i, class := range classes {
		data, err := json.Marshal(class)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", types.FeatureClassNames[i], err)
		}
		encoded[i] = string(data)
	}

	query := `
		INSERT INTO patterns (pattern_id, node_kinds, control_flow, operations, data_flow, structural_hash)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(pattern_id) DO UPDATE SET
			node_kinds = excluded.node_kinds,
			control_flow = excluded.control_flow,
			operations = excluded.operations,
			data_flow = excluded.data_flow,
			structural_hash = excluded.structural_hash
	`
	_, err := q.ExecContext(ctx, query,
		fp.PatternID, encoded[0], encoded[1], encoded[2], encoded[3], fp.StructuralHash)
	if err != nil {
		return fmt.Errorf("failed to save pattern: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SavePattern(ctx context.Context, fp *types.Fingerprint) error {
	return s.savePatternWithQuerier(ctx, s.db, fp)
}

func (s *SQLiteStore) getPatternWithQuerier(ctx context.Context, q querier, patternID string) (*types.Fingerprint, error) {
	query := `
		SELECT pattern_id, node_kinds, control_flow, operations, data_flow, structural_hash
		FROM patterns
		WHERE pattern_id = ?
	`
	fp := &types.Fingerprint{}
	var encoded [4]string
	err := q.QueryRowContext(ctx, query, patternID).Scan(
		&fp.PatternID, &encoded[0], &encoded[1], &encoded[2], &encoded[3], &fp.StructuralHash)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	targets := []*types.Multiset{&fp.NodeKinds, &fp.ControlFlow, &fp.Operations, &fp.DataFlow}
	for i, raw := range encoded {
		*targets[i] = make(types.Multiset)
		if err := json.Unmarshal([]byte(raw), targets[i]); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", types.FeatureClassNames[i], err)
		}
	}
	return fp, nil
}

func (s *SQLiteStore) GetPattern(ctx context.Context, patternID string) (*types.Fingerprint, error) {
	return s.getPatternWithQuerier(ctx, s.db, patternID)
}

// Vector operations

func (s *SQLiteStore) storeVectorWithQuerier(ctx context.Context, q querier, vectorID string, v amplitude.Vector) error {
	blob, err := amplitude.Encode(v)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO vectors (vector_id, data, dimension, coherence)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(vector_id) DO UPDATE SET
			data = excluded.data,
			dimension = excluded.dimension,
			coherence = excluded.coherence
	`
	_, err = q.ExecContext(ctx, query, vectorID, blob, len(v), amplitude.Coherence(v))
	if err != nil {
		return fmt.Errorf("failed to store vector: %w", err)
	}
	return nil
}

func (s *SQLiteStore) StoreVector(ctx context.Context, vectorID string, v amplitude.Vector) error {
	return s.storeVectorWithQuerier(ctx, s.db, vectorID, v)
}

func (s *SQLiteStore) fetchVectorWithQuerier(ctx context.Context, q querier, vectorID string) (amplitude.Vector, error) {
	var blob []byte
	err := q.QueryRowContext(ctx, "SELECT data FROM vectors WHERE vector_id = ?", vectorID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return amplitude.Decode(blob)
}

func (s *SQLiteStore) FetchVector(ctx context.Context, vectorID string) (amplitude.Vector, error) {
	return s.fetchVectorWithQuerier(ctx, s.db, vectorID)
}

// Mark operations

func (s *SQLiteStore) appendMarkWithQuerier(ctx context.Context, q querier, mark types.OracleMark) error {
	query := `
		INSERT INTO marks (pattern_id, category, phase, confidence)
		VALUES (?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query, mark.PatternID, mark.Category, mark.Phase, mark.Confidence)
	if err != nil {
		return fmt.Errorf("failed to append mark: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendMark(ctx context.Context, mark types.OracleMark) error {
	return s.appendMarkWithQuerier(ctx, s.db, mark)
}

func (s *SQLiteStore) listMarksWithQuerier(ctx context.Context, q querier, category string) ([]types.OracleMark, error) {
	query := "SELECT pattern_id, category, phase, confidence FROM marks"
	args := []interface{}{}
	if category != "" {
		query += " WHERE category = ?"
		args = append(args, category)
	}
	query += " ORDER BY id"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list marks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	marks := make([]types.OracleMark, 0)
	for rows.Next() {
		var mark types.OracleMark
		if err := rows.Scan(&mark.PatternID, &mark.Category, &mark.Phase, &mark.Confidence); err != nil {
			return nil, err
		}
		marks = append(marks, mark)
	}
	return marks, rows.Err()
}

func (s *SQLiteStore) ListMarks(ctx context.Context, category string) ([]types.OracleMark, error) {
	return s.listMarksWithQuerier(ctx, s.db, category)
}

// Measurement operations

func (s *SQLiteStore) appendMeasurementWithQuerier(ctx context.Context, q querier, rec types.MeasurementRecord) error {
	query := `
		INSERT INTO measurements (vector_id, basis, outcome_label, outcome_probability, decoherence_factor)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		rec.VectorID, rec.Basis, rec.OutcomeLabel, rec.OutcomeProbability, rec.DecoherenceFactor)
	if err != nil {
		return fmt.Errorf("failed to append measurement: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendMeasurement(ctx context.Context, rec types.MeasurementRecord) error {
	return s.appendMeasurementWithQuerier(ctx, s.db, rec)
}

func (s *SQLiteStore) listMeasurementsWithQuerier(ctx context.Context, q querier, vectorID string) ([]types.MeasurementRecord, error) {
	query := `
		SELECT vector_id, basis, outcome_label, outcome_probability, decoherence_factor
		FROM measurements
		WHERE vector_id = ?
		ORDER BY id
	`
	rows, err := q.QueryContext(ctx, query, vectorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list measurements: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]types.MeasurementRecord, 0)
	for rows.Next() {
		var rec types.MeasurementRecord
		if err := rows.Scan(&rec.VectorID, &rec.Basis, &rec.OutcomeLabel,
			&rec.OutcomeProbability, &rec.DecoherenceFactor); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) ListMeasurements(ctx context.Context, vectorID string) ([]types.MeasurementRecord, error) {
	return s.listMeasurementsWithQuerier(ctx, s.db, vectorID)
}

// Attention operations

func (s *SQLiteStore) appendAttentionWithQuerier(ctx context.Context, q querier, rec types.AttentionRecord) error {
	query := `
		INSERT INTO attention_weights (query_text, key_text, weight_real, weight_imag, entanglement)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		rec.Query, rec.Key, real(rec.Weight), imag(rec.Weight), rec.EntanglementScore)
	if err != nil {
		return fmt.Errorf("failed to append attention record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendAttention(ctx context.Context, rec types.AttentionRecord) error {
	return s.appendAttentionWithQuerier(ctx, s.db, rec)
}

// Status operations

func (s *SQLiteStore) statusWithQuerier(ctx context.Context, q querier) (*Status, error) {
	status := &Status{
		DriverName: DriverName,
		BuildMode:  BuildMode,
	}

	counts := []struct {
		table  string
		target *int
	}{
		{"patterns", &status.Patterns},
		{"vectors", &status.Vectors},
		{"marks", &status.Marks},
		{"measurements", &status.Measurements},
		{"attention_weights", &status.Attention},
	}
	for _, c := range counts {
		if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.target); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}
	return status, nil
}

func (s *SQLiteStore) Status(ctx context.Context) (*Status, error) {
	return s.statusWithQuerier(ctx, s.db)
}

// Transaction delegation

func (t *sqliteTx) SavePattern(ctx context.Context, fp *types.Fingerprint) error {
	return t.store.savePatternWithQuerier(ctx, t.tx, fp)
}

func (t *sqliteTx) GetPattern(ctx context.Context, patternID string) (*types.Fingerprint, error) {
	return t.store.getPatternWithQuerier(ctx, t.tx, patternID)
}

func (t *sqliteTx) StoreVector(ctx context.Context, vectorID string, v amplitude.Vector) error {
	return t.store.storeVectorWithQuerier(ctx, t.tx, vectorID, v)
}

func (t *sqliteTx) FetchVector(ctx context.Context, vectorID string) (amplitude.Vector, error) {
	return t.store.fetchVectorWithQuerier(ctx, t.tx, vectorID)
}

func (t *sqliteTx) AppendMark(ctx context.Context, mark types.OracleMark) error {
	return t.store.appendMarkWithQuerier(ctx, t.tx, mark)
}

func (t *sqliteTx) ListMarks(ctx context.Context, category string) ([]types.OracleMark, error) {
	return t.store.listMarksWithQuerier(ctx, t.tx, category)
}

func (t *sqliteTx) AppendMeasurement(ctx context.Context, rec types.MeasurementRecord) error {
	return t.store.appendMeasurementWithQuerier(ctx, t.tx, rec)
}

func (t *sqliteTx) ListMeasurements(ctx context.Context, vectorID string) ([]types.MeasurementRecord, error) {
	return t.store.listMeasurementsWithQuerier(ctx, t.tx, vectorID)
}

func (t *sqliteTx) AppendAttention(ctx context.Context, rec types.AttentionRecord) error {
	return t.store.appendAttentionWithQuerier(ctx, t.tx, rec)
}

func (t *sqliteTx) Status(ctx context.Context) (*Status, error) {
	return t.store.statusWithQuerier(ctx, t.tx)
}

func (t *sqliteTx) Close() error {
	return nil // The underlying connection is owned by the store
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	return nil, fmt.Errorf("nested transactions are not supported")
}
