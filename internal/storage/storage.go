package storage

import (
	"context"

	"github.com/dshills/qpattern-mcp/internal/amplitude"
	"github.com/dshills/qpattern-mcp/pkg/types"
)

// Store defines the interface for persisting pattern-search state.
type Store interface {
	// Fingerprint operations
	SavePattern(ctx context.Context, fp *types.Fingerprint) error
	GetPattern(ctx context.Context, patternID string) (*types.Fingerprint, error)

	// Vector operations: encode/decode through the amplitude codec
	StoreVector(ctx context.Context, vectorID string, v amplitude.Vector) error
	FetchVector(ctx context.Context, vectorID string) (amplitude.Vector, error)

	// Mark operations (append-only)
	AppendMark(ctx context.Context, mark types.OracleMark) error
	ListMarks(ctx context.Context, category string) ([]types.OracleMark, error)

	// Measurement operations (append-only)
	AppendMeasurement(ctx context.Context, rec types.MeasurementRecord) error
	ListMeasurements(ctx context.Context, vectorID string) ([]types.MeasurementRecord, error)

	// Attention operations (append-only)
	AppendAttention(ctx context.Context, rec types.AttentionRecord) error

	// Status operations
	Status(ctx context.Context) (*Status, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Store // Embed Store interface for transaction operations
}

// Status contains row counts and build information for the store.
type Status struct {
	Patterns     int
	Vectors      int
	Marks        int
	Measurements int
	Attention    int
	DriverName   string
	BuildMode    string
}
