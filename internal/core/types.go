// Package core implements the CSV ingestion pipeline and the bed-management
// business logic. It has no HTTP dependencies; the web layer is a thin
// adapter over the Service.
package core

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wardsync/wardsync/internal/csvutil"
)

// DBTX is the interface for database statement execution.
// Satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Tx is a transaction scope. Rollback after Commit is a no-op, so callers
// can defer Rollback on every path.
type Tx interface {
	DBTX
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DB runs standalone statements and opens transaction scopes.
type DB interface {
	DBTX
	Begin(ctx context.Context) (Tx, error)
}

// PoolDB adapts *pgxpool.Pool to the DB interface.
type PoolDB struct {
	*pgxpool.Pool
}

// Begin opens a transaction on the pool.
func (p PoolDB) Begin(ctx context.Context) (Tx, error) {
	tx, err := p.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// ObjectFetcher retrieves the raw content of an object from a storage bucket.
type ObjectFetcher interface {
	Fetch(ctx context.Context, bucket, name string) ([]byte, error)
}

// FieldKind is the declared type of a CSV column, which selects the
// sanitizer applied before binding.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldInt
	FieldDate
)

// FieldSpec declares one CSV column of an entity table.
type FieldSpec struct {
	Name string    // CSV header / database column name
	Kind FieldKind // sanitizer selection
}

// TableInfo describes an entity table fed by the ingestion pipeline.
type TableInfo struct {
	Key       string   // table name, e.g. "patients"
	Label     string   // display name for logs
	UniqueKey []string // conflict-resolution column(s) for the upsert
}

// MatchFunc decides whether a CSV file belongs to this table, judged on the
// file's first record only.
type MatchFunc func(first csvutil.Record) bool

// BuildParamsFunc converts a sanitized CSV record into bind parameters for
// the table's upsert statement.
type BuildParamsFunc func(rec csvutil.Record) (any, error)

// UpsertFunc executes one insert-or-update for a row's parameters.
type UpsertFunc func(ctx context.Context, db DBTX, params any) error

// TableDefinition contains everything needed to ingest one entity table.
type TableDefinition struct {
	Info        TableInfo
	Match       MatchFunc
	FieldSpecs  []FieldSpec
	BuildParams BuildParamsFunc
	Upsert      UpsertFunc

	// AfterFile, when set, runs once after every row of a file has been
	// applied, inside the same transaction. Tables whose id column is also
	// an identity column use it to re-sync the sequence.
	AfterFile func(ctx context.Context, db DBTX) error
}
