package core_test

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wardsync/wardsync/internal/core"
)

// Test doubles for the DB/Tx/ObjectFetcher contracts. The query facade is
// exercised against a real database; the ingestion and assignment logic is
// tested here against recording fakes.

type execCall struct {
	sql  string
	args []any
}

type fakeTx struct {
	execs      []execCall
	execErrAt  int // fail the Nth Exec (1-indexed), 0 = never
	execErr    error
	rows       map[string]fakeRow // QueryRow dispatch by SQL substring
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.execs = append(t.execs, execCall{sql: sql, args: args})
	if t.execErrAt > 0 && len(t.execs) == t.execErrAt {
		return pgconn.CommandTag{}, t.execErr
	}
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic("Query not expected in this test")
}

func (t *fakeTx) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	for substr, row := range t.rows {
		if strings.Contains(sql, substr) {
			return row
		}
	}
	return fakeRow{err: pgx.ErrNoRows}
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeDB struct {
	tx       *fakeTx
	beginErr error
	begins   int
}

func (db *fakeDB) Begin(context.Context) (core.Tx, error) {
	db.begins++
	if db.beginErr != nil {
		return nil, db.beginErr
	}
	return db.tx, nil
}

func (db *fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	panic("Exec outside a transaction not expected in this test")
}

func (db *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic("Query not expected in this test")
}

func (db *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	panic("QueryRow outside a transaction not expected in this test")
}

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		if i >= len(r.vals) {
			break
		}
		switch target := d.(type) {
		case *int32:
			*target = r.vals[i].(int32)
		case *string:
			*target = r.vals[i].(string)
		default:
			panic("unsupported scan target in fakeRow")
		}
	}
	return nil
}

type fakeFetcher struct {
	data   []byte
	err    error
	bucket string
	name   string
}

func (f *fakeFetcher) Fetch(_ context.Context, bucket, name string) ([]byte, error) {
	f.bucket = bucket
	f.name = name
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}
