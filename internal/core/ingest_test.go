package core_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wardsync/wardsync/internal/core"
	_ "github.com/wardsync/wardsync/internal/core/tables"
)

const patientsCSV = `patient_id,first_name,last_name,date_of_birth,gender
1,Ann,Lee,3/4/1990,F
2,Bob,Ray,NULL,M
3,Cara,Diaz,1985-07-12,F
`

func TestProcessObjectCommitsWholeFile(t *testing.T) {
	tx := &fakeTx{}
	db := &fakeDB{tx: tx}
	fetcher := &fakeFetcher{data: []byte(patientsCSV)}
	svc := core.NewService(db, fetcher)

	result, err := svc.ProcessObject(context.Background(), "feeds", "patients.csv")
	if err != nil {
		t.Fatalf("ProcessObject: %v", err)
	}

	if fetcher.bucket != "feeds" || fetcher.name != "patients.csv" {
		t.Errorf("fetched %s/%s, want feeds/patients.csv", fetcher.bucket, fetcher.name)
	}
	if result.Table != "patients" {
		t.Errorf("classified as %q, want patients", result.Table)
	}
	if result.Rows != 3 {
		t.Errorf("result.Rows = %d, want 3", result.Rows)
	}
	if len(tx.execs) != 3 {
		t.Fatalf("got %d upserts, want 3", len(tx.execs))
	}
	if !strings.Contains(tx.execs[0].sql, "INSERT INTO patients") {
		t.Errorf("unexpected upsert SQL: %s", tx.execs[0].sql)
	}
	if !tx.committed {
		t.Error("transaction was not committed")
	}
	if tx.rolledBack {
		t.Error("transaction was rolled back after commit")
	}
}

func TestProcessObjectRowFailureRollsBackFile(t *testing.T) {
	tx := &fakeTx{execErrAt: 2, execErr: errors.New("constraint violation")}
	db := &fakeDB{tx: tx}
	svc := core.NewService(db, &fakeFetcher{data: []byte(patientsCSV)})

	_, err := svc.ProcessObject(context.Background(), "feeds", "patients.csv")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	// Row 2 of the data is CSV line 3 (header is line 1).
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("error should name the failing line: %v", err)
	}
	if tx.committed {
		t.Error("failed file must not be committed")
	}
	if !tx.rolledBack {
		t.Error("failed file must be rolled back")
	}
}

const admissionsCSV = `admission_id,patient_id,ward_id,bed_id,admission_date
1,1,3,7,3/4/2024
2,2,3,8,3/5/2024
`

// Explicit-id inserts leave the identity sequence behind; an admissions file
// must re-sync it in the same transaction, or the next opened episode draws
// an already-used id.
func TestProcessObjectAdmissionsResyncsIDSequence(t *testing.T) {
	tx := &fakeTx{}
	db := &fakeDB{tx: tx}
	svc := core.NewService(db, &fakeFetcher{data: []byte(admissionsCSV)})

	result, err := svc.ProcessObject(context.Background(), "feeds", "admissions.csv")
	if err != nil {
		t.Fatalf("ProcessObject: %v", err)
	}
	if result.Table != "admissions" {
		t.Fatalf("classified as %q, want admissions", result.Table)
	}

	if len(tx.execs) != 3 {
		t.Fatalf("got %d statements, want 2 upserts plus the sequence sync", len(tx.execs))
	}
	last := tx.execs[2].sql
	if !strings.Contains(last, "setval") ||
		!strings.Contains(last, "pg_get_serial_sequence('admissions', 'admission_id')") {
		t.Errorf("final statement should re-sync the admission_id sequence: %s", last)
	}
	if !tx.committed {
		t.Error("transaction was not committed")
	}
}

func TestProcessObjectSequenceSyncFailureRollsBack(t *testing.T) {
	tx := &fakeTx{execErrAt: 3, execErr: errors.New("sequence missing")}
	db := &fakeDB{tx: tx}
	svc := core.NewService(db, &fakeFetcher{data: []byte(admissionsCSV)})

	_, err := svc.ProcessObject(context.Background(), "feeds", "admissions.csv")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if tx.committed {
		t.Error("finalize failure must not commit")
	}
	if !tx.rolledBack {
		t.Error("finalize failure must roll back")
	}
}

func TestProcessObjectUnknownSignatureIsNoOp(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{}}
	svc := core.NewService(db, &fakeFetcher{data: []byte("foo,bar\n1,2\n")})

	result, err := svc.ProcessObject(context.Background(), "feeds", "mystery.csv")
	if err != nil {
		t.Fatalf("unknown signature must not error: %v", err)
	}
	if result.Table != "" {
		t.Errorf("result.Table = %q, want empty", result.Table)
	}
	if result.Rows != 0 {
		t.Errorf("result.Rows = %d, want 0", result.Rows)
	}
	if db.begins != 0 {
		t.Errorf("no transaction should open for an unmatched file, got %d", db.begins)
	}
}

func TestProcessObjectEmptyFileIsNoOp(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{}}
	svc := core.NewService(db, &fakeFetcher{data: []byte("patient_id,first_name\n")})

	result, err := svc.ProcessObject(context.Background(), "feeds", "empty.csv")
	if err != nil {
		t.Fatalf("header-only file must not error: %v", err)
	}
	if result.Rows != 0 || result.Table != "" {
		t.Errorf("got rows=%d table=%q, want a no-op result", result.Rows, result.Table)
	}
	if db.begins != 0 {
		t.Errorf("no transaction should open for an empty file, got %d", db.begins)
	}
}

func TestProcessObjectFetchErrorPropagates(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{}}
	fetchErr := errors.New("object not found")
	svc := core.NewService(db, &fakeFetcher{err: fetchErr})

	_, err := svc.ProcessObject(context.Background(), "feeds", "gone.csv")
	if !errors.Is(err, fetchErr) {
		t.Fatalf("expected wrapped fetch error, got %v", err)
	}
	if db.begins != 0 {
		t.Errorf("no transaction should open when the fetch fails, got %d", db.begins)
	}
}

func TestProcessObjectCancelledContext(t *testing.T) {
	tx := &fakeTx{}
	db := &fakeDB{tx: tx}
	svc := core.NewService(db, &fakeFetcher{data: []byte(patientsCSV)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ProcessObject(ctx, "feeds", "patients.csv")
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if tx.committed {
		t.Error("cancelled ingestion must not commit")
	}
}
