package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wardsync/wardsync/internal/csvutil"
	"github.com/wardsync/wardsync/internal/logging"
)

// IngestResult summarizes one processed object notification.
type IngestResult struct {
	RunID  string `json:"runId"`
	Bucket string `json:"bucket"`
	Object string `json:"object"`
	Table  string `json:"table,omitempty"` // empty when the file matched no signature
	Rows   int    `json:"rows"`
}

// ProcessObject ingests one CSV object: fetch, parse, classify, then upsert
// every row inside a single transaction. Any row failure rolls the whole
// file back; the store is left exactly as it was. Rows are processed
// strictly sequentially: order carries no meaning, but sequential execution
// bounds lock contention and keeps error attribution to a line number.
//
// A file that matches no registered signature is a logged no-op, not an
// error: feeds may ship objects this service does not own.
func (s *Service) ProcessObject(ctx context.Context, bucket, name string) (*IngestResult, error) {
	runID := uuid.NewString()
	log := logging.FromContext(ctx).With("run_id", runID, "bucket", bucket, "object", name)

	result := &IngestResult{RunID: runID, Bucket: bucket, Object: name}

	data, err := s.store.Fetch(ctx, bucket, name)
	if err != nil {
		return nil, fmt.Errorf("fetch object %s/%s: %w", bucket, name, err)
	}

	records, err := csvutil.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", name, err)
	}
	if len(records) == 0 {
		log.Warn("object contained no data rows")
		return result, nil
	}

	log.Info("processing records", "count", len(records))

	def, ok := Classify(records)
	if !ok {
		log.Warn("unrecognized csv signature, skipping file",
			"first_row_keys", records[0].Keys(),
		)
		return result, nil
	}
	result.Table = def.Info.Key

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	for i, rec := range records {
		// CSV line number, 1-indexed with the header on line 1.
		line := i + 2

		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("ingestion cancelled at line %d: %w", line, err)
		}

		params, err := def.BuildParams(rec)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", name, line, err)
		}

		if err := def.Upsert(ctx, tx, params); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", name, line, err)
		}
	}

	if def.AfterFile != nil {
		if err := def.AfterFile(ctx, tx); err != nil {
			return nil, fmt.Errorf("%s finalize: %w", name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	result.Rows = len(records)
	log.Info("file ingested", "table", def.Info.Key, "rows", result.Rows)
	return result, nil
}
