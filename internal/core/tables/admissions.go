package tables

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/wardsync/wardsync/internal/core"
	"github.com/wardsync/wardsync/internal/csvutil"
)

const upsertAdmissionSQL = `
INSERT INTO admissions (
    admission_id, patient_id, ward_id, bed_id,
    admission_date, admission_time, discharge_date, discharge_time,
    admission_reason, disposition, transfer_from, transfer_to
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (admission_id) DO UPDATE SET
    patient_id       = EXCLUDED.patient_id,
    ward_id          = EXCLUDED.ward_id,
    bed_id           = EXCLUDED.bed_id,
    admission_date   = EXCLUDED.admission_date,
    admission_time   = EXCLUDED.admission_time,
    discharge_date   = EXCLUDED.discharge_date,
    discharge_time   = EXCLUDED.discharge_time,
    admission_reason = EXCLUDED.admission_reason,
    disposition      = EXCLUDED.disposition,
    transfer_from    = EXCLUDED.transfer_from,
    transfer_to      = EXCLUDED.transfer_to`

// Explicit-id inserts do not advance the identity sequence, and the bed
// assignment service draws from that sequence when it opens an episode.
// Without a re-sync, the first assignment after an admissions file would
// collide with an ingested id on admissions_pkey. Runs inside the file's
// transaction; setval with is_called=false makes the next nextval land
// one past the highest ingested id.
const syncAdmissionIDSQL = `
SELECT setval(
    pg_get_serial_sequence('admissions', 'admission_id'),
    (SELECT COALESCE(MAX(admission_id), 0) + 1 FROM admissions),
    false)`

// UpsertAdmissionParams holds the bind values for one admissions row.
// A NULL discharge_date marks an open episode.
type UpsertAdmissionParams struct {
	AdmissionID     pgtype.Int4
	PatientID       pgtype.Int4
	WardID          pgtype.Int4
	BedID           pgtype.Int4
	AdmissionDate   pgtype.Text
	AdmissionTime   pgtype.Text
	DischargeDate   pgtype.Text
	DischargeTime   pgtype.Text
	AdmissionReason pgtype.Text
	Disposition     pgtype.Text
	TransferFrom    pgtype.Int4
	TransferTo      pgtype.Int4
}

func registerAdmissions() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       "admissions",
			Label:     "Admissions",
			UniqueKey: []string{"admission_id"},
		},
		Match: func(first csvutil.Record) bool {
			return first.HasValue("admission_id")
		},
		FieldSpecs: []core.FieldSpec{
			{Name: "admission_id", Kind: core.FieldInt},
			{Name: "patient_id", Kind: core.FieldInt},
			{Name: "ward_id", Kind: core.FieldInt},
			{Name: "bed_id", Kind: core.FieldInt},
			{Name: "admission_date", Kind: core.FieldDate},
			{Name: "admission_time", Kind: core.FieldText},
			{Name: "discharge_date", Kind: core.FieldDate},
			{Name: "discharge_time", Kind: core.FieldText},
			{Name: "admission_reason", Kind: core.FieldText},
			{Name: "disposition", Kind: core.FieldText},
			{Name: "transfer_from", Kind: core.FieldInt},
			{Name: "transfer_to", Kind: core.FieldInt},
		},
		BuildParams: func(rec csvutil.Record) (any, error) {
			return UpsertAdmissionParams{
				AdmissionID:     core.NormalizeInt(cell(rec, "admission_id")),
				PatientID:       core.NormalizeInt(cell(rec, "patient_id")),
				WardID:          core.NormalizeInt(cell(rec, "ward_id")),
				BedID:           core.NormalizeInt(cell(rec, "bed_id")),
				AdmissionDate:   core.NormalizeDate(cell(rec, "admission_date")),
				AdmissionTime:   core.NormalizeEmpty(cell(rec, "admission_time")),
				DischargeDate:   core.NormalizeDate(cell(rec, "discharge_date")),
				DischargeTime:   core.NormalizeEmpty(cell(rec, "discharge_time")),
				AdmissionReason: core.NormalizeEmpty(cell(rec, "admission_reason")),
				Disposition:     core.NormalizeEmpty(cell(rec, "disposition")),
				TransferFrom:    core.NormalizeInt(cell(rec, "transfer_from")),
				TransferTo:      core.NormalizeInt(cell(rec, "transfer_to")),
			}, nil
		},
		Upsert: func(ctx context.Context, db core.DBTX, params any) error {
			p := params.(UpsertAdmissionParams)
			_, err := db.Exec(ctx, upsertAdmissionSQL,
				p.AdmissionID, p.PatientID, p.WardID, p.BedID,
				p.AdmissionDate, p.AdmissionTime, p.DischargeDate, p.DischargeTime,
				p.AdmissionReason, p.Disposition, p.TransferFrom, p.TransferTo,
			)
			return err
		},
		AfterFile: func(ctx context.Context, db core.DBTX) error {
			_, err := db.Exec(ctx, syncAdmissionIDSQL)
			return err
		},
	})
}
