package tables

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/wardsync/wardsync/internal/core"
	"github.com/wardsync/wardsync/internal/csvutil"
)

const upsertBedSQL = `
INSERT INTO beds (
    bed_id, ward_id, bed_number, bed_status, bed_type, patient_id
) VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (bed_id) DO UPDATE SET
    ward_id    = EXCLUDED.ward_id,
    bed_number = EXCLUDED.bed_number,
    bed_status = EXCLUDED.bed_status,
    bed_type   = EXCLUDED.bed_type,
    patient_id = EXCLUDED.patient_id`

// UpsertBedParams holds the bind values for one beds row.
//
// The upsert path does not enforce the occupied-implies-patient invariant;
// the bed assignment service is the strict write path for occupancy.
type UpsertBedParams struct {
	BedID     pgtype.Int4
	WardID    pgtype.Int4
	BedNumber pgtype.Text
	BedStatus pgtype.Text
	BedType   pgtype.Text
	PatientID pgtype.Int4
}

func registerBeds() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       "beds",
			Label:     "Beds",
			UniqueKey: []string{"bed_id"},
		},
		Match: func(first csvutil.Record) bool {
			return first.HasValue("bed_id") && first.Has("bed_number")
		},
		FieldSpecs: []core.FieldSpec{
			{Name: "bed_id", Kind: core.FieldInt},
			{Name: "ward_id", Kind: core.FieldInt},
			{Name: "bed_number", Kind: core.FieldText},
			{Name: "bed_status", Kind: core.FieldText},
			{Name: "bed_type", Kind: core.FieldText},
			{Name: "patient_id", Kind: core.FieldInt},
		},
		BuildParams: func(rec csvutil.Record) (any, error) {
			return UpsertBedParams{
				BedID:     core.NormalizeInt(cell(rec, "bed_id")),
				WardID:    core.NormalizeInt(cell(rec, "ward_id")),
				BedNumber: core.NormalizeEmpty(cell(rec, "bed_number")),
				BedStatus: core.NormalizeEmpty(cell(rec, "bed_status")),
				BedType:   core.NormalizeEmpty(cell(rec, "bed_type")),
				PatientID: core.NormalizeInt(cell(rec, "patient_id")),
			}, nil
		},
		Upsert: func(ctx context.Context, db core.DBTX, params any) error {
			p := params.(UpsertBedParams)
			_, err := db.Exec(ctx, upsertBedSQL,
				p.BedID, p.WardID, p.BedNumber, p.BedStatus, p.BedType, p.PatientID,
			)
			return err
		},
	})
}
