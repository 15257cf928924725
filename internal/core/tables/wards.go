package tables

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/wardsync/wardsync/internal/core"
	"github.com/wardsync/wardsync/internal/csvutil"
)

const upsertWardSQL = `
INSERT INTO wards (
    ward_id, name, type, num_of_total_beds, building, floor_number
) VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (ward_id) DO UPDATE SET
    name              = EXCLUDED.name,
    type              = EXCLUDED.type,
    num_of_total_beds = EXCLUDED.num_of_total_beds,
    building          = EXCLUDED.building,
    floor_number      = EXCLUDED.floor_number`

// UpsertWardParams holds the bind values for one wards row.
type UpsertWardParams struct {
	WardID         pgtype.Int4
	Name           pgtype.Text
	Type           pgtype.Text
	NumOfTotalBeds pgtype.Int4
	Building       pgtype.Text
	FloorNumber    pgtype.Int4
}

func registerWards() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       "wards",
			Label:     "Wards",
			UniqueKey: []string{"ward_id"},
		},
		Match: func(first csvutil.Record) bool {
			return first.HasValue("ward_id") && first.Has("name")
		},
		FieldSpecs: []core.FieldSpec{
			{Name: "ward_id", Kind: core.FieldInt},
			{Name: "name", Kind: core.FieldText},
			{Name: "type", Kind: core.FieldText},
			{Name: "num_of_total_beds", Kind: core.FieldInt},
			{Name: "building", Kind: core.FieldText},
			{Name: "floor_number", Kind: core.FieldInt},
		},
		BuildParams: func(rec csvutil.Record) (any, error) {
			return UpsertWardParams{
				WardID:         core.NormalizeInt(cell(rec, "ward_id")),
				Name:           core.NormalizeEmpty(cell(rec, "name")),
				Type:           core.NormalizeEmpty(cell(rec, "type")),
				NumOfTotalBeds: core.NormalizeInt(cell(rec, "num_of_total_beds")),
				Building:       core.NormalizeEmpty(cell(rec, "building")),
				FloorNumber:    core.NormalizeInt(cell(rec, "floor_number")),
			}, nil
		},
		Upsert: func(ctx context.Context, db core.DBTX, params any) error {
			p := params.(UpsertWardParams)
			_, err := db.Exec(ctx, upsertWardSQL,
				p.WardID, p.Name, p.Type, p.NumOfTotalBeds, p.Building, p.FloorNumber,
			)
			return err
		},
	})
}
