package tables

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/wardsync/wardsync/internal/core"
	"github.com/wardsync/wardsync/internal/csvutil"
)

// Auxiliary reference tables. Same upsert pipeline as the clinical entities,
// no behavioral logic beyond insert-or-overwrite.

const upsertForecastSQL = `
INSERT INTO forecasts (
    forecast_id, ward_id, forecast_date, expected_admissions,
    expected_discharges, predicted_occupancy
) VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (forecast_id) DO UPDATE SET
    ward_id             = EXCLUDED.ward_id,
    forecast_date       = EXCLUDED.forecast_date,
    expected_admissions = EXCLUDED.expected_admissions,
    expected_discharges = EXCLUDED.expected_discharges,
    predicted_occupancy = EXCLUDED.predicted_occupancy`

// UpsertForecastParams holds the bind values for one forecasts row.
type UpsertForecastParams struct {
	ForecastID         pgtype.Int4
	WardID             pgtype.Int4
	ForecastDate       pgtype.Text
	ExpectedAdmissions pgtype.Int4
	ExpectedDischarges pgtype.Int4
	PredictedOccupancy pgtype.Int4
}

func registerForecasts() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       "forecasts",
			Label:     "Forecasts",
			UniqueKey: []string{"forecast_id"},
		},
		Match: func(first csvutil.Record) bool {
			return first.HasValue("forecast_id")
		},
		FieldSpecs: []core.FieldSpec{
			{Name: "forecast_id", Kind: core.FieldInt},
			{Name: "ward_id", Kind: core.FieldInt},
			{Name: "forecast_date", Kind: core.FieldDate},
			{Name: "expected_admissions", Kind: core.FieldInt},
			{Name: "expected_discharges", Kind: core.FieldInt},
			{Name: "predicted_occupancy", Kind: core.FieldInt},
		},
		BuildParams: func(rec csvutil.Record) (any, error) {
			return UpsertForecastParams{
				ForecastID:         core.NormalizeInt(cell(rec, "forecast_id")),
				WardID:             core.NormalizeInt(cell(rec, "ward_id")),
				ForecastDate:       core.NormalizeDate(cell(rec, "forecast_date")),
				ExpectedAdmissions: core.NormalizeInt(cell(rec, "expected_admissions")),
				ExpectedDischarges: core.NormalizeInt(cell(rec, "expected_discharges")),
				PredictedOccupancy: core.NormalizeInt(cell(rec, "predicted_occupancy")),
			}, nil
		},
		Upsert: func(ctx context.Context, db core.DBTX, params any) error {
			p := params.(UpsertForecastParams)
			_, err := db.Exec(ctx, upsertForecastSQL,
				p.ForecastID, p.WardID, p.ForecastDate,
				p.ExpectedAdmissions, p.ExpectedDischarges, p.PredictedOccupancy,
			)
			return err
		},
	})
}

const upsertRoleSQL = `
INSERT INTO roles (role_id, role_name, description)
VALUES ($1, $2, $3)
ON CONFLICT (role_id) DO UPDATE SET
    role_name   = EXCLUDED.role_name,
    description = EXCLUDED.description`

// UpsertRoleParams holds the bind values for one roles row.
type UpsertRoleParams struct {
	RoleID      pgtype.Int4
	RoleName    pgtype.Text
	Description pgtype.Text
}

func registerRoles() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       "roles",
			Label:     "Roles",
			UniqueKey: []string{"role_id"},
		},
		Match: func(first csvutil.Record) bool {
			return first.HasValue("role_id")
		},
		FieldSpecs: []core.FieldSpec{
			{Name: "role_id", Kind: core.FieldInt},
			{Name: "role_name", Kind: core.FieldText},
			{Name: "description", Kind: core.FieldText},
		},
		BuildParams: func(rec csvutil.Record) (any, error) {
			return UpsertRoleParams{
				RoleID:      core.NormalizeInt(cell(rec, "role_id")),
				RoleName:    core.NormalizeEmpty(cell(rec, "role_name")),
				Description: core.NormalizeEmpty(cell(rec, "description")),
			}, nil
		},
		Upsert: func(ctx context.Context, db core.DBTX, params any) error {
			p := params.(UpsertRoleParams)
			_, err := db.Exec(ctx, upsertRoleSQL, p.RoleID, p.RoleName, p.Description)
			return err
		},
	})
}

const upsertUserSQL = `
INSERT INTO users (user_id, first_name, last_name, email, role_id)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id) DO UPDATE SET
    first_name = EXCLUDED.first_name,
    last_name  = EXCLUDED.last_name,
    email      = EXCLUDED.email,
    role_id    = EXCLUDED.role_id`

// UpsertUserParams holds the bind values for one users row.
type UpsertUserParams struct {
	UserID    pgtype.Int4
	FirstName pgtype.Text
	LastName  pgtype.Text
	Email     pgtype.Text
	RoleID    pgtype.Int4
}

func registerUsers() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       "users",
			Label:     "Users",
			UniqueKey: []string{"user_id"},
		},
		Match: func(first csvutil.Record) bool {
			return first.HasValue("user_id")
		},
		FieldSpecs: []core.FieldSpec{
			{Name: "user_id", Kind: core.FieldInt},
			{Name: "first_name", Kind: core.FieldText},
			{Name: "last_name", Kind: core.FieldText},
			{Name: "email", Kind: core.FieldText},
			{Name: "role_id", Kind: core.FieldInt},
		},
		BuildParams: func(rec csvutil.Record) (any, error) {
			return UpsertUserParams{
				UserID:    core.NormalizeInt(cell(rec, "user_id")),
				FirstName: core.NormalizeEmpty(cell(rec, "first_name")),
				LastName:  core.NormalizeEmpty(cell(rec, "last_name")),
				Email:     core.NormalizeEmpty(cell(rec, "email")),
				RoleID:    core.NormalizeInt(cell(rec, "role_id")),
			}, nil
		},
		Upsert: func(ctx context.Context, db core.DBTX, params any) error {
			p := params.(UpsertUserParams)
			_, err := db.Exec(ctx, upsertUserSQL,
				p.UserID, p.FirstName, p.LastName, p.Email, p.RoleID,
			)
			return err
		},
	})
}
