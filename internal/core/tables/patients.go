package tables

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/wardsync/wardsync/internal/core"
	"github.com/wardsync/wardsync/internal/csvutil"
)

const upsertPatientSQL = `
INSERT INTO patients (
    patient_id, first_name, last_name, date_of_birth, gender,
    medical_record_number, admission_status, priority_level, admit_reason
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (patient_id) DO UPDATE SET
    first_name            = EXCLUDED.first_name,
    last_name             = EXCLUDED.last_name,
    date_of_birth         = EXCLUDED.date_of_birth,
    gender                = EXCLUDED.gender,
    medical_record_number = EXCLUDED.medical_record_number,
    admission_status      = EXCLUDED.admission_status,
    priority_level        = EXCLUDED.priority_level,
    admit_reason          = EXCLUDED.admit_reason`

// UpsertPatientParams holds the bind values for one patients row.
type UpsertPatientParams struct {
	PatientID           pgtype.Int4
	FirstName           pgtype.Text
	LastName            pgtype.Text
	DateOfBirth         pgtype.Text
	Gender              pgtype.Text
	MedicalRecordNumber pgtype.Text
	AdmissionStatus     pgtype.Text
	PriorityLevel       pgtype.Int4
	AdmitReason         pgtype.Text
}

func registerPatients() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       "patients",
			Label:     "Patients",
			UniqueKey: []string{"patient_id"},
		},
		Match: func(first csvutil.Record) bool {
			return first.HasValue("patient_id") && first.Has("first_name")
		},
		FieldSpecs: []core.FieldSpec{
			{Name: "patient_id", Kind: core.FieldInt},
			{Name: "first_name", Kind: core.FieldText},
			{Name: "last_name", Kind: core.FieldText},
			{Name: "date_of_birth", Kind: core.FieldDate},
			{Name: "gender", Kind: core.FieldText},
			{Name: "medical_record_number", Kind: core.FieldText},
			{Name: "admission_status", Kind: core.FieldText},
			{Name: "priority_level", Kind: core.FieldInt},
			{Name: "admit_reason", Kind: core.FieldText},
		},
		BuildParams: func(rec csvutil.Record) (any, error) {
			return UpsertPatientParams{
				PatientID:           core.NormalizeInt(cell(rec, "patient_id")),
				FirstName:           core.NormalizeEmpty(cell(rec, "first_name")),
				LastName:            core.NormalizeEmpty(cell(rec, "last_name")),
				DateOfBirth:         core.NormalizeDate(cell(rec, "date_of_birth")),
				Gender:              core.NormalizeEmpty(cell(rec, "gender")),
				MedicalRecordNumber: core.NormalizeEmpty(cell(rec, "medical_record_number")),
				AdmissionStatus:     core.NormalizeEmpty(cell(rec, "admission_status")),
				PriorityLevel:       core.NormalizeInt(cell(rec, "priority_level")),
				AdmitReason:         core.NormalizeEmpty(cell(rec, "admit_reason")),
			}, nil
		},
		Upsert: func(ctx context.Context, db core.DBTX, params any) error {
			p := params.(UpsertPatientParams)
			_, err := db.Exec(ctx, upsertPatientSQL,
				p.PatientID, p.FirstName, p.LastName, p.DateOfBirth, p.Gender,
				p.MedicalRecordNumber, p.AdmissionStatus, p.PriorityLevel, p.AdmitReason,
			)
			return err
		},
	})
}
