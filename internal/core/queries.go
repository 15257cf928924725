package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Read projections for the ward dashboard. These are documented queries with
// no business logic beyond their join/aggregate shape; the store is the
// single source of truth and nothing here is cached.

// BedRow is the raw beds projection.
type BedRow struct {
	BedID     int32   `json:"bed_id"`
	WardID    *int32  `json:"ward_id"`
	BedNumber *string `json:"bed_number"`
	BedStatus *string `json:"bed_status"`
	BedType   *string `json:"bed_type"`
	PatientID *int32  `json:"patient_id"`
}

// BedDetail is a single bed enriched with ward and occupant display fields.
type BedDetail struct {
	BedID           int32   `json:"bed_id"`
	BedNumber       *string `json:"bed_number"`
	BedStatus       *string `json:"bed_status"`
	BedType         *string `json:"bed_type"`
	WardName        *string `json:"ward_name"`
	FloorNumber     *int32  `json:"floor_number"`
	Building        *string `json:"building"`
	PatientID       *int32  `json:"patient_id"`
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	AdmissionStatus *string `json:"admission_status"`
}

// WardSummary is a ward row with live-computed bed counts.
type WardSummary struct {
	WardID         int32   `json:"ward_id"`
	Name           *string `json:"name"`
	Type           *string `json:"type"`
	NumOfTotalBeds *int32  `json:"num_of_total_beds"`
	Building       *string `json:"building"`
	FloorNumber    *int32  `json:"floor_number"`
	BedsTracked    int64   `json:"beds_tracked"`
	AvailableBeds  int64   `json:"available_beds"`
}

// PatientRow is the raw patients projection.
type PatientRow struct {
	PatientID           int32   `json:"patient_id"`
	FirstName           *string `json:"first_name"`
	LastName            *string `json:"last_name"`
	DateOfBirth         *string `json:"date_of_birth"`
	Gender              *string `json:"gender"`
	MedicalRecordNumber *string `json:"medical_record_number"`
	AdmissionStatus     *string `json:"admission_status"`
	PriorityLevel       *int32  `json:"priority_level"`
	AdmitReason         *string `json:"admit_reason"`
}

// AdmissionRow is an admission enriched with patient and ward/bed display
// fields for the latest-admissions feed.
type AdmissionRow struct {
	AdmissionID     int32   `json:"admission_id"`
	AdmissionTime   *string `json:"admission_time"`
	DischargeTime   *string `json:"discharge_time"`
	AdmissionReason *string `json:"admission_reason"`
	Disposition     *string `json:"disposition"`
	TransferFrom    *int32  `json:"transfer_from"`
	TransferTo      *int32  `json:"transfer_to"`
	PatientID       *int32  `json:"patient_id"`
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	WardName        *string `json:"ward_name"`
	BedNumber       *string `json:"bed_number"`
}

// ListBeds returns every bed row, unfiltered.
func (s *Service) ListBeds(ctx context.Context) ([]BedRow, error) {
	rows, err := s.db.Query(ctx,
		`SELECT bed_id, ward_id, bed_number, bed_status, bed_type, patient_id FROM beds`,
	)
	if err != nil {
		return nil, fmt.Errorf("query beds: %w", err)
	}
	defer rows.Close()

	beds := []BedRow{}
	for rows.Next() {
		var b BedRow
		if err := rows.Scan(&b.BedID, &b.WardID, &b.BedNumber, &b.BedStatus, &b.BedType, &b.PatientID); err != nil {
			return nil, fmt.Errorf("scan bed: %w", err)
		}
		beds = append(beds, b)
	}
	return beds, rows.Err()
}

// GetBedByNumber returns one bed enriched with its ward's name, floor and
// building and the occupying patient's name and admission status.
func (s *Service) GetBedByNumber(ctx context.Context, bedNumber string) (*BedDetail, error) {
	var d BedDetail
	err := s.db.QueryRow(ctx, `
		SELECT b.bed_id, b.bed_number, b.bed_status, b.bed_type,
		       w.name AS ward_name, w.floor_number, w.building,
		       p.patient_id, p.first_name, p.last_name, p.admission_status
		FROM beds b
		LEFT JOIN wards w ON b.ward_id = w.ward_id
		LEFT JOIN patients p ON b.patient_id = p.patient_id
		WHERE b.bed_number = $1
		LIMIT 1`, bedNumber,
	).Scan(
		&d.BedID, &d.BedNumber, &d.BedStatus, &d.BedType,
		&d.WardName, &d.FloorNumber, &d.Building,
		&d.PatientID, &d.FirstName, &d.LastName, &d.AdmissionStatus,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBedNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query bed %q: %w", bedNumber, err)
	}
	return &d, nil
}

// ListWardSummaries returns every ward with live bed counts. available_beds
// counts beds whose status is exactly "available"; beds_tracked counts beds
// the ingestion pipeline knows about, which may differ from the ward's
// declared capacity.
func (s *Service) ListWardSummaries(ctx context.Context) ([]WardSummary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT w.ward_id, w.name, w.type, w.num_of_total_beds,
		       w.building, w.floor_number,
		       COUNT(b.bed_id) AS beds_tracked,
		       COUNT(*) FILTER (WHERE b.bed_status = 'available') AS available_beds
		FROM wards w
		LEFT JOIN beds b ON w.ward_id = b.ward_id
		GROUP BY w.ward_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query wards: %w", err)
	}
	defer rows.Close()

	wards := []WardSummary{}
	for rows.Next() {
		var w WardSummary
		if err := rows.Scan(
			&w.WardID, &w.Name, &w.Type, &w.NumOfTotalBeds,
			&w.Building, &w.FloorNumber, &w.BedsTracked, &w.AvailableBeds,
		); err != nil {
			return nil, fmt.Errorf("scan ward: %w", err)
		}
		wards = append(wards, w)
	}
	return wards, rows.Err()
}

// ListPatients returns every patient ordered by id.
func (s *Service) ListPatients(ctx context.Context) ([]PatientRow, error) {
	rows, err := s.db.Query(ctx, `
		SELECT patient_id, first_name, last_name,
		       date_of_birth::text, gender, medical_record_number,
		       admission_status, priority_level, admit_reason
		FROM patients ORDER BY patient_id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query patients: %w", err)
	}
	defer rows.Close()

	patients := []PatientRow{}
	for rows.Next() {
		var p PatientRow
		if err := rows.Scan(
			&p.PatientID, &p.FirstName, &p.LastName,
			&p.DateOfBirth, &p.Gender, &p.MedicalRecordNumber,
			&p.AdmissionStatus, &p.PriorityLevel, &p.AdmitReason,
		); err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

// LatestAdmissions returns the 25 most recent admissions, newest first,
// enriched with patient and ward/bed display fields.
func (s *Service) LatestAdmissions(ctx context.Context) ([]AdmissionRow, error) {
	rows, err := s.db.Query(ctx, `
		SELECT a.admission_id, a.admission_time::text, a.discharge_time::text,
		       a.admission_reason, a.disposition, a.transfer_from, a.transfer_to,
		       p.patient_id, p.first_name, p.last_name,
		       w.name AS ward_name, b.bed_number
		FROM admissions a
		LEFT JOIN patients p ON a.patient_id = p.patient_id
		LEFT JOIN wards w ON a.ward_id = w.ward_id
		LEFT JOIN beds b ON a.bed_id = b.bed_id
		ORDER BY a.admission_time DESC
		LIMIT 25`,
	)
	if err != nil {
		return nil, fmt.Errorf("query admissions: %w", err)
	}
	defer rows.Close()

	admissions := []AdmissionRow{}
	for rows.Next() {
		var a AdmissionRow
		if err := rows.Scan(
			&a.AdmissionID, &a.AdmissionTime, &a.DischargeTime,
			&a.AdmissionReason, &a.Disposition, &a.TransferFrom, &a.TransferTo,
			&a.PatientID, &a.FirstName, &a.LastName,
			&a.WardName, &a.BedNumber,
		); err != nil {
			return nil, fmt.Errorf("scan admission: %w", err)
		}
		admissions = append(admissions, a)
	}
	return admissions, rows.Err()
}
