package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/wardsync/wardsync/internal/logging"
)

// AssignBedRequest is a dashboard request to change a bed's occupancy.
// The bed may be addressed by id or by bed number; id wins when both are set.
type AssignBedRequest struct {
	BedID     *int32 `json:"bed_id"`
	BedNumber string `json:"bed_number"`
	BedStatus string `json:"bed_status"`
	PatientID *int32 `json:"patient_id"`
}

const (
	bedStatusOccupied  = "occupied"
	bedStatusAvailable = "available"

	defaultAdmitReason = "Hospitalized"
	dispositionAdmit   = "admitted"
	dispositionRelease = "discharged"
)

// The admission insert resolves the ward through the bed's ward_id and
// stamps the current date/time. If the bed already has an open episode the
// partial unique index on (bed_id) WHERE discharge_date IS NULL fires and
// the episode is re-opened instead of duplicated.
const openAdmissionSQL = `
INSERT INTO admissions (
    patient_id, ward_id, bed_id,
    admission_date, admission_time, admission_reason, disposition
)
SELECT $1, w.ward_id, b.bed_id, CURRENT_DATE, CURRENT_TIME, $3, $4
FROM beds b
JOIN wards w ON b.ward_id = w.ward_id
WHERE b.bed_id = $2
ON CONFLICT (bed_id) WHERE discharge_date IS NULL DO UPDATE SET
    discharge_date = NULL,
    discharge_time = NULL`

const closeAdmissionsSQL = `
UPDATE admissions
SET discharge_date = CURRENT_DATE,
    discharge_time = CURRENT_TIME,
    disposition    = $2
WHERE bed_id = $1 AND discharge_date IS NULL`

// AssignBed applies an occupancy change to a bed and keeps the admissions
// table consistent with it:
//
//   - "occupied" requires an existing patient; the bed is marked occupied
//     with that patient and an admission episode is opened (or re-opened).
//   - "available" clears the bed's patient and closes every open episode for
//     the bed, stamping the discharge date/time.
//   - any other status updates the bed verbatim with no admission effects.
//
// The bed update and the admission change run in one transaction; the bed
// row is locked for the transaction's duration, so two concurrent assigns on
// the same bed serialize at the store rather than interleaving.
func (s *Service) AssignBed(ctx context.Context, req AssignBedRequest) error {
	if req.BedID == nil && strings.TrimSpace(req.BedNumber) == "" {
		return ErrMissingBed
	}
	if strings.TrimSpace(req.BedStatus) == "" {
		return ErrMissingStatus
	}

	status := strings.ToLower(strings.TrimSpace(req.BedStatus))
	log := logging.FromContext(ctx)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	bedID, err := lockBed(ctx, tx, req)
	if err != nil {
		return err
	}

	switch status {
	case bedStatusOccupied:
		if req.PatientID == nil {
			return ErrMissingPatient
		}
		if err := patientExists(ctx, tx, *req.PatientID); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE beds SET bed_status = $1, patient_id = $2 WHERE bed_id = $3`,
			req.BedStatus, *req.PatientID, bedID,
		); err != nil {
			return fmt.Errorf("update bed %d: %w", bedID, err)
		}

		if _, err := tx.Exec(ctx, openAdmissionSQL,
			*req.PatientID, bedID, defaultAdmitReason, dispositionAdmit,
		); err != nil {
			return fmt.Errorf("open admission for bed %d: %w", bedID, err)
		}

	case bedStatusAvailable:
		if _, err := tx.Exec(ctx,
			`UPDATE beds SET bed_status = $1, patient_id = NULL WHERE bed_id = $2`,
			req.BedStatus, bedID,
		); err != nil {
			return fmt.Errorf("update bed %d: %w", bedID, err)
		}

		// Closes every open episode, not just the newest: multiple opens
		// should not exist, but if they do this call drains them all.
		if _, err := tx.Exec(ctx, closeAdmissionsSQL, bedID, dispositionRelease); err != nil {
			return fmt.Errorf("close admissions for bed %d: %w", bedID, err)
		}

	default:
		if _, err := tx.Exec(ctx,
			`UPDATE beds SET bed_status = $1, patient_id = $2 WHERE bed_id = $3`,
			req.BedStatus, req.PatientID, bedID,
		); err != nil {
			return fmt.Errorf("update bed %d: %w", bedID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit bed assignment: %w", err)
	}

	log.Info("bed assignment applied", "bed_id", bedID, "status", status)
	return nil
}

// lockBed resolves the requested bed and takes a row lock on it for the
// rest of the transaction.
func lockBed(ctx context.Context, tx Tx, req AssignBedRequest) (int32, error) {
	var (
		bedID int32
		err   error
	)
	if req.BedID != nil {
		err = tx.QueryRow(ctx,
			`SELECT bed_id FROM beds WHERE bed_id = $1 FOR UPDATE`, *req.BedID,
		).Scan(&bedID)
	} else {
		err = tx.QueryRow(ctx,
			`SELECT bed_id FROM beds WHERE bed_number = $1 FOR UPDATE`, req.BedNumber,
		).Scan(&bedID)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrBedNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("look up bed: %w", err)
	}
	return bedID, nil
}

func patientExists(ctx context.Context, tx Tx, patientID int32) error {
	var id int32
	err := tx.QueryRow(ctx,
		`SELECT patient_id FROM patients WHERE patient_id = $1`, patientID,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrPatientNotFound
	}
	if err != nil {
		return fmt.Errorf("look up patient %d: %w", patientID, err)
	}
	return nil
}
