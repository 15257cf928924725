package core

import "errors"

// Sentinel errors returned by the bed assignment service and query facade.
// The web layer maps these onto HTTP status codes; everything else is a
// store failure and surfaces as a 500.
var (
	// ErrBedNotFound means the referenced bed does not exist.
	ErrBedNotFound = errors.New("bed not found")

	// ErrPatientNotFound means the referenced patient does not exist.
	ErrPatientNotFound = errors.New("patient not found")

	// ErrMissingBed means the request carried neither bed_id nor bed_number.
	ErrMissingBed = errors.New("missing bed_id or bed_number")

	// ErrMissingStatus means the request carried no bed_status.
	ErrMissingStatus = errors.New("missing bed_status")

	// ErrMissingPatient means status "occupied" was requested without a
	// patient_id.
	ErrMissingPatient = errors.New("patient_id is required when occupying a bed")
)

// IsValidation reports whether err is a caller mistake (HTTP 400).
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingBed) ||
		errors.Is(err, ErrMissingStatus) ||
		errors.Is(err, ErrMissingPatient) ||
		errors.Is(err, ErrPatientNotFound)
}

// IsNotFound reports whether err references an absent resource (HTTP 404).
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBedNotFound)
}
