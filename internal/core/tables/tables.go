// Package tables registers the entity tables fed by the CSV ingestion
// pipeline. Registration order is the classification priority: patients,
// wards, beds, admissions, forecasts, roles, users. The first signature
// match wins.
//
// Every upsert is keyed on the entity's id column and overwrites all non-key
// columns with the CSV's values ("last CSV wins"). A field missing from the
// file writes NULL; partial-field updates are not supported.
package tables

import "github.com/wardsync/wardsync/internal/csvutil"

func init() {
	registerPatients()
	registerWards()
	registerBeds()
	registerAdmissions()
	registerForecasts()
	registerRoles()
	registerUsers()
}

func cell(rec csvutil.Record, name string) string {
	return rec[name]
}
