package core

// Service is the application core: CSV ingestion, bed assignment, and the
// dashboard read projections. It owns no connections; every operation
// acquires its scope from the injected DB and releases it on return.
type Service struct {
	db    DB
	store ObjectFetcher
}

// NewService creates a Service over a database handle and an object store.
func NewService(db DB, store ObjectFetcher) *Service {
	return &Service{db: db, store: store}
}
