// Package web provides the HTTP surface: the object-store ingestion trigger
// and the ward dashboard API.
package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wardsync/wardsync/internal/config"
	"github.com/wardsync/wardsync/internal/core"
)

// Service is the application core the handlers delegate to.
type Service interface {
	ProcessObject(ctx context.Context, bucket, name string) (*core.IngestResult, error)
	AssignBed(ctx context.Context, req core.AssignBedRequest) error
	ListBeds(ctx context.Context) ([]core.BedRow, error)
	GetBedByNumber(ctx context.Context, bedNumber string) (*core.BedDetail, error)
	ListWardSummaries(ctx context.Context) ([]core.WardSummary, error)
	ListPatients(ctx context.Context) ([]core.PatientRow, error)
	LatestAdmissions(ctx context.Context) ([]core.AdmissionRow, error)
}

// Server is the HTTP server for the ingestion trigger and dashboard API.
type Server struct {
	service Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server with routing and middleware configured.
func NewServer(service Service, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(corsHeaders)
}

func (s *Server) setupRoutes() {
	// Object-store notification entry point
	s.router.Post("/", s.handleIngestTrigger)

	// Dashboard API
	s.router.Get("/beds", s.handleListBeds)
	s.router.Get("/beds/{bedNumber}", s.handleGetBed)
	s.router.Post("/beds/assign", s.handleAssignBed)
	s.router.Post("/beds/update", s.handleAssignBed) // legacy path, same handler
	s.router.Get("/wards", s.handleListWards)
	s.router.Get("/patients", s.handleListPatients)
	s.router.Get("/admissions/latest", s.handleLatestAdmissions)

	s.router.Get("/health", s.handleHealth)
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// corsHeaders allows the browser dashboard, served from another origin, to
// call the API. Credentials are never used, so the permissive wildcard is
// safe here.
func corsHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
