package web

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wardsync/wardsync/internal/core"
	"github.com/wardsync/wardsync/internal/logging"
)

// objectNotification is the ingestion trigger payload: either a raw
// {bucket, name} object or a Pub/Sub-style envelope whose message data is
// the same JSON, base64-encoded.
type objectNotification struct {
	Bucket  string `json:"bucket"`
	Name    string `json:"name"`
	Message *struct {
		Data string `json:"data"`
	} `json:"message"`
}

// handleIngestTrigger processes an object-store notification. This endpoint
// is machine-triggered, so failures return the raw error message rather
// than a sanitized one.
func (s *Server) handleIngestTrigger(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, s.cfg.Ingest.MaxObjectSize))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	var note objectNotification
	if err := json.Unmarshal(body, &note); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	// Unwrap the envelope form.
	if note.Message != nil && note.Message.Data != "" {
		decoded, err := base64.StdEncoding.DecodeString(note.Message.Data)
		if err != nil {
			http.Error(w, "invalid message data encoding", http.StatusBadRequest)
			return
		}
		note = objectNotification{}
		if err := json.Unmarshal(decoded, &note); err != nil {
			http.Error(w, "invalid message data payload", http.StatusBadRequest)
			return
		}
	}

	if note.Bucket == "" || note.Name == "" {
		http.Error(w, "Missing bucket or filename", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if s.cfg.Ingest.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Ingest.Timeout)
		defer cancel()
	}

	if _, err := s.service.ProcessObject(ctx, note.Bucket, note.Name); err != nil {
		logging.FromContext(r.Context()).Error("ingestion failed",
			"bucket", note.Bucket, "object", note.Name, "error", err,
		)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Processed file: %s", note.Name)
}

// handleAssignBed applies a bed occupancy change from the dashboard.
func (s *Server) handleAssignBed(w http.ResponseWriter, r *http.Request) {
	var req core.AssignBedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.service.AssignBed(r.Context(), req); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "Bed updated successfully")
}

func (s *Server) handleListBeds(w http.ResponseWriter, r *http.Request) {
	beds, err := s.service.ListBeds(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, beds)
}

func (s *Server) handleGetBed(w http.ResponseWriter, r *http.Request) {
	bedNumber := chi.URLParam(r, "bedNumber")
	if bedNumber == "" {
		writeError(w, r, http.StatusBadRequest, "missing bed number")
		return
	}

	bed, err := s.service.GetBedByNumber(r.Context(), bedNumber)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, bed)
}

func (s *Server) handleListWards(w http.ResponseWriter, r *http.Request) {
	wards, err := s.service.ListWardSummaries(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, wards)
}

func (s *Server) handleListPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := s.service.ListPatients(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, patients)
}

func (s *Server) handleLatestAdmissions(w http.ResponseWriter, r *http.Request) {
	admissions, err := s.service.LatestAdmissions(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, admissions)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}
