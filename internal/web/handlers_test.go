package web

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wardsync/wardsync/internal/config"
	"github.com/wardsync/wardsync/internal/core"
)

// stubService scripts the handlers' dependency. Each method returns the
// configured value; calls are recorded for assertion.
type stubService struct {
	ingestResult *core.IngestResult
	ingestErr    error
	assignErr    error
	beds         []core.BedRow
	bedDetail    *core.BedDetail
	bedErr       error

	gotBucket string
	gotName   string
	gotAssign core.AssignBedRequest
}

func (s *stubService) ProcessObject(_ context.Context, bucket, name string) (*core.IngestResult, error) {
	s.gotBucket, s.gotName = bucket, name
	if s.ingestErr != nil {
		return nil, s.ingestErr
	}
	if s.ingestResult != nil {
		return s.ingestResult, nil
	}
	return &core.IngestResult{Bucket: bucket, Object: name}, nil
}

func (s *stubService) AssignBed(_ context.Context, req core.AssignBedRequest) error {
	s.gotAssign = req
	return s.assignErr
}

func (s *stubService) ListBeds(context.Context) ([]core.BedRow, error) {
	return s.beds, s.bedErr
}

func (s *stubService) GetBedByNumber(context.Context, string) (*core.BedDetail, error) {
	return s.bedDetail, s.bedErr
}

func (s *stubService) ListWardSummaries(context.Context) ([]core.WardSummary, error) {
	return nil, s.bedErr
}

func (s *stubService) ListPatients(context.Context) ([]core.PatientRow, error) {
	return nil, s.bedErr
}

func (s *stubService) LatestAdmissions(context.Context) ([]core.AdmissionRow, error) {
	return nil, s.bedErr
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           8080,
			RequestTimeout: 30 * time.Second,
		},
		Ingest: config.IngestConfig{MaxObjectSize: 1 << 20},
	}
}

func serve(t *testing.T, svc Service, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	NewServer(svc, testConfig()).Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(t, &stubService{}, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("body = %q, want ok", rec.Body.String())
	}
}

func TestIngestTriggerRawNotification(t *testing.T) {
	svc := &stubService{}
	req := httptest.NewRequest(http.MethodPost, "/",
		strings.NewReader(`{"bucket":"feeds","name":"patients.csv"}`))

	rec := serve(t, svc, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	if svc.gotBucket != "feeds" || svc.gotName != "patients.csv" {
		t.Errorf("service called with %s/%s", svc.gotBucket, svc.gotName)
	}
	if rec.Body.String() != "Processed file: patients.csv" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestIngestTriggerEnvelope(t *testing.T) {
	inner, _ := json.Marshal(map[string]string{"bucket": "feeds", "name": "beds.csv"})
	payload := fmt.Sprintf(`{"message":{"data":%q}}`, base64.StdEncoding.EncodeToString(inner))

	svc := &stubService{}
	rec := serve(t, svc, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	if svc.gotBucket != "feeds" || svc.gotName != "beds.csv" {
		t.Errorf("service called with %s/%s", svc.gotBucket, svc.gotName)
	}
}

func TestIngestTriggerBadRequests(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantBody string
	}{
		{name: "not json", body: "nope", wantBody: "invalid JSON body"},
		{name: "missing bucket", body: `{"name":"x.csv"}`, wantBody: "Missing bucket or filename"},
		{name: "missing name", body: `{"bucket":"feeds"}`, wantBody: "Missing bucket or filename"},
		{name: "bad envelope encoding", body: `{"message":{"data":"%%%"}}`, wantBody: "invalid message data encoding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, &stubService{},
				httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
		})
	}
}

// The trigger is machine-facing: a processing failure surfaces the raw error
// so the notification log shows what broke.
func TestIngestTriggerFailureReturnsRawError(t *testing.T) {
	svc := &stubService{ingestErr: errors.New("patients.csv line 3: constraint violation")}
	req := httptest.NewRequest(http.MethodPost, "/",
		strings.NewReader(`{"bucket":"feeds","name":"patients.csv"}`))

	rec := serve(t, svc, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "line 3") {
		t.Errorf("body should carry the raw error: %q", rec.Body.String())
	}
}

func TestAssignBedSuccess(t *testing.T) {
	svc := &stubService{}
	req := httptest.NewRequest(http.MethodPost, "/beds/assign",
		strings.NewReader(`{"bed_id":7,"bed_status":"occupied","patient_id":12}`))

	rec := serve(t, svc, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "Bed updated successfully" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if svc.gotAssign.BedID == nil || *svc.gotAssign.BedID != 7 {
		t.Errorf("decoded request = %+v", svc.gotAssign)
	}
	if svc.gotAssign.PatientID == nil || *svc.gotAssign.PatientID != 12 {
		t.Errorf("decoded request = %+v", svc.gotAssign)
	}
}

// The legacy path must keep working for older dashboard builds.
func TestAssignBedLegacyPath(t *testing.T) {
	svc := &stubService{}
	req := httptest.NewRequest(http.MethodPost, "/beds/update",
		strings.NewReader(`{"bed_number":"ICU-07","bed_status":"available"}`))

	rec := serve(t, svc, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	if svc.gotAssign.BedNumber != "ICU-07" {
		t.Errorf("decoded request = %+v", svc.gotAssign)
	}
}

func TestAssignBedErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{name: "missing patient", err: core.ErrMissingPatient, wantStatus: 400, wantBody: core.ErrMissingPatient.Error()},
		{name: "unknown patient", err: core.ErrPatientNotFound, wantStatus: 400, wantBody: core.ErrPatientNotFound.Error()},
		{name: "unknown bed", err: core.ErrBedNotFound, wantStatus: 404, wantBody: core.ErrBedNotFound.Error()},
		{name: "store failure hidden", err: errors.New("pq: disk full"), wantStatus: 500, wantBody: "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{assignErr: tt.err}
			req := httptest.NewRequest(http.MethodPost, "/beds/assign",
				strings.NewReader(`{"bed_id":7,"bed_status":"occupied"}`))

			rec := serve(t, svc, req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var resp errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if resp.Error != tt.wantBody {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantBody)
			}
		})
	}
}

func TestAssignBedInvalidJSON(t *testing.T) {
	rec := serve(t, &stubService{},
		httptest.NewRequest(http.MethodPost, "/beds/assign", strings.NewReader("{")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListBeds(t *testing.T) {
	bedNum := "ICU-07"
	svc := &stubService{beds: []core.BedRow{{BedID: 7, BedNumber: &bedNum}}}

	rec := serve(t, svc, httptest.NewRequest(http.MethodGet, "/beds", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var got []core.BedRow
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].BedID != 7 {
		t.Errorf("got %+v", got)
	}
}

func TestGetBedNotFound(t *testing.T) {
	svc := &stubService{bedErr: core.ErrBedNotFound}

	rec := serve(t, svc, httptest.NewRequest(http.MethodGet, "/beds/ICU-99", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	rec := serve(t, &stubService{}, httptest.NewRequest(http.MethodOptions, "/beds", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS origin header")
	}
}
