package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/atvirokodosprendimai/cliniccore/internal/core/domain"
	"github.com/atvirokodosprendimai/cliniccore/internal/core/usecase"
)

const testAPIKey = "test-api-key"

type stubPatientRepo struct {
	createFn func(ctx context.Context, patient domain.Patient, entry *domain.AuditEntry) error
	getFn    func(ctx context.Context, id string) (domain.Patient, error)
	listFn   func(ctx context.Context, afterID string, limit int) ([]domain.Patient, error)
}

func (s *stubPatientRepo) Create(ctx context.Context, patient domain.Patient, entry *domain.AuditEntry) error {
	if s.createFn != nil {
		return s.createFn(ctx, patient, entry)
	}
	return nil
}

func (s *stubPatientRepo) Update(context.Context, domain.Patient, *domain.AuditEntry) error {
	return nil
}

func (s *stubPatientRepo) Delete(context.Context, string, *domain.AuditEntry) (bool, error) {
	return true, nil
}

func (s *stubPatientRepo) Get(ctx context.Context, id string) (domain.Patient, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return domain.Patient{}, domain.ErrNotFound
}

func (s *stubPatientRepo) List(ctx context.Context, afterID string, limit int) ([]domain.Patient, error) {
	if s.listFn != nil {
		return s.listFn(ctx, afterID, limit)
	}
	return nil, nil
}

type stubCustomerRepo struct{}

func (s *stubCustomerRepo) Create(context.Context, domain.Customer, *domain.AuditEntry) error {
	return nil
}
func (s *stubCustomerRepo) Update(context.Context, domain.Customer, *domain.AuditEntry) error {
	return nil
}
func (s *stubCustomerRepo) Delete(context.Context, string, *domain.AuditEntry) (bool, error) {
	return true, nil
}
func (s *stubCustomerRepo) Get(context.Context, string) (domain.Customer, error) {
	return domain.Customer{}, domain.ErrNotFound
}
func (s *stubCustomerRepo) List(context.Context, string, int) ([]domain.Customer, error) {
	return nil, nil
}

type stubInvoiceRepo struct {
	createFn        func(ctx context.Context, invoice domain.Invoice, entry *domain.AuditEntry) error
	numbersByYearFn func(ctx context.Context, year int) ([]string, error)
}

func (s *stubInvoiceRepo) Create(ctx context.Context, invoice domain.Invoice, entry *domain.AuditEntry) error {
	if s.createFn != nil {
		return s.createFn(ctx, invoice, entry)
	}
	return nil
}

func (s *stubInvoiceRepo) Update(context.Context, domain.Invoice, *domain.AuditEntry) error {
	return nil
}

func (s *stubInvoiceRepo) Delete(context.Context, string, *domain.AuditEntry) (bool, error) {
	return true, nil
}

func (s *stubInvoiceRepo) Get(context.Context, string) (domain.Invoice, error) {
	return domain.Invoice{}, domain.ErrNotFound
}

func (s *stubInvoiceRepo) List(context.Context, string, int) ([]domain.Invoice, error) {
	return nil, nil
}

func (s *stubInvoiceRepo) NumbersByYear(ctx context.Context, year int) ([]string, error) {
	if s.numbersByYearFn != nil {
		return s.numbersByYearFn(ctx, year)
	}
	return nil, nil
}

type stubAppointmentRepo struct{}

func (s *stubAppointmentRepo) Create(context.Context, domain.Appointment, *domain.AuditEntry) error {
	return nil
}
func (s *stubAppointmentRepo) Update(context.Context, domain.Appointment, *domain.AuditEntry) error {
	return nil
}
func (s *stubAppointmentRepo) Delete(context.Context, string, *domain.AuditEntry) (bool, error) {
	return true, nil
}
func (s *stubAppointmentRepo) Get(context.Context, string) (domain.Appointment, error) {
	return domain.Appointment{}, domain.ErrNotFound
}
func (s *stubAppointmentRepo) List(context.Context, string, int) ([]domain.Appointment, error) {
	return nil, nil
}

type stubCounterStore struct {
	nextFn func(ctx context.Context, name, initialValue string) (string, error)
}

func (s *stubCounterStore) NextValue(ctx context.Context, name, initialValue string) (string, error) {
	if s.nextFn != nil {
		return s.nextFn(ctx, name, initialValue)
	}
	return "1", nil
}

type stubAuditRepo struct {
	listFn func(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error)
	getFn  func(ctx context.Context, id int64) (domain.AuditEntry, error)
}

func (s *stubAuditRepo) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	if s.listFn != nil {
		return s.listFn(ctx, filter)
	}
	return nil, nil
}

func (s *stubAuditRepo) Get(ctx context.Context, id int64) (domain.AuditEntry, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return domain.AuditEntry{}, domain.ErrNotFound
}

type stubAPIKeyRepo struct{}

func (s *stubAPIKeyRepo) FindByTokenHash(_ context.Context, tokenHash string) (domain.APIKey, error) {
	if tokenHash != usecase.HashToken(testAPIKey) {
		return domain.APIKey{}, domain.ErrNotFound
	}
	return domain.APIKey{TokenHash: tokenHash, Name: "test-client", Active: true, CreatedAt: time.Now().UTC()}, nil
}

func (s *stubAPIKeyRepo) Upsert(context.Context, domain.APIKey) error { return nil }

type testDeps struct {
	patients *stubPatientRepo
	invoices *stubInvoiceRepo
	counters *stubCounterStore
	audit    *stubAuditRepo
}

func testRouter(t *testing.T, deps testDeps) http.Handler {
	t.Helper()

	if deps.patients == nil {
		deps.patients = &stubPatientRepo{}
	}
	if deps.invoices == nil {
		deps.invoices = &stubInvoiceRepo{}
	}
	if deps.counters == nil {
		deps.counters = &stubCounterStore{}
	}
	if deps.audit == nil {
		deps.audit = &stubAuditRepo{}
	}

	schemas, err := usecase.NewFormSchemas()
	if err != nil {
		t.Fatalf("load schemas: %v", err)
	}
	recorder := usecase.NewAuditRecorder(true)

	patients := usecase.NewPatientService(deps.patients, recorder, schemas)
	customers := usecase.NewCustomerService(&stubCustomerRepo{}, recorder)
	invoices := usecase.NewInvoiceService(deps.invoices, usecase.NewSequenceService(deps.counters), recorder, schemas)
	appointments := usecase.NewAppointmentService(&stubAppointmentRepo{}, recorder)
	gaps := usecase.NewGapService(deps.invoices)
	audit := usecase.NewAuditService(deps.audit)
	auth := usecase.NewAuthService(&stubAPIKeyRepo{})

	return NewHandler(patients, customers, invoices, appointments, gaps, audit, auth).Router()
}

func withAuth(req *http.Request) { req.Header.Set("X-API-Key", testAPIKey) }

func TestProtectedRouteWithoutAuth(t *testing.T) {
	h := testRouter(t, testDeps{})
	req := httptest.NewRequest(http.MethodGet, "/v1/patients", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHealthzIsPublic(t *testing.T) {
	h := testRouter(t, testDeps{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCreatePatientCapturesMutationContext(t *testing.T) {
	var entry *domain.AuditEntry
	patients := &stubPatientRepo{createFn: func(_ context.Context, _ domain.Patient, e *domain.AuditEntry) error {
		entry = e
		return nil
	}}
	h := testRouter(t, testDeps{patients: patients})

	body := `{"first_name": "John", "last_name": "Smith"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/patients", strings.NewReader(body))
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	withAuth(req)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if entry == nil {
		t.Fatal("expected audit entry")
	}
	if entry.ChangedBy != "test-client" {
		t.Fatalf("unexpected actor: %s", entry.ChangedBy)
	}
	if entry.IPAddress != "203.0.113.9" {
		t.Fatalf("unexpected ip: %s", entry.IPAddress)
	}
	if entry.UserAgent != "test-agent" {
		t.Fatalf("unexpected user agent: %s", entry.UserAgent)
	}
}

func TestCreatePatientInvalidBody(t *testing.T) {
	h := testRouter(t, testDeps{})

	req := httptest.NewRequest(http.MethodPost, "/v1/patients", strings.NewReader(`{"first_name": `))
	withAuth(req)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreatePatientSchemaViolation(t *testing.T) {
	h := testRouter(t, testDeps{})

	body := `{"first_name": "John", "details": {"bloodType": "A+"}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/patients", strings.NewReader(body))
	withAuth(req)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Details) == 0 {
		t.Fatal("expected validation details")
	}
}

func TestCreateInvoiceReturnsNumber(t *testing.T) {
	h := testRouter(t, testDeps{counters: &stubCounterStore{nextFn: func(_ context.Context, name, _ string) (string, error) {
		return "7", nil
	}}})

	body := `{"customer_id": "c-1", "amount_cents": 12500, "currency": "EUR", "issued_at": "2026-02-01T10:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/invoices", strings.NewReader(body))
	withAuth(req)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Number string `json:"number"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Number != "20260007" {
		t.Fatalf("unexpected number: %s", resp.Number)
	}
	if resp.Status != "issued" {
		t.Fatalf("unexpected status: %s", resp.Status)
	}
}

func TestCreateInvoiceCounterConflict(t *testing.T) {
	h := testRouter(t, testDeps{counters: &stubCounterStore{nextFn: func(context.Context, string, string) (string, error) {
		return "", domain.ErrCounterConflict
	}}})

	body := `{"customer_id": "c-1", "amount_cents": 100, "currency": "EUR"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/invoices", strings.NewReader(body))
	withAuth(req)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestInvoiceGapsReport(t *testing.T) {
	h := testRouter(t, testDeps{invoices: &stubInvoiceRepo{numbersByYearFn: func(_ context.Context, year int) ([]string, error) {
		return []string{"20260001", "20260003"}, nil
	}}})

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/invoice-gaps?year=2026", nil)
	withAuth(req)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var report domain.GapReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.TotalGaps != 1 || len(report.Gaps) != 1 || report.Gaps[0] != "20260002" {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestListAuditPassesFilter(t *testing.T) {
	var seen domain.AuditFilter
	h := testRouter(t, testDeps{audit: &stubAuditRepo{listFn: func(_ context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
		seen = filter
		return []domain.AuditEntry{{ID: 9, EntityType: "patient", EntityID: "p-1", Operation: domain.OperationCreated, ChangedAt: time.Now().UTC()}}, nil
	}}})

	req := httptest.NewRequest(http.MethodGet, "/v1/audit?entity_type=patient&entity_id=p-1&operation=created&after=50&limit=10", nil)
	withAuth(req)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if seen.EntityType != "patient" || seen.EntityID != "p-1" || seen.Operation != domain.OperationCreated {
		t.Fatalf("unexpected filter: %+v", seen)
	}
	if seen.AfterID != 50 || seen.Limit != 10 {
		t.Fatalf("unexpected pagination: %+v", seen)
	}
}

func TestListAuditRejectsUnknownOperation(t *testing.T) {
	h := testRouter(t, testDeps{})

	req := httptest.NewRequest(http.MethodGet, "/v1/audit?operation=purged", nil)
	withAuth(req)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetMissingPatient(t *testing.T) {
	h := testRouter(t, testDeps{})

	req := httptest.NewRequest(http.MethodGet, "/v1/patients/no-such", nil)
	withAuth(req)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
