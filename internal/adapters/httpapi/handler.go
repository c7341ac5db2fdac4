package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/atvirokodosprendimai/cliniccore/internal/core/domain"
	"github.com/atvirokodosprendimai/cliniccore/internal/core/usecase"
)

const (
	timeFormat      = "2006-01-02T15:04:05.999999999Z07:00"
	maxJSONBodySize = 1 << 20
)

type Handler struct {
	patients     *usecase.PatientService
	customers    *usecase.CustomerService
	invoices     *usecase.InvoiceService
	appointments *usecase.AppointmentService
	gaps         *usecase.GapService
	audit        *usecase.AuditService
	auth         *usecase.AuthService
}

func NewHandler(
	patients *usecase.PatientService,
	customers *usecase.CustomerService,
	invoices *usecase.InvoiceService,
	appointments *usecase.AppointmentService,
	gaps *usecase.GapService,
	audit *usecase.AuditService,
	auth *usecase.AuthService,
) *Handler {
	return &Handler{
		patients:     patients,
		customers:    customers,
		invoices:     invoices,
		appointments: appointments,
		gaps:         gaps,
		audit:        audit,
		auth:         auth,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", h.healthz)

	r.Group(func(pr chi.Router) {
		pr.Use(h.requireAPIKey)

		pr.Post("/v1/patients", h.createPatient)
		pr.Get("/v1/patients", h.listPatients)
		pr.Get("/v1/patients/{id}", h.getPatient)
		pr.Put("/v1/patients/{id}", h.updatePatient)
		pr.Delete("/v1/patients/{id}", h.deletePatient)
		pr.Post("/v1/patients:bulk-import", h.bulkImportPatients)

		pr.Post("/v1/customers", h.createCustomer)
		pr.Get("/v1/customers", h.listCustomers)
		pr.Get("/v1/customers/{id}", h.getCustomer)
		pr.Put("/v1/customers/{id}", h.updateCustomer)
		pr.Delete("/v1/customers/{id}", h.deleteCustomer)

		pr.Post("/v1/invoices", h.createInvoice)
		pr.Get("/v1/invoices", h.listInvoices)
		pr.Get("/v1/invoices/{id}", h.getInvoice)
		pr.Put("/v1/invoices/{id}", h.updateInvoice)
		pr.Delete("/v1/invoices/{id}", h.deleteInvoice)
		pr.Post("/v1/invoices/{id}:void", h.voidInvoice)

		pr.Post("/v1/appointments", h.createAppointment)
		pr.Get("/v1/appointments", h.listAppointments)
		pr.Get("/v1/appointments/{id}", h.getAppointment)
		pr.Put("/v1/appointments/{id}", h.updateAppointment)
		pr.Delete("/v1/appointments/{id}", h.deleteAppointment)

		pr.Get("/v1/reports/invoice-gaps", h.invoiceGaps)

		pr.Get("/v1/audit", h.listAudit)
		pr.Get("/v1/audit/{id}", h.getAudit)
	})

	return r
}

type patientRequest struct {
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone"`
	BirthDate string          `json:"birth_date"`
	Details   json.RawMessage `json:"details"`
}

type patientResponse struct {
	ID        string          `json:"id"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name,omitempty"`
	Email     string          `json:"email,omitempty"`
	Phone     string          `json:"phone,omitempty"`
	BirthDate string          `json:"birth_date,omitempty"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

func (h *Handler) createPatient(w http.ResponseWriter, r *http.Request) {
	var req patientRequest
	if !decodeBody(w, r, &req) {
		return
	}
	patient, ok := patientFromRequest(w, req)
	if !ok {
		return
	}

	created, err := h.patients.Create(r.Context(), patient)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPatientResponse(created))
}

func (h *Handler) updatePatient(w http.ResponseWriter, r *http.Request) {
	var req patientRequest
	if !decodeBody(w, r, &req) {
		return
	}
	patient, ok := patientFromRequest(w, req)
	if !ok {
		return
	}
	patient.ID = chi.URLParam(r, "id")

	updated, err := h.patients.Update(r.Context(), patient)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPatientResponse(updated))
}

func (h *Handler) getPatient(w http.ResponseWriter, r *http.Request) {
	patient, err := h.patients.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPatientResponse(patient))
}

func (h *Handler) deletePatient(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.patients.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (h *Handler) listPatients(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	patients, err := h.patients.List(r.Context(), r.URL.Query().Get("after"), limit)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	items := make([]patientResponse, 0, len(patients))
	for _, patient := range patients {
		items = append(items, toPatientResponse(patient))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type bulkImportRequest struct {
	Audited  bool             `json:"audited"`
	Patients []patientRequest `json:"patients"`
}

func (h *Handler) bulkImportPatients(w http.ResponseWriter, r *http.Request) {
	var req bulkImportRequest
	if !decodeBody(w, r, &req) {
		return
	}

	patients := make([]domain.Patient, 0, len(req.Patients))
	for _, pr := range req.Patients {
		patient, ok := patientFromRequest(w, pr)
		if !ok {
			return
		}
		patients = append(patients, patient)
	}

	imported, err := h.patients.BulkImport(r.Context(), patients, req.Audited)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": imported})
}

type customerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	VATCode string `json:"vat_code"`
	Address string `json:"address"`
}

type customerResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	VATCode   string `json:"vat_code,omitempty"`
	Address   string `json:"address,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	created, err := h.customers.Create(r.Context(), domain.Customer{
		Name:    req.Name,
		Email:   req.Email,
		VATCode: req.VATCode,
		Address: req.Address,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerResponse(created))
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	updated, err := h.customers.Update(r.Context(), domain.Customer{
		ID:      chi.URLParam(r, "id"),
		Name:    req.Name,
		Email:   req.Email,
		VATCode: req.VATCode,
		Address: req.Address,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerResponse(updated))
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerResponse(customer))
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.customers.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	customers, err := h.customers.List(r.Context(), r.URL.Query().Get("after"), limit)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	items := make([]customerResponse, 0, len(customers))
	for _, customer := range customers {
		items = append(items, toCustomerResponse(customer))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type invoiceRequest struct {
	CustomerID  string          `json:"customer_id"`
	AmountCents int64           `json:"amount_cents"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	Lines       json.RawMessage `json:"lines"`
	IssuedAt    string          `json:"issued_at"`
}

type invoiceResponse struct {
	ID          string          `json:"id"`
	Number      string          `json:"number"`
	CustomerID  string          `json:"customer_id"`
	AmountCents int64           `json:"amount_cents"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	Lines       json.RawMessage `json:"lines,omitempty"`
	IssuedAt    string          `json:"issued_at"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	invoice, ok := invoiceFromRequest(w, req)
	if !ok {
		return
	}

	created, err := h.invoices.Create(r.Context(), invoice)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvoiceResponse(created))
}

func (h *Handler) updateInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	invoice, ok := invoiceFromRequest(w, req)
	if !ok {
		return
	}
	invoice.ID = chi.URLParam(r, "id")

	updated, err := h.invoices.Update(r.Context(), invoice)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceResponse(updated))
}

func (h *Handler) voidInvoice(w http.ResponseWriter, r *http.Request) {
	voided, err := h.invoices.Void(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceResponse(voided))
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.invoices.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceResponse(invoice))
}

func (h *Handler) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.invoices.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	invoices, err := h.invoices.List(r.Context(), r.URL.Query().Get("after"), limit)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	items := make([]invoiceResponse, 0, len(invoices))
	for _, invoice := range invoices {
		items = append(items, toInvoiceResponse(invoice))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type appointmentRequest struct {
	PatientID string `json:"patient_id"`
	StartsAt  string `json:"starts_at"`
	EndsAt    string `json:"ends_at"`
	Status    string `json:"status"`
	Notes     string `json:"notes"`
}

type appointmentResponse struct {
	ID        string `json:"id"`
	PatientID string `json:"patient_id"`
	StartsAt  string `json:"starts_at"`
	EndsAt    string `json:"ends_at,omitempty"`
	Status    string `json:"status"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func (h *Handler) createAppointment(w http.ResponseWriter, r *http.Request) {
	var req appointmentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	appointment, ok := appointmentFromRequest(w, req)
	if !ok {
		return
	}

	created, err := h.appointments.Create(r.Context(), appointment)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAppointmentResponse(created))
}

func (h *Handler) updateAppointment(w http.ResponseWriter, r *http.Request) {
	var req appointmentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	appointment, ok := appointmentFromRequest(w, req)
	if !ok {
		return
	}
	appointment.ID = chi.URLParam(r, "id")

	updated, err := h.appointments.Update(r.Context(), appointment)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponse(updated))
}

func (h *Handler) getAppointment(w http.ResponseWriter, r *http.Request) {
	appointment, err := h.appointments.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponse(appointment))
}

func (h *Handler) deleteAppointment(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.appointments.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (h *Handler) listAppointments(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	appointments, err := h.appointments.List(r.Context(), r.URL.Query().Get("after"), limit)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	items := make([]appointmentResponse, 0, len(appointments))
	for _, appointment := range appointments {
		items = append(items, toAppointmentResponse(appointment))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) invoiceGaps(w http.ResponseWriter, r *http.Request) {
	year := 0
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "year must be integer")
			return
		}
		year = parsed
	}

	report, err := h.gaps.FindGaps(r.Context(), year)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type auditEntryResponse struct {
	ID         int64                         `json:"id"`
	EntityType string                        `json:"entity_type"`
	EntityID   string                        `json:"entity_id"`
	Operation  string                        `json:"operation"`
	Changes    map[string]domain.FieldChange `json:"changes"`
	ChangedAt  string                        `json:"changed_at"`
	ChangedBy  string                        `json:"changed_by,omitempty"`
	IPAddress  string                        `json:"ip_address,omitempty"`
	UserAgent  string                        `json:"user_agent,omitempty"`
}

func (h *Handler) listAudit(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	afterID := int64(0)
	if raw := r.URL.Query().Get("after"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "after must be integer")
			return
		}
		afterID = parsed
	}

	entries, err := h.audit.List(r.Context(), domain.AuditFilter{
		EntityType: r.URL.Query().Get("entity_type"),
		EntityID:   r.URL.Query().Get("entity_id"),
		Operation:  domain.Operation(r.URL.Query().Get("operation")),
		AfterID:    afterID,
		Limit:      limit,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	items := make([]auditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, toAuditEntryResponse(entry))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) getAudit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be integer")
		return
	}
	entry, err := h.audit.Get(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuditEntryResponse(entry))
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// requireAPIKey authenticates the request and attaches the mutation
// context the audit recorder captures: the key name as actor, client
// IP, and user agent.
func (h *Handler) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.Header.Get("X-API-Key"))
		if token == "" {
			auth := strings.TrimSpace(r.Header.Get("Authorization"))
			if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
				token = strings.TrimSpace(auth[7:])
			}
		}

		apiKey, err := h.auth.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, usecase.ErrUnauthorized) {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		ctx := usecase.WithMutationContext(r.Context(), domain.MutationContext{
			Actor:     apiKey.Name,
			IPAddress: clientIP(r),
			UserAgent: r.UserAgent(),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if i := strings.IndexByte(forwarded, ','); i >= 0 {
			return strings.TrimSpace(forwarded[:i])
		}
		return strings.TrimSpace(forwarded)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func patientFromRequest(w http.ResponseWriter, req patientRequest) (domain.Patient, bool) {
	patient := domain.Patient{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Details:   req.Details,
	}
	if req.BirthDate != "" {
		birthDate, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "birth_date must be YYYY-MM-DD")
			return domain.Patient{}, false
		}
		patient.BirthDate = &birthDate
	}
	return patient, true
}

func invoiceFromRequest(w http.ResponseWriter, req invoiceRequest) (domain.Invoice, bool) {
	invoice := domain.Invoice{
		CustomerID:  req.CustomerID,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Status:      domain.InvoiceStatus(req.Status),
		Lines:       req.Lines,
	}
	if req.IssuedAt != "" {
		issuedAt, err := time.Parse(time.RFC3339, req.IssuedAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "issued_at must be RFC3339")
			return domain.Invoice{}, false
		}
		invoice.IssuedAt = issuedAt
	}
	return invoice, true
}

func appointmentFromRequest(w http.ResponseWriter, req appointmentRequest) (domain.Appointment, bool) {
	appointment := domain.Appointment{
		PatientID: req.PatientID,
		Status:    domain.AppointmentStatus(req.Status),
		Notes:     req.Notes,
	}
	if req.StartsAt != "" {
		startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "starts_at must be RFC3339")
			return domain.Appointment{}, false
		}
		appointment.StartsAt = startsAt
	}
	if req.EndsAt != "" {
		endsAt, err := time.Parse(time.RFC3339, req.EndsAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "ends_at must be RFC3339")
			return domain.Appointment{}, false
		}
		appointment.EndsAt = endsAt
	}
	return appointment, true
}

func toPatientResponse(p domain.Patient) patientResponse {
	resp := patientResponse{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Phone:     p.Phone,
		Details:   p.Details,
		CreatedAt: p.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt: p.UpdatedAt.UTC().Format(timeFormat),
	}
	if p.BirthDate != nil {
		resp.BirthDate = p.BirthDate.Format("2006-01-02")
	}
	return resp
}

func toCustomerResponse(c domain.Customer) customerResponse {
	return customerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		VATCode:   c.VATCode,
		Address:   c.Address,
		CreatedAt: c.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt: c.UpdatedAt.UTC().Format(timeFormat),
	}
}

func toInvoiceResponse(i domain.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:          i.ID,
		Number:      i.Number,
		CustomerID:  i.CustomerID,
		AmountCents: i.AmountCents,
		Currency:    i.Currency,
		Status:      string(i.Status),
		Lines:       i.Lines,
		IssuedAt:    i.IssuedAt.UTC().Format(timeFormat),
		CreatedAt:   i.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt:   i.UpdatedAt.UTC().Format(timeFormat),
	}
}

func toAppointmentResponse(a domain.Appointment) appointmentResponse {
	resp := appointmentResponse{
		ID:        a.ID,
		PatientID: a.PatientID,
		StartsAt:  a.StartsAt.UTC().Format(timeFormat),
		Status:    string(a.Status),
		Notes:     a.Notes,
		CreatedAt: a.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt: a.UpdatedAt.UTC().Format(timeFormat),
	}
	if !a.EndsAt.IsZero() {
		resp.EndsAt = a.EndsAt.UTC().Format(timeFormat)
	}
	return resp
}

func toAuditEntryResponse(entry domain.AuditEntry) auditEntryResponse {
	return auditEntryResponse{
		ID:         entry.ID,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Operation:  string(entry.Operation),
		Changes:    entry.Changes,
		ChangedAt:  entry.ChangedAt.UTC().Format(timeFormat),
		ChangedBy:  entry.ChangedBy,
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := ensureEOF(decoder); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}

func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be integer")
			return 0, false
		}
		limit = parsed
	}
	return limit, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		log.Printf("encode json response: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

func handleDomainError(w http.ResponseWriter, err error) {
	var schemaErr *domain.ErrSchemaViolation
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidCounterName):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrCounterConflict):
		writeError(w, http.StatusServiceUnavailable, "could not issue invoice number, please retry")
	case errors.As(err, &schemaErr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   "schema validation failed",
			"details": schemaErr.Errors,
		})
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func ensureEOF(decoder *json.Decoder) error {
	var extra json.RawMessage
	if err := decoder.Decode(&extra); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return errors.New("extra json tokens")
}
