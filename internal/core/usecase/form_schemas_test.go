package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/atvirokodosprendimai/cliniccore/internal/core/domain"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04:05", value)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return ts.UTC()
}

func TestFormSchemasValidPatientDetails(t *testing.T) {
	schemas, err := NewFormSchemas()
	if err != nil {
		t.Fatalf("load schemas: %v", err)
	}

	details := []byte(`{"insuranceProvider": "VLK", "allergies": ["penicillin"]}`)
	if err := schemas.Validate(domain.EntityTypePatient, details); err != nil {
		t.Fatalf("expected valid details, got %v", err)
	}
}

func TestFormSchemasInvalidPatientDetails(t *testing.T) {
	schemas, err := NewFormSchemas()
	if err != nil {
		t.Fatalf("load schemas: %v", err)
	}

	cases := []struct {
		name    string
		payload []byte
	}{
		{"unknown field", []byte(`{"bloodType": "A+"}`)},
		{"wrong type", []byte(`{"allergies": "penicillin"}`)},
		{"not json", []byte(`{notjson`)},
	}
	for _, tc := range cases {
		err := schemas.Validate(domain.EntityTypePatient, tc.payload)
		var violation *domain.ErrSchemaViolation
		if !errors.As(err, &violation) {
			t.Fatalf("%s: expected schema violation, got %v", tc.name, err)
		}
		if len(violation.Errors) == 0 {
			t.Fatalf("%s: violation carries no messages", tc.name)
		}
	}
}

func TestFormSchemasInvoiceLines(t *testing.T) {
	schemas, err := NewFormSchemas()
	if err != nil {
		t.Fatalf("load schemas: %v", err)
	}

	valid := []byte(`[{"description": "Consultation", "quantity": 1, "unitPriceCents": 5000}]`)
	if err := schemas.Validate(domain.EntityTypeInvoice, valid); err != nil {
		t.Fatalf("expected valid lines, got %v", err)
	}

	invalid := []byte(`[{"description": "Consultation"}]`)
	var violation *domain.ErrSchemaViolation
	if err := schemas.Validate(domain.EntityTypeInvoice, invalid); !errors.As(err, &violation) {
		t.Fatalf("expected schema violation, got %v", err)
	}
}

func TestFormSchemasSkipsEmptyAndUnknownTypes(t *testing.T) {
	schemas, err := NewFormSchemas()
	if err != nil {
		t.Fatalf("load schemas: %v", err)
	}

	if err := schemas.Validate(domain.EntityTypePatient, nil); err != nil {
		t.Fatalf("empty payload must pass: %v", err)
	}
	if err := schemas.Validate(domain.EntityTypeAppointment, []byte(`{"anything": true}`)); err != nil {
		t.Fatalf("type without a schema must pass: %v", err)
	}
}
