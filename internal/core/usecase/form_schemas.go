package usecase

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	santhosh "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/atvirokodosprendimai/cliniccore/internal/core/domain"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// FormSchemas validates the free-form JSON payloads aggregates carry
// (patient details, invoice lines) against schemas shipped with the
// binary. Schemas are compiled once at construction.
type FormSchemas struct {
	compiled map[string]*santhosh.Schema
}

func NewFormSchemas() (*FormSchemas, error) {
	files := map[string]string{
		domain.EntityTypePatient: "schemas/patient_details.json",
		domain.EntityTypeInvoice: "schemas/invoice_lines.json",
	}

	compiled := make(map[string]*santhosh.Schema, len(files))
	for entityType, path := range files {
		raw, err := schemaFS.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", path, err)
		}
		compiler := santhosh.NewCompiler()
		compiler.Draft = santhosh.Draft7
		if err := compiler.AddResource(path, bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", path, err)
		}
		schema, err := compiler.Compile(path)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", path, err)
		}
		compiled[entityType] = schema
	}

	return &FormSchemas{compiled: compiled}, nil
}

// Validate checks data against the entity type's schema. Entity types
// without a schema, and empty payloads, pass. Returns
// *domain.ErrSchemaViolation on failure.
func (f *FormSchemas) Validate(entityType string, data json.RawMessage) error {
	if len(data) == 0 {
		return nil
	}
	schema, ok := f.compiled[entityType]
	if !ok {
		return nil
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return &domain.ErrSchemaViolation{Errors: []string{"payload must be valid json"}}
	}
	if err := schema.Validate(v); err != nil {
		var ve *santhosh.ValidationError
		if errors.As(err, &ve) {
			return &domain.ErrSchemaViolation{Errors: collectValidationErrors(ve)}
		}
		return &domain.ErrSchemaViolation{Errors: []string{err.Error()}}
	}
	return nil
}

func collectValidationErrors(ve *santhosh.ValidationError) []string {
	var msgs []string
	for _, cause := range ve.Causes {
		msgs = append(msgs, collectValidationErrors(cause)...)
	}
	if len(ve.Causes) == 0 {
		msgs = append(msgs, ve.Error())
	}
	return msgs
}
