package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atvirokodosprendimai/cliniccore/internal/core/domain"
	"github.com/atvirokodosprendimai/cliniccore/internal/core/ports"
)

type PatientService struct {
	repo     ports.PatientRepository
	recorder *AuditRecorder
	schemas  *FormSchemas
}

func NewPatientService(repo ports.PatientRepository, recorder *AuditRecorder, schemas *FormSchemas) *PatientService {
	return &PatientService{repo: repo, recorder: recorder, schemas: schemas}
}

func (s *PatientService) Create(ctx context.Context, patient domain.Patient) (domain.Patient, error) {
	if patient.ID == "" {
		patient.ID = uuid.NewString()
	}
	if err := patient.Validate(); err != nil {
		return domain.Patient{}, err
	}
	if err := s.schemas.Validate(domain.EntityTypePatient, patient.Details); err != nil {
		return domain.Patient{}, err
	}
	now := time.Now().UTC()
	patient.CreatedAt = now
	patient.UpdatedAt = now

	entry := s.recorder.Created(ctx, domain.EntityTypePatient, patient.ID, patient.AuditValues())
	if err := s.repo.Create(ctx, patient, entry); err != nil {
		return domain.Patient{}, err
	}
	return patient, nil
}

func (s *PatientService) Update(ctx context.Context, patient domain.Patient) (domain.Patient, error) {
	before, err := s.repo.Get(ctx, patient.ID)
	if err != nil {
		return domain.Patient{}, err
	}
	if err := patient.Validate(); err != nil {
		return domain.Patient{}, err
	}
	if err := s.schemas.Validate(domain.EntityTypePatient, patient.Details); err != nil {
		return domain.Patient{}, err
	}
	patient.CreatedAt = before.CreatedAt
	patient.UpdatedAt = time.Now().UTC()

	entry := s.recorder.Updated(ctx, domain.EntityTypePatient, patient.ID, before.AuditValues(), patient.AuditValues())
	if err := s.repo.Update(ctx, patient, entry); err != nil {
		return domain.Patient{}, err
	}
	return patient, nil
}

func (s *PatientService) Delete(ctx context.Context, id string) (bool, error) {
	before, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	entry := s.recorder.Deleted(ctx, domain.EntityTypePatient, id, before.AuditValues())
	return s.repo.Delete(ctx, id, entry)
}

func (s *PatientService) Get(ctx context.Context, id string) (domain.Patient, error) {
	if id == "" {
		return domain.Patient{}, domain.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *PatientService) List(ctx context.Context, afterID string, limit int) ([]domain.Patient, error) {
	return s.repo.List(ctx, afterID, clampLimit(limit))
}

// BulkImport loads a batch of patients, typically historical records
// from a previous system. The caller decides whether the import shows
// up in the audit trail; audited=false suspends capture for the whole
// batch without touching the process-wide switch.
func (s *PatientService) BulkImport(ctx context.Context, patients []domain.Patient, audited bool) (int, error) {
	if !audited {
		ctx = SuspendAudit(ctx)
	}
	imported := 0
	for _, patient := range patients {
		if _, err := s.Create(ctx, patient); err != nil {
			return imported, fmt.Errorf("import patient %s: %w", patient.ID, err)
		}
		imported++
	}
	return imported, nil
}
