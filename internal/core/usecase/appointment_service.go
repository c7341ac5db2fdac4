package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/atvirokodosprendimai/cliniccore/internal/core/domain"
	"github.com/atvirokodosprendimai/cliniccore/internal/core/ports"
)

type AppointmentService struct {
	repo     ports.AppointmentRepository
	recorder *AuditRecorder
}

func NewAppointmentService(repo ports.AppointmentRepository, recorder *AuditRecorder) *AppointmentService {
	return &AppointmentService{repo: repo, recorder: recorder}
}

func (s *AppointmentService) Create(ctx context.Context, appointment domain.Appointment) (domain.Appointment, error) {
	if appointment.ID == "" {
		appointment.ID = uuid.NewString()
	}
	if appointment.Status == "" {
		appointment.Status = domain.AppointmentStatusScheduled
	}
	if err := appointment.Validate(); err != nil {
		return domain.Appointment{}, err
	}
	now := time.Now().UTC()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	entry := s.recorder.Created(ctx, domain.EntityTypeAppointment, appointment.ID, appointment.AuditValues())
	if err := s.repo.Create(ctx, appointment, entry); err != nil {
		return domain.Appointment{}, err
	}
	return appointment, nil
}

func (s *AppointmentService) Update(ctx context.Context, appointment domain.Appointment) (domain.Appointment, error) {
	before, err := s.repo.Get(ctx, appointment.ID)
	if err != nil {
		return domain.Appointment{}, err
	}
	if appointment.Status == "" {
		appointment.Status = before.Status
	}
	if err := appointment.Validate(); err != nil {
		return domain.Appointment{}, err
	}
	appointment.CreatedAt = before.CreatedAt
	appointment.UpdatedAt = time.Now().UTC()

	entry := s.recorder.Updated(ctx, domain.EntityTypeAppointment, appointment.ID, before.AuditValues(), appointment.AuditValues())
	if err := s.repo.Update(ctx, appointment, entry); err != nil {
		return domain.Appointment{}, err
	}
	return appointment, nil
}

func (s *AppointmentService) Delete(ctx context.Context, id string) (bool, error) {
	before, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	entry := s.recorder.Deleted(ctx, domain.EntityTypeAppointment, id, before.AuditValues())
	return s.repo.Delete(ctx, id, entry)
}

func (s *AppointmentService) Get(ctx context.Context, id string) (domain.Appointment, error) {
	if id == "" {
		return domain.Appointment{}, domain.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *AppointmentService) List(ctx context.Context, afterID string, limit int) ([]domain.Appointment, error) {
	return s.repo.List(ctx, afterID, clampLimit(limit))
}
