package domain

import (
	"fmt"
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

type Appointment struct {
	ID        string
	PatientID string
	StartsAt  time.Time
	EndsAt    time.Time
	Status    AppointmentStatus
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a Appointment) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("%w: appointment id required", ErrInvalidInput)
	}
	if a.PatientID == "" {
		return fmt.Errorf("%w: patient id required", ErrInvalidInput)
	}
	if a.StartsAt.IsZero() {
		return fmt.Errorf("%w: start time required", ErrInvalidInput)
	}
	if !a.EndsAt.IsZero() && a.EndsAt.Before(a.StartsAt) {
		return fmt.Errorf("%w: end time before start time", ErrInvalidInput)
	}
	if !a.Status.Valid() {
		return fmt.Errorf("%w: unknown appointment status %q", ErrInvalidInput, a.Status)
	}
	return nil
}

func (a Appointment) AuditValues() map[string]any {
	values := map[string]any{
		"patient":  EntityRef{ID: a.PatientID, Type: EntityTypePatient},
		"startsAt": a.StartsAt,
		"endsAt":   nil,
		"status":   string(a.Status),
		"notes":    nil,
	}
	if !a.EndsAt.IsZero() {
		values["endsAt"] = a.EndsAt
	}
	if a.Notes != "" {
		values["notes"] = a.Notes
	}
	return values
}
