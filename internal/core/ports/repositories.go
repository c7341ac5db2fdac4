package ports

import (
	"context"

	"github.com/atvirokodosprendimai/cliniccore/internal/core/domain"
)

// Aggregate repositories persist the business row and its audit entry
// in one transaction. A nil entry means the mutation is not audited
// (recorder disabled, suspended, or a no-op update).

type PatientRepository interface {
	Create(ctx context.Context, patient domain.Patient, entry *domain.AuditEntry) error
	Update(ctx context.Context, patient domain.Patient, entry *domain.AuditEntry) error
	Delete(ctx context.Context, id string, entry *domain.AuditEntry) (bool, error)
	Get(ctx context.Context, id string) (domain.Patient, error)
	List(ctx context.Context, afterID string, limit int) ([]domain.Patient, error)
}

type CustomerRepository interface {
	Create(ctx context.Context, customer domain.Customer, entry *domain.AuditEntry) error
	Update(ctx context.Context, customer domain.Customer, entry *domain.AuditEntry) error
	Delete(ctx context.Context, id string, entry *domain.AuditEntry) (bool, error)
	Get(ctx context.Context, id string) (domain.Customer, error)
	List(ctx context.Context, afterID string, limit int) ([]domain.Customer, error)
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice domain.Invoice, entry *domain.AuditEntry) error
	Update(ctx context.Context, invoice domain.Invoice, entry *domain.AuditEntry) error
	Delete(ctx context.Context, id string, entry *domain.AuditEntry) (bool, error)
	Get(ctx context.Context, id string) (domain.Invoice, error)
	List(ctx context.Context, afterID string, limit int) ([]domain.Invoice, error)

	// NumbersByYear returns every committed invoice number carrying the
	// year prefix. The gap report reads issued numbers through this.
	NumbersByYear(ctx context.Context, year int) ([]string, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, appointment domain.Appointment, entry *domain.AuditEntry) error
	Update(ctx context.Context, appointment domain.Appointment, entry *domain.AuditEntry) error
	Delete(ctx context.Context, id string, entry *domain.AuditEntry) (bool, error)
	Get(ctx context.Context, id string) (domain.Appointment, error)
	List(ctx context.Context, afterID string, limit int) ([]domain.Appointment, error)
}
