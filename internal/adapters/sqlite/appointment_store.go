package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/atvirokodosprendimai/cliniccore/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/cliniccore/internal/core/domain"
)

type appointmentModel struct {
	ID        string     `gorm:"column:id;primaryKey"`
	PatientID string     `gorm:"column:patient_id;not null"`
	StartsAt  time.Time  `gorm:"column:starts_at;not null"`
	EndsAt    *time.Time `gorm:"column:ends_at"`
	Status    string     `gorm:"column:status;not null"`
	Notes     string     `gorm:"column:notes"`
	CreatedAt time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt time.Time  `gorm:"column:updated_at;not null"`
}

func (appointmentModel) TableName() string {
	return "appointments"
}

type AppointmentRepository struct {
	db *gormsqlite.DB
}

func NewAppointmentRepository(db *gormsqlite.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(ctx context.Context, appointment domain.Appointment, entry *domain.AuditEntry) error {
	model := appointmentToModel(appointment)
	return r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		if err := tx.Create(&model).Error; err != nil {
			return fmt.Errorf("insert appointment: %w", err)
		}
		return insertAuditEntry(tx.DB, entry)
	})
}

func (r *AppointmentRepository) Update(ctx context.Context, appointment domain.Appointment, entry *domain.AuditEntry) error {
	model := appointmentToModel(appointment)
	return r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Model(&appointmentModel{}).Where("id = ?", model.ID).Updates(map[string]any{
			"patient_id": model.PatientID,
			"starts_at":  model.StartsAt,
			"ends_at":    model.EndsAt,
			"status":     model.Status,
			"notes":      model.Notes,
			"updated_at": model.UpdatedAt,
		})
		if res.Error != nil {
			return fmt.Errorf("update appointment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return insertAuditEntry(tx.DB, entry)
	})
}

func (r *AppointmentRepository) Delete(ctx context.Context, id string, entry *domain.AuditEntry) (bool, error) {
	deleted := false
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Where("id = ?", id).Delete(&appointmentModel{})
		if res.Error != nil {
			return fmt.Errorf("delete appointment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		return insertAuditEntry(tx.DB, entry)
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (r *AppointmentRepository) Get(ctx context.Context, id string) (domain.Appointment, error) {
	var model appointmentModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Appointment{}, domain.ErrNotFound
		}
		return domain.Appointment{}, fmt.Errorf("get appointment: %w", err)
	}
	return appointmentToDomain(model), nil
}

func (r *AppointmentRepository) List(ctx context.Context, afterID string, limit int) ([]domain.Appointment, error) {
	var models []appointmentModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		query := tx.Model(&appointmentModel{})
		if afterID != "" {
			query = query.Where("id > ?", afterID)
		}
		return query.Order("id ASC").Limit(limit).Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	appointments := make([]domain.Appointment, 0, len(models))
	for _, model := range models {
		appointments = append(appointments, appointmentToDomain(model))
	}
	return appointments, nil
}

func appointmentToModel(a domain.Appointment) appointmentModel {
	model := appointmentModel{
		ID:        a.ID,
		PatientID: a.PatientID,
		StartsAt:  a.StartsAt,
		Status:    string(a.Status),
		Notes:     a.Notes,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if !a.EndsAt.IsZero() {
		endsAt := a.EndsAt
		model.EndsAt = &endsAt
	}
	return model
}

func appointmentToDomain(model appointmentModel) domain.Appointment {
	a := domain.Appointment{
		ID:        model.ID,
		PatientID: model.PatientID,
		StartsAt:  model.StartsAt,
		Status:    domain.AppointmentStatus(model.Status),
		Notes:     model.Notes,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	if model.EndsAt != nil {
		a.EndsAt = *model.EndsAt
	}
	return a
}
