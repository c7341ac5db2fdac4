package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/atvirokodosprendimai/cliniccore/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/cliniccore/internal/core/domain"
)

type patientModel struct {
	ID        string     `gorm:"column:id;primaryKey"`
	FirstName string     `gorm:"column:first_name;not null"`
	LastName  string     `gorm:"column:last_name"`
	Email     string     `gorm:"column:email"`
	Phone     string     `gorm:"column:phone"`
	BirthDate *time.Time `gorm:"column:birth_date"`
	Details   string     `gorm:"column:details"`
	CreatedAt time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt time.Time  `gorm:"column:updated_at;not null"`
}

func (patientModel) TableName() string {
	return "patients"
}

type PatientRepository struct {
	db *gormsqlite.DB
}

func NewPatientRepository(db *gormsqlite.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

func (r *PatientRepository) Create(ctx context.Context, patient domain.Patient, entry *domain.AuditEntry) error {
	model := patientToModel(patient)
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		if err := tx.Create(&model).Error; err != nil {
			return fmt.Errorf("insert patient: %w", err)
		}
		return insertAuditEntry(tx.DB, entry)
	})
	if err != nil {
		return err
	}
	return nil
}

func (r *PatientRepository) Update(ctx context.Context, patient domain.Patient, entry *domain.AuditEntry) error {
	model := patientToModel(patient)
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Model(&patientModel{}).Where("id = ?", model.ID).Updates(map[string]any{
			"first_name": model.FirstName,
			"last_name":  model.LastName,
			"email":      model.Email,
			"phone":      model.Phone,
			"birth_date": model.BirthDate,
			"details":    model.Details,
			"updated_at": model.UpdatedAt,
		})
		if res.Error != nil {
			return fmt.Errorf("update patient: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return insertAuditEntry(tx.DB, entry)
	})
	if err != nil {
		return err
	}
	return nil
}

func (r *PatientRepository) Delete(ctx context.Context, id string, entry *domain.AuditEntry) (bool, error) {
	deleted := false
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Where("id = ?", id).Delete(&patientModel{})
		if res.Error != nil {
			return fmt.Errorf("delete patient: %w", res.Error)
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

func (r *PatientRepository) Get(ctx context.Context, id string) (domain.Patient, error) {
	var model patientModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Patient{}, domain.ErrNotFound
		}
		return domain.Patient{}, fmt.Errorf("get patient: %w", err)
	}
	return patientToDomain(model), nil
}

func (r *PatientRepository) List(ctx context.Context, afterID string, limit int) ([]domain.Patient, error) {
	var models []patientModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		query := tx.Model(&patientModel{})
		if afterID != "" {
			query = query.Where("id > ?", afterID)
		}
		return query.Order("id ASC").Limit(limit).Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}

	patients := make([]domain.Patient, 0, len(models))
	for _, model := range models {
		patients = append(patients, patientToDomain(model))
	}
	return patients, nil
}

func patientToModel(p domain.Patient) patientModel {
	return patientModel{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Phone:     p.Phone,
		BirthDate: p.BirthDate,
		Details:   string(p.Details),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func patientToDomain(model patientModel) domain.Patient {
	p := domain.Patient{
		ID:        model.ID,
		FirstName: model.FirstName,
		LastName:  model.LastName,
		Email:     model.Email,
		Phone:     model.Phone,
		BirthDate: model.BirthDate,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	if model.Details != "" {
		p.Details = json.RawMessage(model.Details)
	}
	return p
}
