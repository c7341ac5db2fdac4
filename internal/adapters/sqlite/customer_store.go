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

type customerModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Email     string    `gorm:"column:email"`
	VATCode   string    `gorm:"column:vat_code"`
	Address   string    `gorm:"column:address"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (customerModel) TableName() string {
	return "customers"
}

type CustomerRepository struct {
	db *gormsqlite.DB
}

func NewCustomerRepository(db *gormsqlite.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, customer domain.Customer, entry *domain.AuditEntry) error {
	model := customerToModel(customer)
	return r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		if err := tx.Create(&model).Error; err != nil {
			return fmt.Errorf("insert customer: %w", err)
		}
		return insertAuditEntry(tx.DB, entry)
	})
}

func (r *CustomerRepository) Update(ctx context.Context, customer domain.Customer, entry *domain.AuditEntry) error {
	model := customerToModel(customer)
	return r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Model(&customerModel{}).Where("id = ?", model.ID).Updates(map[string]any{
			"name":       model.Name,
			"email":      model.Email,
			"vat_code":   model.VATCode,
			"address":    model.Address,
			"updated_at": model.UpdatedAt,
		})
		if res.Error != nil {
			return fmt.Errorf("update customer: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return insertAuditEntry(tx.DB, entry)
	})
}

func (r *CustomerRepository) Delete(ctx context.Context, id string, entry *domain.AuditEntry) (bool, error) {
	deleted := false
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Where("id = ?", id).Delete(&customerModel{})
		if res.Error != nil {
			return fmt.Errorf("delete customer: %w", res.Error)
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

func (r *CustomerRepository) Get(ctx context.Context, id string) (domain.Customer, error) {
	var model customerModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Customer{}, domain.ErrNotFound
		}
		return domain.Customer{}, fmt.Errorf("get customer: %w", err)
	}
	return customerToDomain(model), nil
}

func (r *CustomerRepository) List(ctx context.Context, afterID string, limit int) ([]domain.Customer, error) {
	var models []customerModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		query := tx.Model(&customerModel{})
		if afterID != "" {
			query = query.Where("id > ?", afterID)
		}
		return query.Order("id ASC").Limit(limit).Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	customers := make([]domain.Customer, 0, len(models))
	for _, model := range models {
		customers = append(customers, customerToDomain(model))
	}
	return customers, nil
}

func customerToModel(c domain.Customer) customerModel {
	return customerModel{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		VATCode:   c.VATCode,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func customerToDomain(model customerModel) domain.Customer {
	return domain.Customer{
		ID:        model.ID,
		Name:      model.Name,
		Email:     model.Email,
		VATCode:   model.VATCode,
		Address:   model.Address,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
