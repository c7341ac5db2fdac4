package domain

import (
	"fmt"
	"time"
)

type Customer struct {
	ID        string
	Name      string
	Email     string
	VATCode   string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c Customer) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: customer id required", ErrInvalidInput)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: customer name required", ErrInvalidInput)
	}
	return nil
}

func (c Customer) AuditValues() map[string]any {
	values := map[string]any{
		"name":    c.Name,
		"email":   nil,
		"vatCode": nil,
		"address": nil,
	}
	if c.Email != "" {
		values["email"] = c.Email
	}
	if c.VATCode != "" {
		values["vatCode"] = c.VATCode
	}
	if c.Address != "" {
		values["address"] = c.Address
	}
	return values
}
