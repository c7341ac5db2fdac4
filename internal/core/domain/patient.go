package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

type Patient struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	BirthDate *time.Time
	Details   json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Patient) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: patient id required", ErrInvalidInput)
	}
	if p.FirstName == "" {
		return fmt.Errorf("%w: first name required", ErrInvalidInput)
	}
	if len(p.Details) > 0 && !json.Valid(p.Details) {
		return fmt.Errorf("%w: details must be valid json", ErrInvalidInput)
	}
	return nil
}

// AuditValues is the explicit serializable field list for the audit
// trail. Fields not named here are never captured.
func (p Patient) AuditValues() map[string]any {
	var birthDate any
	if p.BirthDate != nil {
		birthDate = *p.BirthDate
	}
	var email any
	if p.Email != "" {
		email = p.Email
	}
	var phone any
	if p.Phone != "" {
		phone = p.Phone
	}
	var lastName any
	if p.LastName != "" {
		lastName = p.LastName
	}
	var details any
	if len(p.Details) > 0 {
		details = string(p.Details)
	}
	return map[string]any{
		"firstName": p.FirstName,
		"lastName":  lastName,
		"email":     email,
		"phone":     phone,
		"birthDate": birthDate,
		"details":   details,
	}
}
