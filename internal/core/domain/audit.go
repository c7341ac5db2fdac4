package domain

import "time"

type Operation string

const (
	OperationCreated Operation = "created"
	OperationUpdated Operation = "updated"
	OperationDeleted Operation = "deleted"
)

func (op Operation) Valid() bool {
	switch op {
	case OperationCreated, OperationUpdated, OperationDeleted:
		return true
	}
	return false
}

// Audited aggregate types. Mutations of anything else never reach the
// audit trail.
const (
	EntityTypePatient     = "patient"
	EntityTypeCustomer    = "customer"
	EntityTypeInvoice     = "invoice"
	EntityTypeAppointment = "appointment"
)

func AuditedEntityType(entityType string) bool {
	switch entityType {
	case EntityTypePatient, EntityTypeCustomer, EntityTypeInvoice, EntityTypeAppointment:
		return true
	}
	return false
}

// FieldChange holds the serialized before/after pair for one field.
// Created entries carry nil Before, deleted entries nil After.
type FieldChange struct {
	Before any `json:"before"`
	After  any `json:"after"`
}

// AuditEntry is one immutable record of a single entity mutation. It
// references the mutated entity only by (EntityType, EntityID), so the
// history outlives the entity itself.
type AuditEntry struct {
	ID         int64                  `json:"id"`
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	Operation  Operation              `json:"operation"`
	Changes    map[string]FieldChange `json:"changes"`
	ChangedAt  time.Time              `json:"changed_at"`
	ChangedBy  string                 `json:"changed_by,omitempty"`
	IPAddress  string                 `json:"ip_address,omitempty"`
	UserAgent  string                 `json:"user_agent,omitempty"`
}

type AuditFilter struct {
	EntityType string
	EntityID   string
	Operation  Operation
	AfterID    int64
	Limit      int
}

// MutationContext attributes a mutation to the actor and client that
// caused it. All fields are optional; batch and CLI paths have none.
type MutationContext struct {
	Actor     string
	IPAddress string
	UserAgent string
}
