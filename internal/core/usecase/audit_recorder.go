package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/atvirokodosprendimai/cliniccore/internal/core/domain"
)

type ctxKey string

const (
	mutationCtxKey  ctxKey = "mutation_context"
	auditSuspendKey ctxKey = "audit_suspended"
)

// WithMutationContext attaches actor/client attribution to a request
// context. The recorder reads it at capture time.
func WithMutationContext(ctx context.Context, mc domain.MutationContext) context.Context {
	return context.WithValue(ctx, mutationCtxKey, mc)
}

func MutationContextFrom(ctx context.Context) domain.MutationContext {
	mc, _ := ctx.Value(mutationCtxKey).(domain.MutationContext)
	return mc
}

// SuspendAudit scopes an audit override to one context. Bulk and
// migration paths use it to import history without producing entries;
// the process-wide switch stays untouched.
func SuspendAudit(ctx context.Context) context.Context {
	return context.WithValue(ctx, auditSuspendKey, true)
}

func auditSuspended(ctx context.Context) bool {
	suspended, _ := ctx.Value(auditSuspendKey).(bool)
	return suspended
}

// AuditRecorder derives audit entries from explicit before/after value
// maps. Every mutation path asks it for an entry before persisting and
// hands the result to the repository, which writes the business row and
// the entry in one transaction. A nil entry means nothing to record.
type AuditRecorder struct {
	enabled atomic.Bool
}

func NewAuditRecorder(enabled bool) *AuditRecorder {
	r := &AuditRecorder{}
	r.enabled.Store(enabled)
	return r
}

func (r *AuditRecorder) Enabled() bool {
	return r.enabled.Load()
}

func (r *AuditRecorder) SetEnabled(enabled bool) {
	r.enabled.Store(enabled)
}

// Created records a new entity: every non-nil field as {nil, value}.
func (r *AuditRecorder) Created(ctx context.Context, entityType, entityID string, values map[string]any) *domain.AuditEntry {
	if r.skip(ctx, entityType) {
		return nil
	}
	return r.entry(ctx, entityType, entityID, domain.OperationCreated, domain.CreateChanges(values))
}

// Updated diffs the explicit before/after maps. An empty diff means the
// write was a no-op and yields no entry.
func (r *AuditRecorder) Updated(ctx context.Context, entityType, entityID string, before, after map[string]any) *domain.AuditEntry {
	if r.skip(ctx, entityType) {
		return nil
	}
	changes := domain.UpdateChanges(before, after)
	if len(changes) == 0 {
		return nil
	}
	return r.entry(ctx, entityType, entityID, domain.OperationUpdated, changes)
}

// Deleted captures the entity's last known values as {value, nil}.
func (r *AuditRecorder) Deleted(ctx context.Context, entityType, entityID string, values map[string]any) *domain.AuditEntry {
	if r.skip(ctx, entityType) {
		return nil
	}
	return r.entry(ctx, entityType, entityID, domain.OperationDeleted, domain.DeleteChanges(values))
}

func (r *AuditRecorder) skip(ctx context.Context, entityType string) bool {
	return !r.enabled.Load() || auditSuspended(ctx) || !domain.AuditedEntityType(entityType)
}

func (r *AuditRecorder) entry(ctx context.Context, entityType, entityID string, op domain.Operation, changes map[string]domain.FieldChange) *domain.AuditEntry {
	mc := MutationContextFrom(ctx)
	return &domain.AuditEntry{
		EntityType: entityType,
		EntityID:   entityID,
		Operation:  op,
		Changes:    changes,
		ChangedAt:  time.Now().UTC(),
		ChangedBy:  mc.Actor,
		IPAddress:  mc.IPAddress,
		UserAgent:  mc.UserAgent,
	}
}
