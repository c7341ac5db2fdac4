package usecase

import (
	"context"
	"testing"

	"github.com/atvirokodosprendimai/cliniccore/internal/core/domain"
)

func TestAuditRecorderCreated(t *testing.T) {
	recorder := NewAuditRecorder(true)
	ctx := WithMutationContext(context.Background(), domain.MutationContext{
		Actor:     "reception",
		IPAddress: "10.0.0.7",
		UserAgent: "curl/8.0",
	})

	entry := recorder.Created(ctx, domain.EntityTypePatient, "p-1", map[string]any{
		"firstName": "John",
		"lastName":  nil,
	})
	if entry == nil {
		t.Fatal("expected entry")
	}
	if entry.EntityType != domain.EntityTypePatient || entry.EntityID != "p-1" {
		t.Fatalf("unexpected entity: %s/%s", entry.EntityType, entry.EntityID)
	}
	if entry.Operation != domain.OperationCreated {
		t.Fatalf("unexpected operation: %s", entry.Operation)
	}
	if len(entry.Changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(entry.Changes))
	}
	if entry.Changes["firstName"].After != "John" {
		t.Fatalf("unexpected change: %+v", entry.Changes["firstName"])
	}
	if entry.ChangedBy != "reception" || entry.IPAddress != "10.0.0.7" || entry.UserAgent != "curl/8.0" {
		t.Fatalf("attribution not captured: %+v", entry)
	}
	if entry.ChangedAt.IsZero() {
		t.Fatal("changed_at not set")
	}
}

func TestAuditRecorderDisabled(t *testing.T) {
	recorder := NewAuditRecorder(false)

	entry := recorder.Created(context.Background(), domain.EntityTypePatient, "p-1", map[string]any{"firstName": "John"})
	if entry != nil {
		t.Fatalf("expected nil entry, got %+v", entry)
	}

	recorder.SetEnabled(true)
	entry = recorder.Created(context.Background(), domain.EntityTypePatient, "p-1", map[string]any{"firstName": "John"})
	if entry == nil {
		t.Fatal("expected entry after re-enable")
	}
}

func TestAuditRecorderSuspendedContext(t *testing.T) {
	recorder := NewAuditRecorder(true)
	suspended := SuspendAudit(context.Background())

	if entry := recorder.Created(suspended, domain.EntityTypePatient, "p-1", map[string]any{"firstName": "John"}); entry != nil {
		t.Fatalf("expected nil entry under suspended context, got %+v", entry)
	}

	// Suspension is context-scoped, not process-wide.
	if entry := recorder.Created(context.Background(), domain.EntityTypePatient, "p-2", map[string]any{"firstName": "Ann"}); entry == nil {
		t.Fatal("expected entry on a fresh context")
	}
}

func TestAuditRecorderUnknownEntityType(t *testing.T) {
	recorder := NewAuditRecorder(true)

	entry := recorder.Created(context.Background(), "session", "s-1", map[string]any{"token": "x"})
	if entry != nil {
		t.Fatalf("expected nil entry for unaudited type, got %+v", entry)
	}
}

func TestAuditRecorderUpdatedNoOp(t *testing.T) {
	recorder := NewAuditRecorder(true)

	values := map[string]any{"firstName": "John", "email": "j@x.com"}
	entry := recorder.Updated(context.Background(), domain.EntityTypePatient, "p-1", values, map[string]any{"firstName": "John", "email": "j@x.com"})
	if entry != nil {
		t.Fatalf("expected nil entry for no-op update, got %+v", entry)
	}
}

func TestAuditRecorderUpdatedDiff(t *testing.T) {
	recorder := NewAuditRecorder(true)

	entry := recorder.Updated(context.Background(), domain.EntityTypeCustomer, "c-1",
		map[string]any{"email": "old@x.com", "fullName": "Ann"},
		map[string]any{"email": "new@x.com", "fullName": "Ann"},
	)
	if entry == nil {
		t.Fatal("expected entry")
	}
	if entry.Operation != domain.OperationUpdated {
		t.Fatalf("unexpected operation: %s", entry.Operation)
	}
	if len(entry.Changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(entry.Changes))
	}
	change := entry.Changes["email"]
	if change.Before != "old@x.com" || change.After != "new@x.com" {
		t.Fatalf("unexpected change: %+v", change)
	}
}

func TestAuditRecorderDeleted(t *testing.T) {
	recorder := NewAuditRecorder(true)

	entry := recorder.Deleted(context.Background(), domain.EntityTypeCustomer, "c-1", map[string]any{"fullName": "Bob Wilson"})
	if entry == nil {
		t.Fatal("expected entry")
	}
	if entry.Operation != domain.OperationDeleted {
		t.Fatalf("unexpected operation: %s", entry.Operation)
	}
	change := entry.Changes["fullName"]
	if change.Before != "Bob Wilson" || change.After != nil {
		t.Fatalf("unexpected change: %+v", change)
	}
}
