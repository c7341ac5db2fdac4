package ports

import (
	"context"

	"github.com/atvirokodosprendimai/cliniccore/internal/core/domain"
)

// AuditLogRepository is the read side of the append-only audit trail.
// Appending happens inside the aggregate repositories' own write
// transactions; no component exposes update or delete.
type AuditLogRepository interface {
	List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error)
	Get(ctx context.Context, id int64) (domain.AuditEntry, error)
}
