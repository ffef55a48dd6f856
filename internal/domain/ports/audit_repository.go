package ports

import (
	"context"

	"github.com/tourvia/commission-service/internal/domain/models"
)

// AuditRepository persists the append-only audit log. There are no update
// or delete methods. Append must run inside the caller's transaction: money
// is never created without its audit entry, and a failed audit write rolls
// the whole mutation back.
type AuditRepository interface {
	Append(ctx context.Context, db DBTX, entry *models.AuditEntry) error

	ListBySale(ctx context.Context, db DBTX, saleID string) ([]*models.AuditEntry, error)

	ListByCategory(ctx context.Context, db DBTX, category models.AuditCategory, limit, offset int32) ([]*models.AuditEntry, error)
}
