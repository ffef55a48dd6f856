package ports

import (
	"context"
	"time"

	"github.com/tourvia/commission-service/internal/domain/models"
)

// AdjustmentRepository stores adjustment requests and their decisions
type AdjustmentRepository interface {
	Create(ctx context.Context, db DBTX, adjustment *models.Adjustment) error

	GetByID(ctx context.Context, db DBTX, id string) (*models.Adjustment, error)

	// Decide transitions a PENDING adjustment to its terminal state. The
	// PENDING guard lives in the UPDATE predicate: when zero rows match the
	// adjustment was already decided and ErrAlreadyDecided is returned, so
	// racing actors cannot overwrite each other.
	Decide(ctx context.Context, db DBTX, id string, status models.AdjustmentStatus, approvedBy string, decidedAt time.Time) error

	ListByLedgerLine(ctx context.Context, db DBTX, ledgerLineID string) ([]*models.Adjustment, error)

	// HasPending reports whether the ledger line has an open adjustment
	HasPending(ctx context.Context, db DBTX, ledgerLineID string) (bool, error)
}
