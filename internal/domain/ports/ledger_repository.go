package ports

import (
	"context"

	"github.com/tourvia/commission-service/internal/domain/models"
)

// LedgerRepository stores commission ledger lines.
//
// The (sale_id, profile_id) pair is unique at the storage layer. Create
// surfaces a lost insert race as ErrConcurrentModification so callers can
// re-read the winner's row instead of erroring.
type LedgerRepository interface {
	Create(ctx context.Context, db DBTX, line *models.LedgerLine) error

	GetByID(ctx context.Context, db DBTX, id string) (*models.LedgerLine, error)

	// GetByIDForUpdate locks the line row for the duration of the enclosing
	// transaction. Used by the adjustment workflow to serialize gross
	// mutations.
	GetByIDForUpdate(ctx context.Context, db DBTX, id string) (*models.LedgerLine, error)

	ListBySale(ctx context.Context, db DBTX, saleID string) ([]*models.LedgerLine, error)

	ListByProfile(ctx context.Context, db DBTX, profileID string, limit, offset int32) ([]*models.LedgerLine, error)

	// ListSettleable returns the profile's unsettled lines within the period
	// that are not blocked by a PENDING adjustment
	ListSettleable(ctx context.Context, db DBTX, profileID string, period models.Period) ([]*models.LedgerLine, error)

	// ListSettleableProfiles returns the distinct profile IDs that have at
	// least one settleable line within the period
	ListSettleableProfiles(ctx context.Context, db DBTX, period models.Period) ([]string, error)

	// UpdateAmounts persists a recomputed gross/withholding/net triple
	UpdateAmounts(ctx context.Context, db DBTX, line *models.LedgerLine) error

	// MarkSettled flags the given lines as settled
	MarkSettled(ctx context.Context, db DBTX, lineIDs []string) error
}
