package ports

import (
	"context"

	"github.com/tourvia/commission-service/internal/domain/models"
)

// LedgerService turns completed sales into commission ledger lines
type LedgerService interface {
	// PostSale computes and persists one ledger line per credited party.
	// Idempotent: a sale that already has lines returns the existing set.
	PostSale(ctx context.Context, sale *models.Sale) ([]*models.LedgerLine, error)

	// LinesForSale is the read surface for per-sale dashboards
	LinesForSale(ctx context.Context, saleID string) ([]*models.LedgerLine, error)

	// LinesForProfile is the read surface for per-profile dashboards
	LinesForProfile(ctx context.Context, profileID string, limit, offset int32) ([]*models.LedgerLine, error)
}
