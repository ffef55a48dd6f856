package ports

import (
	"context"

	"github.com/tourvia/commission-service/internal/domain/models"
)

// SaleRepository stores sale facts received from the order subsystem
type SaleRepository interface {
	// Upsert records a sale-completion event. Sales already COMPLETED are
	// never modified by a later upsert.
	Upsert(ctx context.Context, db DBTX, sale *models.Sale) error

	GetByID(ctx context.Context, db DBTX, id string) (*models.Sale, error)

	ListByAgent(ctx context.Context, db DBTX, agentID string, limit, offset int32) ([]*models.Sale, error)
}
