package ports

import (
	"context"
	"time"

	"github.com/tourvia/commission-service/internal/domain/models"
)

// RelationRepository stores the interval log of manager-agent pairings
type RelationRepository interface {
	// Create opens a new relation episode
	Create(ctx context.Context, db DBTX, relation *models.AffiliateRelation) error

	// Close ends the currently open episode for the pair, setting
	// effective_until and flipping status to INACTIVE
	Close(ctx context.Context, db DBTX, managerID, agentID string, at time.Time) error

	// GetActiveByAgent returns the agent's currently open ACTIVE relation,
	// or nil when the agent has no manager
	GetActiveByAgent(ctx context.Context, db DBTX, agentID string) (*models.AffiliateRelation, error)

	// GetAt returns the relation between the pair whose interval contains
	// the given instant, or nil when none covered it
	GetAt(ctx context.Context, db DBTX, managerID, agentID string, at time.Time) (*models.AffiliateRelation, error)

	// ListByAgent returns the agent's full relation history, newest first
	ListByAgent(ctx context.Context, db DBTX, agentID string) ([]*models.AffiliateRelation, error)
}
