package ports

import (
	"context"
	"time"

	"github.com/tourvia/commission-service/internal/domain/models"
)

// RelationshipService maintains and answers questions about the
// manager-agent graph. The ledger engine uses the read path to validate the
// manager credited on a sale against the relation state at sale time; the
// onboarding system drives the write path.
type RelationshipService interface {
	// ResolveManagerFor returns the agent's current manager, or nil when the
	// agent reports to no one. Fails with ErrProfileNotFound for unknown
	// agents.
	ResolveManagerFor(ctx context.Context, agentID string) (*string, error)

	// IsActive reports whether the profile is in ACTIVE status
	IsActive(ctx context.Context, profileID string) (bool, error)

	// IsRelationActiveAt is the point-in-time check used for commission
	// attribution: was an ACTIVE relation between the pair in effect at the
	// given instant
	IsRelationActiveAt(ctx context.Context, managerID, agentID string, asOf time.Time) (bool, error)

	// OpenRelation starts a new supervision episode. Fails when the agent
	// already has an open relation.
	OpenRelation(ctx context.Context, managerID, agentID, actorID string, from time.Time) (*models.AffiliateRelation, error)

	// CloseRelation ends the open episode between the pair
	CloseRelation(ctx context.Context, managerID, agentID, actorID string, at time.Time) error

	// HistoryForAgent returns the agent's full supervision interval log
	HistoryForAgent(ctx context.Context, agentID string) ([]*models.AffiliateRelation, error)
}
