package relationship

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tourvia/commission-service/internal/domain"
	"github.com/tourvia/commission-service/internal/domain/models"
	"github.com/tourvia/commission-service/internal/domain/ports"
)

// Service implements ports.RelationshipService over the relation interval
// log. Read path plus the relation-sync writes the onboarding system drives.
type Service struct {
	db           ports.DBPort
	profileRepo  ports.ProfileRepository
	relationRepo ports.RelationRepository
	auditRepo    ports.AuditRepository
	logger       ports.Logger
}

// NewService creates a new relationship service
func NewService(
	db ports.DBPort,
	profileRepo ports.ProfileRepository,
	relationRepo ports.RelationRepository,
	auditRepo ports.AuditRepository,
	logger ports.Logger,
) *Service {
	return &Service{
		db:           db,
		profileRepo:  profileRepo,
		relationRepo: relationRepo,
		auditRepo:    auditRepo,
		logger:       logger,
	}
}

// ResolveManagerFor returns the agent's current manager, nil when the agent
// has no open relation
func (s *Service) ResolveManagerFor(ctx context.Context, agentID string) (*string, error) {
	// Existence check first so unknown agents fail with NotFound rather
	// than silently resolving to "no manager"
	if _, err := s.profileRepo.GetByID(ctx, nil, agentID); err != nil {
		return nil, err
	}

	relation, err := s.relationRepo.GetActiveByAgent(ctx, nil, agentID)
	if err != nil {
		return nil, fmt.Errorf("resolve manager: %w", err)
	}
	if relation == nil {
		return nil, nil
	}
	return &relation.ManagerID, nil
}

// IsActive reports whether the profile is in ACTIVE status
func (s *Service) IsActive(ctx context.Context, profileID string) (bool, error) {
	profile, err := s.profileRepo.GetByID(ctx, nil, profileID)
	if err != nil {
		return false, err
	}
	return profile.IsActive(), nil
}

// IsRelationActiveAt is the point-in-time attribution check: was an ACTIVE
// relation between the pair in effect at the given instant. Historical
// episodes count; what matters is the interval, not the row's current
// status.
func (s *Service) IsRelationActiveAt(ctx context.Context, managerID, agentID string, asOf time.Time) (bool, error) {
	relation, err := s.relationRepo.GetAt(ctx, nil, managerID, agentID, asOf)
	if err != nil {
		return false, fmt.Errorf("relation point-in-time lookup: %w", err)
	}
	return relation != nil, nil
}

// OpenRelation starts a new manager-agent pairing episode. Called by the
// onboarding system on contract approval.
func (s *Service) OpenRelation(ctx context.Context, managerID, agentID, actorID string, from time.Time) (*models.AffiliateRelation, error) {
	manager, err := s.profileRepo.GetByID(ctx, nil, managerID)
	if err != nil {
		return nil, err
	}
	agent, err := s.profileRepo.GetByID(ctx, nil, agentID)
	if err != nil {
		return nil, err
	}
	// Managers never report to agents; the role check keeps the graph
	// acyclic by construction
	if manager.Role != models.RoleManager || agent.Role != models.RoleAgent {
		return nil, domain.ErrValidationFailed.
			WithDetail("manager_role", string(manager.Role)).
			WithDetail("agent_role", string(agent.Role))
	}

	relation := &models.AffiliateRelation{
		ID:            uuid.New().String(),
		ManagerID:     managerID,
		AgentID:       agentID,
		Status:        models.RelationActive,
		EffectiveFrom: from,
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.relationRepo.Create(ctx, tx, relation); err != nil {
			return err
		}
		return s.auditRepo.Append(ctx, tx, &models.AuditEntry{
			ID:       uuid.New().String(),
			Category: models.AuditRelationChanged,
			Action:   "relation_opened",
			ActorID:  actorID,
			Detail: map[string]interface{}{
				"relation_id": relation.ID,
				"manager_id":  managerID,
				"agent_id":    agentID,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("relation opened",
		ports.String("relation_id", relation.ID),
		ports.String("manager_id", managerID),
		ports.String("agent_id", agentID))
	return relation, nil
}

// CloseRelation ends the open episode for the pair. Called on termination;
// the episode row stays forever because ledger history references it.
func (s *Service) CloseRelation(ctx context.Context, managerID, agentID, actorID string, at time.Time) error {
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.relationRepo.Close(ctx, tx, managerID, agentID, at); err != nil {
			return err
		}
		return s.auditRepo.Append(ctx, tx, &models.AuditEntry{
			ID:       uuid.New().String(),
			Category: models.AuditRelationChanged,
			Action:   "relation_closed",
			ActorID:  actorID,
			Detail: map[string]interface{}{
				"manager_id": managerID,
				"agent_id":   agentID,
			},
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("relation closed",
		ports.String("manager_id", managerID),
		ports.String("agent_id", agentID))
	return nil
}

// HistoryForAgent returns the agent's full relation history
func (s *Service) HistoryForAgent(ctx context.Context, agentID string) ([]*models.AffiliateRelation, error) {
	return s.relationRepo.ListByAgent(ctx, nil, agentID)
}
