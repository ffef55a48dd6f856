package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tourvia/commission-service/internal/domain"
	"github.com/tourvia/commission-service/internal/domain/models"
	"github.com/tourvia/commission-service/internal/domain/ports"
)

// RelationRepository implements ports.RelationRepository over the interval
// log of manager-agent pairing episodes
type RelationRepository struct {
	pool ports.DBTX
}

// NewRelationRepository creates a new relation repository
func NewRelationRepository(db ports.DBPort) *RelationRepository {
	return &RelationRepository{pool: db.GetDB()}
}

const relationColumns = `id, manager_id, agent_id, status, effective_from, effective_until, created_at, updated_at`

func scanRelation(row pgx.Row) (*models.AffiliateRelation, error) {
	var rel models.AffiliateRelation
	var until *time.Time
	if err := row.Scan(&rel.ID, &rel.ManagerID, &rel.AgentID, &rel.Status,
		&rel.EffectiveFrom, &until, &rel.CreatedAt, &rel.UpdatedAt); err != nil {
		return nil, err
	}
	rel.EffectiveUntil = until
	return &rel, nil
}

// Create opens a new relation episode. The partial unique index on open
// ACTIVE episodes per agent enforces the at-most-one-manager invariant; a
// lost race surfaces as ErrConcurrentModification.
func (r *RelationRepository) Create(ctx context.Context, db ports.DBTX, relation *models.AffiliateRelation) error {
	relID, err := parseID("relation ID", relation.ID)
	if err != nil {
		return err
	}
	managerID, err := parseID("manager ID", relation.ManagerID)
	if err != nil {
		return err
	}
	agentID, err := parseID("agent ID", relation.AgentID)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO affiliate_relations
    (id, manager_id, agent_id, status, effective_from, effective_until, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now(), now())
`
	_, err = queryer(db, r.pool).Exec(ctx, q, relID, managerID, agentID,
		relation.Status, relation.EffectiveFrom, nullTime(relation.EffectiveUntil))
	if err != nil {
		if isUniqueViolation(err, "affiliate_relations_agent_open_idx") {
			return domain.ErrConcurrentModification.WithDetail("agent_id", relation.AgentID)
		}
		return fmt.Errorf("create relation: %w", err)
	}
	return nil
}

// Close ends the currently open episode for the pair
func (r *RelationRepository) Close(ctx context.Context, db ports.DBTX, managerID, agentID string, at time.Time) error {
	mID, err := parseID("manager ID", managerID)
	if err != nil {
		return err
	}
	aID, err := parseID("agent ID", agentID)
	if err != nil {
		return err
	}

	const q = `
UPDATE affiliate_relations
SET status = 'INACTIVE', effective_until = $3, updated_at = now()
WHERE manager_id = $1 AND agent_id = $2
  AND status = 'ACTIVE' AND effective_until IS NULL
`
	tag, err := queryer(db, r.pool).Exec(ctx, q, mID, aID, at)
	if err != nil {
		return fmt.Errorf("close relation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRelationNotFound.
			WithDetail("manager_id", managerID).
			WithDetail("agent_id", agentID)
	}
	return nil
}

// GetActiveByAgent returns the agent's currently open ACTIVE relation
func (r *RelationRepository) GetActiveByAgent(ctx context.Context, db ports.DBTX, agentID string) (*models.AffiliateRelation, error) {
	aID, err := parseID("agent ID", agentID)
	if err != nil {
		return nil, err
	}

	q := `
SELECT ` + relationColumns + `
FROM affiliate_relations
WHERE agent_id = $1 AND status = 'ACTIVE' AND effective_until IS NULL
`
	rel, err := scanRelation(queryer(db, r.pool).QueryRow(ctx, q, aID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active relation by agent: %w", err)
	}
	return rel, nil
}

// GetAt returns the relation between the pair whose interval contains the
// given instant
func (r *RelationRepository) GetAt(ctx context.Context, db ports.DBTX, managerID, agentID string, at time.Time) (*models.AffiliateRelation, error) {
	mID, err := parseID("manager ID", managerID)
	if err != nil {
		return nil, err
	}
	aID, err := parseID("agent ID", agentID)
	if err != nil {
		return nil, err
	}

	q := `
SELECT ` + relationColumns + `
FROM affiliate_relations
WHERE manager_id = $1 AND agent_id = $2
  AND effective_from <= $3
  AND (effective_until IS NULL OR effective_until > $3)
ORDER BY effective_from DESC
LIMIT 1
`
	rel, err := scanRelation(queryer(db, r.pool).QueryRow(ctx, q, mID, aID, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get relation at instant: %w", err)
	}
	return rel, nil
}

// ListByAgent returns the agent's full relation history, newest first
func (r *RelationRepository) ListByAgent(ctx context.Context, db ports.DBTX, agentID string) ([]*models.AffiliateRelation, error) {
	aID, err := parseID("agent ID", agentID)
	if err != nil {
		return nil, err
	}

	q := `
SELECT ` + relationColumns + `
FROM affiliate_relations
WHERE agent_id = $1
ORDER BY effective_from DESC
`
	rows, err := queryer(db, r.pool).Query(ctx, q, aID)
	if err != nil {
		return nil, fmt.Errorf("list relations by agent: %w", err)
	}
	defer rows.Close()

	var relations []*models.AffiliateRelation
	for rows.Next() {
		rel, err := scanRelation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan relation: %w", err)
		}
		relations = append(relations, rel)
	}
	return relations, rows.Err()
}
