package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tourvia/commission-service/internal/domain"
	"github.com/tourvia/commission-service/internal/domain/models"
	"github.com/tourvia/commission-service/internal/domain/ports"
)

// ProfileRepository implements ports.ProfileRepository
type ProfileRepository struct {
	pool ports.DBTX
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db ports.DBPort) *ProfileRepository {
	return &ProfileRepository{pool: db.GetDB()}
}

// GetByID retrieves a profile by its ID
func (r *ProfileRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*models.AffiliateProfile, error) {
	profileID, err := parseID("profile ID", id)
	if err != nil {
		return nil, err
	}

	const q = `
SELECT id, name, role, status, created_at, updated_at
FROM affiliate_profiles
WHERE id = $1
`
	var p models.AffiliateProfile
	row := queryer(db, r.pool).QueryRow(ctx, q, profileID)
	if err := row.Scan(&p.ID, &p.Name, &p.Role, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound.WithDetail("profile_id", id)
		}
		return nil, fmt.Errorf("get profile by id: %w", err)
	}
	return &p, nil
}

// Upsert records the onboarding system's view of a profile
func (r *ProfileRepository) Upsert(ctx context.Context, db ports.DBTX, profile *models.AffiliateProfile) error {
	profileID, err := parseID("profile ID", profile.ID)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO affiliate_profiles (id, name, role, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    role = EXCLUDED.role,
    status = EXCLUDED.status,
    updated_at = now()
`
	if _, err := queryer(db, r.pool).Exec(ctx, q, profileID, profile.Name, profile.Role, profile.Status); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
