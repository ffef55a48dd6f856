package ports

import (
	"context"

	"github.com/tourvia/commission-service/internal/domain/models"
)

// ProfileRepository reads affiliate profiles. Profiles are owned by the
// onboarding subsystem; no create/update methods are exposed here beyond
// the sync upsert the onboarding system drives.
type ProfileRepository interface {
	GetByID(ctx context.Context, db DBTX, id string) (*models.AffiliateProfile, error)
	Upsert(ctx context.Context, db DBTX, profile *models.AffiliateProfile) error
}
