package ports

import (
	"context"

	"github.com/tourvia/commission-service/internal/domain/models"
)

// SettlementRepository stores settlement statements.
//
// (profile_id, period) is unique at the storage layer; Upsert updates the
// existing statement in place so re-running aggregation never duplicates.
type SettlementRepository interface {
	Upsert(ctx context.Context, db DBTX, statement *models.SettlementStatement) error

	GetByID(ctx context.Context, db DBTX, id string) (*models.SettlementStatement, error)

	GetByProfilePeriod(ctx context.Context, db DBTX, profileID string, period models.Period) (*models.SettlementStatement, error)

	ListByProfile(ctx context.Context, db DBTX, profileID string, limit, offset int32) ([]*models.SettlementStatement, error)

	// MarkPaid transitions a PENDING statement to PAID. Zero rows matched
	// means the statement was not pending and ErrStatementNotPending is
	// returned.
	MarkPaid(ctx context.Context, db DBTX, id string) error

	// AcquirePeriodLock takes a transaction-scoped advisory lock keyed by
	// (profileID, period) so same-profile re-runs serialize. Released on
	// commit or rollback.
	AcquirePeriodLock(ctx context.Context, db DBTX, profileID string, period models.Period) error
}
