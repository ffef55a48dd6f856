package ports

import (
	"context"

	"github.com/tourvia/commission-service/internal/domain/models"
)

// ProfileResult is the outcome of settling one profile within a batch
type ProfileResult struct {
	ProfileID   string
	StatementID string
	LineCount   int32
	TotalNet    int64
	Err         error
}

// BatchResult reports a settlement run. Profiles settle independently;
// partial success is expected and the failed subset is listed for operator
// retry.
type BatchResult struct {
	Period    models.Period
	Succeeded []ProfileResult
	Failed    []ProfileResult
}

// SettlementService rolls ledger lines into periodic settlement statements
type SettlementService interface {
	// Run aggregates every profile with settleable lines in the period.
	// Idempotent: re-running with unchanged ledger state produces identical
	// statement totals.
	Run(ctx context.Context, period models.Period) (*BatchResult, error)

	// MarkPaid transitions a statement to PAID after disbursement
	MarkPaid(ctx context.Context, statementID, actorID string) error

	StatementForProfile(ctx context.Context, profileID string, period models.Period) (*models.SettlementStatement, error)

	StatementsByProfile(ctx context.Context, profileID string, limit, offset int32) ([]*models.SettlementStatement, error)
}
