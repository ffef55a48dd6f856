package ports

import (
	"context"

	"github.com/tourvia/commission-service/internal/domain/models"
)

// AdjustmentService runs the request/approve/reject workflow for manual
// ledger corrections
type AdjustmentService interface {
	// Request opens a PENDING adjustment against an unsettled ledger line.
	// The ledger line itself is untouched until approval.
	Request(ctx context.Context, ledgerLineID string, delta int64, reason, requestedBy string) (*models.Adjustment, error)

	// Decide applies a terminal outcome to a pending adjustment. Fails with
	// ErrAlreadyDecided on non-pending adjustments and
	// ErrSelfApprovalForbidden when approvedBy equals the requester.
	Decide(ctx context.Context, adjustmentID string, outcome models.AdjustmentOutcome, approvedBy string) (*models.Adjustment, error)

	// HistoryForLine is the read surface for dispute review
	HistoryForLine(ctx context.Context, ledgerLineID string) ([]*models.Adjustment, error)
}
