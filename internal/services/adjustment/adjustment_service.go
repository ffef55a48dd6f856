package adjustment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tourvia/commission-service/internal/domain"
	"github.com/tourvia/commission-service/internal/domain/models"
	"github.com/tourvia/commission-service/internal/domain/ports"
	"github.com/tourvia/commission-service/pkg/observability"
)

// Service implements ports.AdjustmentService: the request/approve/reject
// workflow for manual ledger corrections.
type Service struct {
	db         ports.DBPort
	ledgerRepo ports.LedgerRepository
	adjRepo    ports.AdjustmentRepository
	auditRepo  ports.AuditRepository
	logger     ports.Logger
}

func NewService(
	db ports.DBPort,
	ledgerRepo ports.LedgerRepository,
	adjRepo ports.AdjustmentRepository,
	auditRepo ports.AuditRepository,
	logger ports.Logger,
) *Service {
	return &Service{
		db:         db,
		ledgerRepo: ledgerRepo,
		adjRepo:    adjRepo,
		auditRepo:  auditRepo,
		logger:     logger,
	}
}

// Request opens a PENDING adjustment against a ledger line. The line itself
// is untouched until the adjustment is approved.
func (s *Service) Request(ctx context.Context, ledgerLineID string, delta int64, reason, requestedBy string) (*models.Adjustment, error) {
	if delta == 0 {
		return nil, domain.ErrValidationAmountInvalid.WithDetail("reason", "zero delta")
	}
	if requestedBy == "" {
		return nil, domain.ErrValidationMissingField.WithDetail("field", "requested_by")
	}
	if reason == "" {
		return nil, domain.ErrValidationMissingField.WithDetail("field", "reason")
	}

	line, err := s.ledgerRepo.GetByID(ctx, nil, ledgerLineID)
	if err != nil {
		return nil, err
	}
	if line.IsSettled {
		// Settled lines are frozen: corrections to paid-out commissions go
		// through a compensating entry in the next period, not a rewrite
		return nil, domain.ErrLineSettled.WithDetail("ledger_line_id", ledgerLineID)
	}
	if line.GrossAmount+delta < 0 {
		return nil, domain.ErrValidationAmountInvalid.
			WithDetail("reason", "adjustment would drive gross negative").
			WithDetail("gross_amount", line.GrossAmount).
			WithDetail("delta", delta)
	}

	adj := &models.Adjustment{
		ID:              uuid.New().String(),
		LedgerLineID:    ledgerLineID,
		RequestedAmount: delta,
		Reason:          reason,
		Status:          models.AdjustmentPending,
		RequestedBy:     requestedBy,
		RequestedAt:     time.Now().UTC(),
	}
	if err := s.adjRepo.Create(ctx, nil, adj); err != nil {
		return nil, fmt.Errorf("create adjustment: %w", err)
	}

	s.logger.Info("adjustment requested",
		ports.String("adjustment_id", adj.ID),
		ports.String("ledger_line_id", ledgerLineID),
		ports.Int64("delta", delta),
		ports.String("requested_by", requestedBy))
	return adj, nil
}

// Decide applies a terminal outcome to a pending adjustment. Approval
// re-derives the target line's gross, withholding and net inside the same
// transaction; rejection leaves the line untouched. Either way the decision
// is recorded exactly once.
func (s *Service) Decide(ctx context.Context, adjustmentID string, outcome models.AdjustmentOutcome, approvedBy string) (*models.Adjustment, error) {
	if outcome != models.OutcomeApprove && outcome != models.OutcomeReject {
		return nil, domain.ErrValidationFailed.WithDetail("outcome", string(outcome))
	}
	if approvedBy == "" {
		return nil, domain.ErrValidationMissingField.WithDetail("field", "approved_by")
	}

	adj, err := s.adjRepo.GetByID(ctx, nil, adjustmentID)
	if err != nil {
		return nil, err
	}
	if adj.IsDecided() {
		return nil, domain.ErrAlreadyDecided.
			WithDetail("adjustment_id", adjustmentID).
			WithDetail("status", string(adj.Status))
	}
	// Four-eyes rule: even for rejections, so a requester cannot quietly
	// bury their own bad request
	if adj.RequestedBy == approvedBy {
		return nil, domain.ErrSelfApprovalForbidden.WithDetail("adjustment_id", adjustmentID)
	}

	status := models.AdjustmentRejected
	category := models.AuditAdjustmentRejected
	action := "adjustment_rejected"
	if outcome == models.OutcomeApprove {
		status = models.AdjustmentApproved
		category = models.AuditAdjustmentApplied
		action = "adjustment_applied"
	}
	decidedAt := time.Now().UTC()

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		// The PENDING guard in the UPDATE predicate is the real gate; the
		// pre-check above only exists for a friendlier error path
		if err := s.adjRepo.Decide(ctx, tx, adjustmentID, status, approvedBy, decidedAt); err != nil {
			return err
		}

		entry := &models.AuditEntry{
			ID:           uuid.New().String(),
			Category:     category,
			Action:       action,
			LedgerLineID: &adj.LedgerLineID,
			ActorID:      approvedBy,
			Detail: map[string]interface{}{
				"adjustment_id": adjustmentID,
				"delta":         adj.RequestedAmount,
				"requested_by":  adj.RequestedBy,
			},
		}

		if outcome == models.OutcomeApprove {
			line, err := s.ledgerRepo.GetByIDForUpdate(ctx, tx, adj.LedgerLineID)
			if err != nil {
				return err
			}
			if line.IsSettled {
				return domain.ErrLineSettled.WithDetail("ledger_line_id", line.ID)
			}
			if line.GrossAmount+adj.RequestedAmount < 0 {
				return domain.ErrValidationAmountInvalid.
					WithDetail("reason", "adjustment would drive gross negative")
			}
			line.GrossAmount += adj.RequestedAmount
			line.Recompute()
			if err := s.ledgerRepo.UpdateAmounts(ctx, tx, line); err != nil {
				return err
			}
			entry.Detail["gross_amount"] = line.GrossAmount
			entry.Detail["net_amount"] = line.NetAmount
		}

		return s.auditRepo.Append(ctx, tx, entry)
	})
	if err != nil {
		s.logger.Error("adjustment decision failed",
			ports.String("adjustment_id", adjustmentID),
			ports.String("outcome", string(outcome)),
			ports.Err(err))
		return nil, err
	}

	adj.Status = status
	adj.ApprovedBy = &approvedBy
	adj.DecidedAt = &decidedAt

	observability.RecordAdjustmentDecision(string(status))
	s.logger.Info("adjustment decided",
		ports.String("adjustment_id", adjustmentID),
		ports.String("status", string(status)),
		ports.String("approved_by", approvedBy))
	return adj, nil
}

// HistoryForLine is the read surface for dispute review
func (s *Service) HistoryForLine(ctx context.Context, ledgerLineID string) ([]*models.Adjustment, error) {
	if _, err := s.ledgerRepo.GetByID(ctx, nil, ledgerLineID); err != nil {
		return nil, err
	}
	return s.adjRepo.ListByLedgerLine(ctx, nil, ledgerLineID)
}
