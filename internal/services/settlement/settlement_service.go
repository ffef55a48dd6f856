package settlement

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tourvia/commission-service/internal/domain"
	"github.com/tourvia/commission-service/internal/domain/models"
	"github.com/tourvia/commission-service/internal/domain/ports"
	"github.com/tourvia/commission-service/pkg/observability"
)

const defaultWorkers = 8

// Service implements ports.SettlementService: the periodic batch that rolls
// settleable ledger lines into per-profile statements.
type Service struct {
	db             ports.DBPort
	ledgerRepo     ports.LedgerRepository
	settlementRepo ports.SettlementRepository
	auditRepo      ports.AuditRepository
	workers        int
	logger         ports.Logger
}

func NewService(
	db ports.DBPort,
	ledgerRepo ports.LedgerRepository,
	settlementRepo ports.SettlementRepository,
	auditRepo ports.AuditRepository,
	workers int,
	logger ports.Logger,
) *Service {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Service{
		db:             db,
		ledgerRepo:     ledgerRepo,
		settlementRepo: settlementRepo,
		auditRepo:      auditRepo,
		workers:        workers,
		logger:         logger,
	}
}

// Run aggregates every profile with settleable lines in the period. Each
// profile settles in its own transaction so one bad profile never poisons
// the batch; the failed subset comes back in the result for operator retry.
func (s *Service) Run(ctx context.Context, period models.Period) (*ports.BatchResult, error) {
	profileIDs, err := s.ledgerRepo.ListSettleableProfiles(ctx, nil, period)
	if err != nil {
		return nil, fmt.Errorf("list settleable profiles: %w", err)
	}

	s.logger.Info("settlement run started",
		ports.String("period", period.String()),
		ports.Int("profile_count", len(profileIDs)))

	results := make([]ports.ProfileResult, len(profileIDs))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	for i, profileID := range profileIDs {
		wg.Add(1)
		go func(i int, profileID string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = s.settleProfile(ctx, profileID, period)
		}(i, profileID)
	}
	wg.Wait()

	batch := &ports.BatchResult{Period: period}
	for _, r := range results {
		if r.Err != nil {
			batch.Failed = append(batch.Failed, r)
		} else {
			batch.Succeeded = append(batch.Succeeded, r)
		}
	}

	observability.RecordSettlementRun(period.String(), len(batch.Succeeded), len(batch.Failed))
	s.logger.Info("settlement run finished",
		ports.String("period", period.String()),
		ports.Int("succeeded", len(batch.Succeeded)),
		ports.Int("failed", len(batch.Failed)))
	return batch, nil
}

// settleProfile runs one profile's whole settlement in a single transaction:
// advisory lock, line selection with row locks, rollup upsert, settled flags
// and the audit entry all commit or roll back together.
func (s *Service) settleProfile(ctx context.Context, profileID string, period models.Period) ports.ProfileResult {
	result := ports.ProfileResult{ProfileID: profileID}

	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		// Serializes concurrent runs for the same (profile, period);
		// released automatically at transaction end
		if err := s.settlementRepo.AcquirePeriodLock(ctx, tx, profileID, period); err != nil {
			return err
		}

		lines, err := s.ledgerRepo.ListSettleable(ctx, tx, profileID, period)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			// Another run got here first under the lock
			return nil
		}

		// A prior run may already have rolled part of the period into a
		// statement; lines that arrive late, for example freed by a decided
		// adjustment, must extend that statement, never replace it.
		existing, err := s.settlementRepo.GetByProfilePeriod(ctx, tx, profileID, period)
		if err != nil {
			if !domain.IsDomainError(err, domain.ErrorCodeStatementNotFound) {
				return err
			}
			existing = nil
		}

		statement := &models.SettlementStatement{
			ID:        uuid.New().String(),
			ProfileID: profileID,
			Period:    period,
			Status:    models.StatementPending,
		}
		if existing != nil {
			if existing.Status == models.StatementPaid {
				return domain.ErrStatementNotPending.
					WithDetail("statement_id", existing.ID).
					WithDetail("period", period.String())
			}
			statement.ID = existing.ID
			statement.TotalGross = existing.TotalGross
			statement.TotalWithholding = existing.TotalWithholding
			statement.TotalNet = existing.TotalNet
			statement.LineCount = existing.LineCount
			statement.LineDetails = existing.LineDetails
		}

		statement.LineCount += int32(len(lines))
		lineIDs := make([]string, len(lines))
		for i, line := range lines {
			statement.TotalGross += line.GrossAmount
			statement.TotalWithholding += line.WithholdingAmount
			statement.TotalNet += line.NetAmount
			statement.LineDetails = append(statement.LineDetails, models.StatementLine{
				LedgerLineID:      line.ID,
				SaleID:            line.SaleID,
				GrossAmount:       line.GrossAmount,
				WithholdingAmount: line.WithholdingAmount,
				NetAmount:         line.NetAmount,
			})
			lineIDs[i] = line.ID
		}
		sort.Slice(statement.LineDetails, func(i, j int) bool {
			return statement.LineDetails[i].LedgerLineID < statement.LineDetails[j].LedgerLineID
		})

		if err := s.settlementRepo.Upsert(ctx, tx, statement); err != nil {
			return err
		}
		if err := s.ledgerRepo.MarkSettled(ctx, tx, lineIDs); err != nil {
			return err
		}
		if err := s.auditRepo.Append(ctx, tx, &models.AuditEntry{
			ID:       uuid.New().String(),
			Category: models.AuditSettlementRun,
			Action:   "statement_settled",
			ActorID:  models.SystemActor,
			Detail: map[string]interface{}{
				"statement_id":       statement.ID,
				"profile_id":         profileID,
				"period":             period.String(),
				"line_count":         statement.LineCount,
				"settled_line_count": len(lines),
				"total_net":          statement.TotalNet,
			},
		}); err != nil {
			return err
		}

		result.StatementID = statement.ID
		result.LineCount = statement.LineCount
		result.TotalNet = statement.TotalNet
		return nil
	})
	if err != nil {
		s.logger.Error("profile settlement failed",
			ports.String("profile_id", profileID),
			ports.String("period", period.String()),
			ports.Err(err))
		result.Err = domain.WrapError(domain.ErrorCodeAggregationPartial,
			fmt.Sprintf("settle profile %s for %s", profileID, period), err)
	}
	return result
}

// MarkPaid transitions a PENDING statement to PAID after disbursement
func (s *Service) MarkPaid(ctx context.Context, statementID, actorID string) error {
	if actorID == "" {
		return domain.ErrValidationMissingField.WithDetail("field", "actor_id")
	}
	statement, err := s.settlementRepo.GetByID(ctx, nil, statementID)
	if err != nil {
		return err
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.settlementRepo.MarkPaid(ctx, tx, statementID); err != nil {
			return err
		}
		return s.auditRepo.Append(ctx, tx, &models.AuditEntry{
			ID:       uuid.New().String(),
			Category: models.AuditStatementPaid,
			Action:   "statement_paid",
			ActorID:  actorID,
			Detail: map[string]interface{}{
				"statement_id": statementID,
				"profile_id":   statement.ProfileID,
				"period":       statement.Period.String(),
				"total_net":    statement.TotalNet,
			},
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("statement marked paid",
		ports.String("statement_id", statementID),
		ports.String("actor_id", actorID))
	return nil
}

func (s *Service) StatementForProfile(ctx context.Context, profileID string, period models.Period) (*models.SettlementStatement, error) {
	return s.settlementRepo.GetByProfilePeriod(ctx, nil, profileID, period)
}

func (s *Service) StatementsByProfile(ctx context.Context, profileID string, limit, offset int32) ([]*models.SettlementStatement, error) {
	return s.settlementRepo.ListByProfile(ctx, nil, profileID, limit, offset)
}
