package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tourvia/commission-service/internal/domain"
	"github.com/tourvia/commission-service/internal/domain/models"
	"github.com/tourvia/commission-service/internal/domain/ports"
	"github.com/tourvia/commission-service/pkg/observability"
)

// Service implements ports.LedgerService: it turns completed sales into
// per-party commission ledger lines.
type Service struct {
	db            ports.DBPort
	saleRepo      ports.SaleRepository
	ledgerRepo    ports.LedgerRepository
	auditRepo     ports.AuditRepository
	relationships ports.RelationshipService
	rates         ports.RateSource
	jurisdiction  string
	logger        ports.Logger
}

// NewService creates a new ledger service. jurisdiction selects the
// withholding rate applied to every line this deployment posts.
func NewService(
	db ports.DBPort,
	saleRepo ports.SaleRepository,
	ledgerRepo ports.LedgerRepository,
	auditRepo ports.AuditRepository,
	relationships ports.RelationshipService,
	rates ports.RateSource,
	jurisdiction string,
	logger ports.Logger,
) *Service {
	return &Service{
		db:            db,
		saleRepo:      saleRepo,
		ledgerRepo:    ledgerRepo,
		auditRepo:     auditRepo,
		relationships: relationships,
		rates:         rates,
		jurisdiction:  jurisdiction,
		logger:        logger,
	}
}

// PostSale computes and persists one ledger line per credited party, plus
// the SALE_POSTED audit entry, in a single transaction.
//
// Idempotent: a sale that already has lines returns the existing set with
// no new writes. A lost insert race is handled the same way, by re-reading
// the winner's lines, so upstream retries of sale-completion events are
// harmless.
func (s *Service) PostSale(ctx context.Context, sale *models.Sale) ([]*models.LedgerLine, error) {
	if err := validateSale(sale); err != nil {
		return nil, err
	}

	// Idempotency check before any computation
	existing, err := s.ledgerRepo.ListBySale(ctx, nil, sale.ID)
	if err != nil {
		return nil, fmt.Errorf("check existing ledger lines: %w", err)
	}
	if len(existing) > 0 {
		s.logger.Info("sale already posted, returning existing lines",
			ports.String("sale_id", sale.ID),
			ports.Int("line_count", len(existing)))
		return existing, nil
	}

	// Manager is credited only if an ACTIVE relation existed at sale time.
	// Point-in-time, not "currently active": retroactive relation changes
	// must not alter historical attribution.
	managerCredited := false
	if sale.ManagerID != nil {
		managerCredited, err = s.relationships.IsRelationActiveAt(ctx, *sale.ManagerID, sale.AgentID, sale.SaleDate)
		if err != nil {
			return nil, fmt.Errorf("relation check: %w", err)
		}
	}

	// Resolve every rate before opening the transaction. Any lookup that
	// does not produce a rate fails the whole posting; partial commission
	// postings are forbidden.
	withholdingRate, err := s.resolveRate(s.rates.WithholdingRate(ctx, s.jurisdiction), "withholding", s.jurisdiction)
	if err != nil {
		return nil, err
	}
	agentRate, err := s.resolveRate(
		s.rates.CommissionRate(ctx, models.RoleAgent, sale.ProductCategory, sale.SaleDate),
		"commission", sale.ProductCategory)
	if err != nil {
		return nil, err
	}

	breakdowns := []commissionBreakdown{
		computeCommission(sale.Amount, sale.AgentID, models.RoleAgent, agentRate, withholdingRate),
	}
	if managerCredited {
		managerRate, err := s.resolveRate(
			s.rates.CommissionRate(ctx, models.RoleManager, sale.ProductCategory, sale.SaleDate),
			"commission", sale.ProductCategory)
		if err != nil {
			return nil, err
		}
		breakdowns = append(breakdowns,
			computeCommission(sale.Amount, *sale.ManagerID, models.RoleManager, managerRate, withholdingRate))
	}

	lines := make([]*models.LedgerLine, len(breakdowns))
	totalRemainder := decimal.Zero
	for i, b := range breakdowns {
		lines[i] = &models.LedgerLine{
			ID:                uuid.New().String(),
			SaleID:            sale.ID,
			ProfileID:         b.ProfileID,
			Role:              b.Role,
			GrossAmount:       b.Gross,
			CommissionRate:    b.CommissionRate,
			WithholdingRate:   b.WithholdingRate,
			WithholdingAmount: b.Withholding,
			NetAmount:         b.Net,
		}
		totalRemainder = totalRemainder.Add(b.Remainder)
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.saleRepo.Upsert(ctx, tx, sale); err != nil {
			return err
		}
		for _, line := range lines {
			if err := s.ledgerRepo.Create(ctx, tx, line); err != nil {
				return err
			}
		}

		if err := s.auditRepo.Append(ctx, tx, &models.AuditEntry{
			ID:       uuid.New().String(),
			Category: models.AuditSalePosted,
			Action:   "sale_posted",
			SaleID:   &sale.ID,
			ActorID:  models.SystemActor,
			Detail: map[string]interface{}{
				"amount":     sale.Amount,
				"line_count": len(lines),
			},
		}); err != nil {
			return err
		}

		if sale.ManagerID != nil && !managerCredited {
			// Network churn must not block revenue recognition: the sale
			// posts agent-only and the discrepancy is a warning, not an
			// error
			if err := s.auditRepo.Append(ctx, tx, &models.AuditEntry{
				ID:       uuid.New().String(),
				Category: models.AuditRelationWarning,
				Action:   "manager_not_credited",
				SaleID:   &sale.ID,
				ActorID:  models.SystemActor,
				Detail: map[string]interface{}{
					"manager_id": *sale.ManagerID,
					"agent_id":   sale.AgentID,
					"sale_date":  sale.SaleDate,
				},
			}); err != nil {
				return err
			}
		}

		if totalRemainder.IsPositive() {
			if err := s.auditRepo.Append(ctx, tx, &models.AuditEntry{
				ID:       uuid.New().String(),
				Category: models.AuditRoundingRemainder,
				Action:   "rounding_remainder",
				SaleID:   &sale.ID,
				ActorID:  models.SystemActor,
				Detail: map[string]interface{}{
					"remainder": totalRemainder.String(),
				},
			}); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		if domain.IsRetryable(err) {
			// Lost the insert race to a concurrent posting of the same
			// sale: observe the winner's lines instead of erroring
			s.logger.Warn("concurrent posting detected, re-reading winner's lines",
				ports.String("sale_id", sale.ID))
			return s.ledgerRepo.ListBySale(ctx, nil, sale.ID)
		}
		s.logger.Error("post sale failed",
			ports.String("sale_id", sale.ID),
			ports.Err(err))
		return nil, err
	}

	for _, line := range lines {
		observability.RecordLedgerLinePosted(string(line.Role), line.GrossAmount, line.NetAmount)
	}
	s.logger.Info("sale posted",
		ports.String("sale_id", sale.ID),
		ports.Int("line_count", len(lines)),
		ports.Bool("manager_credited", managerCredited))
	return lines, nil
}

// LinesForSale is the read surface for per-sale dashboards. The existence
// check and the listing read from the same snapshot so a concurrent posting
// cannot produce a sale with half its lines.
func (s *Service) LinesForSale(ctx context.Context, saleID string) ([]*models.LedgerLine, error) {
	var lines []*models.LedgerLine
	err := s.db.WithReadOnlyTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		// Existence check distinguishes "unknown sale" from "no lines yet"
		if _, err := s.saleRepo.GetByID(ctx, tx, saleID); err != nil {
			return err
		}
		var err error
		lines, err = s.ledgerRepo.ListBySale(ctx, tx, saleID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// LinesForProfile is the read surface for per-profile dashboards
func (s *Service) LinesForProfile(ctx context.Context, profileID string, limit, offset int32) ([]*models.LedgerLine, error) {
	return s.ledgerRepo.ListByProfile(ctx, nil, profileID, limit, offset)
}

func (s *Service) resolveRate(result ports.RateResult, kind, key string) (decimal.Decimal, error) {
	switch result.Outcome {
	case ports.RateOutcomeFound:
		return result.Rate, nil
	case ports.RateOutcomeTimeout:
		// Fail closed: never guess a rate on timeout
		return decimal.Zero, domain.WrapError(domain.ErrorCodeRateLookupTimeout,
			fmt.Sprintf("%s rate lookup timed out for %q", kind, key), result.Err)
	case ports.RateOutcomeNotFound:
		return decimal.Zero, domain.ErrRateNotConfigured.
			WithDetail("kind", kind).
			WithDetail("key", key)
	default:
		return decimal.Zero, domain.WrapError(domain.ErrorCodeRateNotConfigured,
			fmt.Sprintf("%s rate lookup failed for %q", kind, key), result.Err)
	}
}

func validateSale(sale *models.Sale) error {
	if sale == nil {
		return domain.ErrValidationFailed.WithDetail("reason", "sale is nil")
	}
	if !sale.IsCompleted() {
		return domain.ErrValidationFailed.
			WithDetail("sale_id", sale.ID).
			WithDetail("status", string(sale.Status))
	}
	if sale.Amount <= 0 {
		return domain.ErrValidationAmountInvalid.
			WithDetail("sale_id", sale.ID).
			WithDetail("amount", sale.Amount)
	}
	if sale.AgentID == "" {
		return domain.ErrValidationMissingField.WithDetail("field", "agent_id")
	}
	return nil
}
