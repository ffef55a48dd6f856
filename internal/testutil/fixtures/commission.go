package fixtures

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tourvia/commission-service/internal/domain/models"
)

// CompletedSale returns a COMPLETED sale with sensible defaults. Mutate the
// result in the test when a field matters.
func CompletedSale(agentID string, managerID *string, amount int64) *models.Sale {
	return &models.Sale{
		ID:              uuid.New().String(),
		ProductCode:     "PKG-TOKYO-5D",
		ProductCategory: "package-tour",
		Amount:          amount,
		AgentID:         agentID,
		ManagerID:       managerID,
		SaleDate:        time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC),
		Status:          models.SaleCompleted,
	}
}

// LedgerLine returns an unsettled ledger line for the given profile with the
// 10% / 3.3% default rates applied to gross.
func LedgerLine(saleID, profileID string, role models.ProfileRole, gross int64) *models.LedgerLine {
	line := &models.LedgerLine{
		ID:              uuid.New().String(),
		SaleID:          saleID,
		ProfileID:       profileID,
		Role:            role,
		GrossAmount:     gross,
		CommissionRate:  decimal.NewFromInt(10),
		WithholdingRate: decimal.RequireFromString("3.3"),
	}
	line.Recompute()
	return line
}

// PendingAdjustment returns a PENDING adjustment against the given line
func PendingAdjustment(ledgerLineID string, delta int64, requestedBy string) *models.Adjustment {
	return &models.Adjustment{
		ID:              uuid.New().String(),
		LedgerLineID:    ledgerLineID,
		RequestedAmount: delta,
		Reason:          "post-trip invoice correction",
		Status:          models.AdjustmentPending,
		RequestedBy:     requestedBy,
		RequestedAt:     time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC),
	}
}

// ActiveProfile returns an ACTIVE profile with the given role
func ActiveProfile(role models.ProfileRole) *models.AffiliateProfile {
	return &models.AffiliateProfile{
		ID:     uuid.New().String(),
		Name:   "Test Affiliate",
		Role:   role,
		Status: models.ProfileActive,
	}
}

// OpenRelation returns an ACTIVE open-ended relation between the pair
func OpenRelation(managerID, agentID string, from time.Time) *models.AffiliateRelation {
	return &models.AffiliateRelation{
		ID:            uuid.New().String(),
		ManagerID:     managerID,
		AgentID:       agentID,
		Status:        models.RelationActive,
		EffectiveFrom: from,
	}
}
