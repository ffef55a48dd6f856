package ledger

import (
	"github.com/shopspring/decimal"
	"github.com/tourvia/commission-service/internal/domain/models"
)

var hundred = decimal.NewFromInt(100)

// commissionBreakdown is the computed split for one credited party.
// Remainder carries the fractional currency units dropped by flooring;
// it is surfaced to the audit log rather than silently discarded so the
// per-sale totals can always be reconciled against the exact products.
type commissionBreakdown struct {
	Role            models.ProfileRole
	ProfileID       string
	CommissionRate  decimal.Decimal
	WithholdingRate decimal.Decimal
	Gross           int64
	Withholding     int64
	Net             int64
	Remainder       decimal.Decimal
}

// computeCommission splits a sale amount for one party. Gross and
// withholding each floor to the smallest currency unit; net is exactly
// gross minus withholding, so sum(net)+sum(withholding) == sum(gross)
// holds by construction.
func computeCommission(saleAmount int64, profileID string, role models.ProfileRole, commissionRate, withholdingRate decimal.Decimal) commissionBreakdown {
	amount := decimal.NewFromInt(saleAmount)

	exactGross := amount.Mul(commissionRate).Div(hundred)
	gross := exactGross.Floor()

	exactWithholding := gross.Mul(withholdingRate).Div(hundred)
	withholding := exactWithholding.Floor()

	remainder := exactGross.Sub(gross).Add(exactWithholding.Sub(withholding))

	grossUnits := gross.IntPart()
	withholdingUnits := withholding.IntPart()

	return commissionBreakdown{
		Role:            role,
		ProfileID:       profileID,
		CommissionRate:  commissionRate,
		WithholdingRate: withholdingRate,
		Gross:           grossUnits,
		Withholding:     withholdingUnits,
		Net:             grossUnits - withholdingUnits,
		Remainder:       remainder,
	}
}
