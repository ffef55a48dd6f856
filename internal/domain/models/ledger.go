package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerLine is one commission entry attributing gross, withholding and net
// amounts to one profile for one sale. Exactly one line exists per
// (sale, profile) pair, enforced by a storage-layer unique constraint.
//
// NetAmount is derived: it is always recomputed as gross minus withholding
// and never written independently. The commission and withholding rates in
// effect at posting time are stored on the line so adjustments can recompute
// withholding without consulting the external rate table again.
type LedgerLine struct {
	ID                string
	SaleID            string
	ProfileID         string
	Role              ProfileRole
	GrossAmount       int64
	CommissionRate    decimal.Decimal
	WithholdingRate   decimal.Decimal
	WithholdingAmount int64
	NetAmount         int64
	IsSettled         bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Recompute re-derives withholding and net from the current gross amount
// using the stored withholding rate. Both amounts floor toward zero.
func (l *LedgerLine) Recompute() {
	gross := decimal.NewFromInt(l.GrossAmount)
	l.WithholdingAmount = gross.Mul(l.WithholdingRate).Div(decimal.NewFromInt(100)).Floor().IntPart()
	l.NetAmount = l.GrossAmount - l.WithholdingAmount
}
