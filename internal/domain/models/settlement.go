package models

import (
	"fmt"
	"time"
)

// Period is a calendar-month settlement key in "YYYY-MM" form, always UTC
type Period string

// PeriodOf returns the period containing the given time
func PeriodOf(t time.Time) Period {
	return Period(t.UTC().Format("2006-01"))
}

// ParsePeriod validates a "YYYY-MM" key
func ParsePeriod(s string) (Period, error) {
	if _, err := time.Parse("2006-01", s); err != nil {
		return "", fmt.Errorf("invalid period %q: %w", s, err)
	}
	return Period(s), nil
}

// Bounds returns the half-open UTC interval [start, end) covered by the period
func (p Period) Bounds() (time.Time, time.Time) {
	start, _ := time.Parse("2006-01", string(p))
	return start, start.AddDate(0, 1, 0)
}

func (p Period) String() string {
	return string(p)
}

// StatementStatus represents the payout status of a settlement statement
type StatementStatus string

const (
	StatementPending StatementStatus = "PENDING"
	StatementPaid    StatementStatus = "PAID"
)

// StatementLine is the snapshot of one ledger line as it was rolled into a
// statement, kept for statement downloads and dispute review.
type StatementLine struct {
	LedgerLineID      string `json:"ledger_line_id"`
	SaleID            string `json:"sale_id"`
	GrossAmount       int64  `json:"gross_amount"`
	WithholdingAmount int64  `json:"withholding_amount"`
	NetAmount         int64  `json:"net_amount"`
}

// SettlementStatement is the periodic rollup of one profile's ledger lines
// into one payable total. Unique per (profile, period): re-running
// aggregation for the same period updates the existing statement in place.
type SettlementStatement struct {
	ID               string
	ProfileID        string
	Period           Period
	TotalGross       int64
	TotalWithholding int64
	TotalNet         int64
	LineCount        int32
	LineDetails      []StatementLine
	Status           StatementStatus
	PaidAt           *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
