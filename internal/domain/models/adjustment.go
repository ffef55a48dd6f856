package models

import "time"

// AdjustmentStatus represents the state of an adjustment request
type AdjustmentStatus string

const (
	AdjustmentPending  AdjustmentStatus = "PENDING"
	AdjustmentApproved AdjustmentStatus = "APPROVED"
	AdjustmentRejected AdjustmentStatus = "REJECTED"
)

// AdjustmentOutcome is the decision applied to a pending adjustment
type AdjustmentOutcome string

const (
	OutcomeApprove AdjustmentOutcome = "APPROVE"
	OutcomeReject  AdjustmentOutcome = "REJECT"
)

// Adjustment is an audited manual correction to a ledger line's gross amount.
// RequestedAmount is a signed delta in the smallest currency unit.
//
// ApprovedBy and DecidedAt are set together, exactly once, on the
// PENDING -> {APPROVED, REJECTED} transition. Terminal states are final.
type Adjustment struct {
	ID              string
	LedgerLineID    string
	RequestedAmount int64
	Reason          string
	Status          AdjustmentStatus
	RequestedBy     string
	ApprovedBy      *string
	RequestedAt     time.Time
	DecidedAt       *time.Time
}

// IsDecided reports whether the adjustment has reached a terminal state
func (a *Adjustment) IsDecided() bool {
	return a.Status == AdjustmentApproved || a.Status == AdjustmentRejected
}
