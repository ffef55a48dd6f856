package models

import "time"

// SaleStatus represents the lifecycle status of a sale
type SaleStatus string

const (
	SalePending   SaleStatus = "PENDING"
	SaleApproved  SaleStatus = "APPROVED"
	SaleCompleted SaleStatus = "COMPLETED"
	SaleRejected  SaleStatus = "REJECTED"
)

// Sale is a finalized travel-package sale credited to an agent and optionally
// the agent's manager. Amount is in the smallest currency unit. A sale is
// immutable once it reaches COMPLETED; corrections go through the adjustment
// workflow against the resulting ledger lines, never the sale itself.
type Sale struct {
	ID              string
	ProductCode     string
	ProductCategory string
	Amount          int64
	AgentID         string
	ManagerID       *string
	SaleDate        time.Time
	Status          SaleStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsCompleted reports whether the sale has been finalized
func (s *Sale) IsCompleted() bool {
	return s.Status == SaleCompleted
}
