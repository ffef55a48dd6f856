package models

import "time"

// SystemActor is the actor recorded for batch and engine-initiated entries
const SystemActor = "SYSTEM"

// AuditCategory groups audit entries by the subsystem that produced them
type AuditCategory string

const (
	AuditSalePosted         AuditCategory = "SALE_POSTED"
	AuditRelationWarning    AuditCategory = "RELATION_WARNING"
	AuditRoundingRemainder  AuditCategory = "ROUNDING_REMAINDER"
	AuditAdjustmentApplied  AuditCategory = "ADJUSTMENT_APPLIED"
	AuditAdjustmentRejected AuditCategory = "ADJUSTMENT_REJECTED"
	AuditSettlementRun      AuditCategory = "SETTLEMENT_RUN"
	AuditStatementPaid      AuditCategory = "STATEMENT_PAID"
	AuditRelationChanged    AuditCategory = "RELATION_CHANGED"
)

// AuditEntry is one append-only record of a state transition. Entries are
// written in the same transaction as the mutation they describe and are
// never updated or deleted.
type AuditEntry struct {
	ID           string
	Category     AuditCategory
	Action       string
	SaleID       *string
	LedgerLineID *string
	ActorID      string
	Detail       map[string]interface{}
	CreatedAt    time.Time
}
