package auth

import "github.com/golang-jwt/jwt/v5"

// Role is the coarse operator role carried in the access token. The
// capability set is always derived server-side from the role; tokens never
// carry capabilities directly.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleFinance Role = "FINANCE"
	RoleSupport Role = "SUPPORT"
	RoleIngest  Role = "INGEST"
)

// Capability is a single named permission checked at the route level
type Capability string

const (
	CapLedgerRead        Capability = "ledger:read"
	CapSaleIngest        Capability = "sale:ingest"
	CapAdjustmentRequest Capability = "adjustment:request"
	CapAdjustmentDecide  Capability = "adjustment:decide"
	CapSettlementRun     Capability = "settlement:run"
	CapSettlementPay     Capability = "settlement:pay"
	CapRelationWrite     Capability = "relation:write"
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapLedgerRead:        true,
		CapSaleIngest:        true,
		CapAdjustmentRequest: true,
		CapAdjustmentDecide:  true,
		CapSettlementRun:     true,
		CapSettlementPay:     true,
		CapRelationWrite:     true,
	},
	RoleFinance: {
		CapLedgerRead:        true,
		CapAdjustmentRequest: true,
		CapAdjustmentDecide:  true,
		CapSettlementRun:     true,
		CapSettlementPay:     true,
	},
	RoleSupport: {
		CapLedgerRead:        true,
		CapAdjustmentRequest: true,
	},
	RoleIngest: {
		CapSaleIngest:    true,
		CapRelationWrite: true,
	},
}

// Capabilities returns the capability set granted to a role. Unknown roles
// get an empty set.
func Capabilities(role Role) map[Capability]bool {
	return roleCapabilities[role]
}

// Claims are the only supported JWT claims shape for this service
type Claims struct {
	jwt.RegisteredClaims

	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}
