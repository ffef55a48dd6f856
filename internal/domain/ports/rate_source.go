package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tourvia/commission-service/internal/domain/models"
)

// RateOutcome classifies a rate lookup result so callers can short-circuit
// correctly instead of treating timeouts as missing configuration.
type RateOutcome string

const (
	RateOutcomeFound    RateOutcome = "FOUND"
	RateOutcomeNotFound RateOutcome = "NOT_FOUND"
	RateOutcomeTimeout  RateOutcome = "TIMEOUT"
	RateOutcomeError    RateOutcome = "ERROR"
)

// RateResult is the explicit result of a rate lookup. Rate is a percentage
// (10 means 10%), valid only when Outcome is RateOutcomeFound.
type RateResult struct {
	Rate    decimal.Decimal
	Outcome RateOutcome
	Err     error
}

// RateSource is the externally configured, versioned commission rate table.
// The engine treats it as a pure function input; lookups must respect the
// context deadline and the posting operation fails closed when they do not
// resolve.
type RateSource interface {
	// CommissionRate returns the commission percentage for a role selling a
	// product category, as of the given sale date
	CommissionRate(ctx context.Context, role models.ProfileRole, productCategory string, asOf time.Time) RateResult

	// WithholdingRate returns the tax withholding percentage for a
	// jurisdiction
	WithholdingRate(ctx context.Context, jurisdiction string) RateResult
}
