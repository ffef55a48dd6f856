package rates

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tourvia/commission-service/internal/domain/models"
	"github.com/tourvia/commission-service/internal/domain/ports"
)

// StaticAdapter implements ports.RateSource from an in-memory table.
// Used in development and tests; production wires the HTTP adapter.
type StaticAdapter struct {
	mu               sync.RWMutex
	commissionRates  map[string]decimal.Decimal // role|category
	withholdingRates map[string]decimal.Decimal // jurisdiction
}

// NewStaticAdapter creates an empty static rate table
func NewStaticAdapter() *StaticAdapter {
	return &StaticAdapter{
		commissionRates:  make(map[string]decimal.Decimal),
		withholdingRates: make(map[string]decimal.Decimal),
	}
}

// SetCommissionRate sets the commission percentage for a role and category
func (a *StaticAdapter) SetCommissionRate(role models.ProfileRole, productCategory string, rate decimal.Decimal) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.commissionRates[string(role)+"|"+productCategory] = rate
}

// SetWithholdingRate sets the withholding percentage for a jurisdiction
func (a *StaticAdapter) SetWithholdingRate(jurisdiction string, rate decimal.Decimal) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.withholdingRates[jurisdiction] = rate
}

// CommissionRate returns the configured commission rate
func (a *StaticAdapter) CommissionRate(_ context.Context, role models.ProfileRole, productCategory string, _ time.Time) ports.RateResult {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if rate, ok := a.commissionRates[string(role)+"|"+productCategory]; ok {
		return ports.RateResult{Rate: rate, Outcome: ports.RateOutcomeFound}
	}
	return ports.RateResult{Outcome: ports.RateOutcomeNotFound}
}

// WithholdingRate returns the configured withholding rate
func (a *StaticAdapter) WithholdingRate(_ context.Context, jurisdiction string) ports.RateResult {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if rate, ok := a.withholdingRates[jurisdiction]; ok {
		return ports.RateResult{Rate: rate, Outcome: ports.RateOutcomeFound}
	}
	return ports.RateResult{Outcome: ports.RateOutcomeNotFound}
}
