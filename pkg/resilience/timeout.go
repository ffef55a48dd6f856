package resilience

import (
	"context"
	"time"
)

// TimeoutConfig defines timeout values for the application's timeout hierarchy
//
// Timeout Hierarchy (from outermost to innermost):
//
//	HTTP Handler (30s)
//	  Service Layer (25s)
//	    Rate Table Lookup (2s)
//	    Database Query (2s/5s - handled in the postgres adapter)
//
// Each layer completes before its parent times out. The settlement batch
// runs under its own much longer budget since it touches every profile.
type TimeoutConfig struct {
	// Handler layer timeouts
	HTTPHandler   time.Duration // Overall request timeout (default: 30s)
	SettlementRun time.Duration // Full settlement batch (default: 10 minutes)

	// Service layer timeouts
	Service time.Duration // Service operation timeout (default: 25s)

	// External lookups (adapters)
	RateLookup time.Duration // Rate table call (default: 2s)
}

// DefaultTimeoutConfig returns production timeout values
func DefaultTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		HTTPHandler:   30 * time.Second,
		SettlementRun: 10 * time.Minute,
		Service:       25 * time.Second,
		RateLookup:    2 * time.Second,
	}
}

// TestTimeoutConfig returns shorter timeouts for testing
func TestTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		HTTPHandler:   5 * time.Second,
		SettlementRun: 30 * time.Second,
		Service:       4 * time.Second,
		RateLookup:    1 * time.Second,
	}
}

// HandlerContext creates a context with timeout for HTTP handlers
func (tc *TimeoutConfig) HandlerContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.HTTPHandler)
}

// SettlementContext creates a context with timeout for settlement batch runs
func (tc *TimeoutConfig) SettlementContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.SettlementRun)
}

// ServiceContext creates a context with timeout for service layer operations
func (tc *TimeoutConfig) ServiceContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.Service)
}

// RateLookupContext creates a context for external rate table calls
func (tc *TimeoutConfig) RateLookupContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.RateLookup)
}
