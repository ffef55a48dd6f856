package resilience

import (
	"context"
	"testing"
	"time"
)

func TestDefaultTimeoutHierarchy(t *testing.T) {
	config := DefaultTimeoutConfig()

	// Each layer must complete before its parent times out
	if config.HTTPHandler <= config.Service {
		t.Errorf("HTTPHandler (%v) must be > Service (%v)", config.HTTPHandler, config.Service)
	}
	if config.Service <= config.RateLookup {
		t.Errorf("Service (%v) must be > RateLookup (%v)", config.Service, config.RateLookup)
	}
	if config.SettlementRun <= config.HTTPHandler {
		t.Errorf("SettlementRun (%v) must be > HTTPHandler (%v)", config.SettlementRun, config.HTTPHandler)
	}
}

func TestTestTimeoutHierarchy(t *testing.T) {
	config := TestTimeoutConfig()

	if config.HTTPHandler <= config.Service {
		t.Errorf("HTTPHandler (%v) must be > Service (%v)", config.HTTPHandler, config.Service)
	}
	if config.Service <= config.RateLookup {
		t.Errorf("Service (%v) must be > RateLookup (%v)", config.Service, config.RateLookup)
	}
}

func TestContextConstructors(t *testing.T) {
	config := TestTimeoutConfig()

	tests := []struct {
		name    string
		fn      func(context.Context) (context.Context, context.CancelFunc)
		timeout time.Duration
	}{
		{"HandlerContext", config.HandlerContext, config.HTTPHandler},
		{"SettlementContext", config.SettlementContext, config.SettlementRun},
		{"ServiceContext", config.ServiceContext, config.Service},
		{"RateLookupContext", config.RateLookupContext, config.RateLookup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.fn(context.Background())
			defer cancel()

			deadline, ok := ctx.Deadline()
			if !ok {
				t.Fatal("expected a deadline")
			}

			remaining := time.Until(deadline)
			if remaining > tt.timeout {
				t.Errorf("deadline %v further out than configured timeout %v", remaining, tt.timeout)
			}
			if remaining < tt.timeout-100*time.Millisecond {
				t.Errorf("deadline %v too close for configured timeout %v", remaining, tt.timeout)
			}
		})
	}
}

func TestContextCancellationPropagates(t *testing.T) {
	config := TestTimeoutConfig()

	parent, cancelParent := context.WithCancel(context.Background())
	ctx, cancel := config.ServiceContext(parent)
	defer cancel()

	cancelParent()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Error("child context not cancelled when parent cancelled")
	}
}
