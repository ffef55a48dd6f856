package shutdown

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// InFlightTracker counts work in progress so shutdown can drain it. The
// settlement scheduler wraps each aggregation run in Add/Done; once Shutdown
// has been called no new run starts.
type InFlightTracker struct {
	wg         sync.WaitGroup
	shutdownCh chan struct{}
	logger     *zap.Logger
	name       string
}

// NewInFlightTracker creates a named in-flight work tracker
func NewInFlightTracker(name string, logger *zap.Logger) *InFlightTracker {
	return &InFlightTracker{
		shutdownCh: make(chan struct{}),
		logger:     logger,
		name:       name,
	}
}

// Add registers one unit of work. It returns false once shutdown has
// started; the caller must not begin the work in that case.
func (ift *InFlightTracker) Add() bool {
	select {
	case <-ift.shutdownCh:
		return false
	default:
		ift.wg.Add(1)
		return true
	}
}

// Done marks one unit of work finished, typically via defer
func (ift *InFlightTracker) Done() {
	ift.wg.Done()
}

// Shutdown stops admission and waits for in-flight work, bounded by ctx
func (ift *InFlightTracker) Shutdown(ctx context.Context) error {
	close(ift.shutdownCh)

	ift.logger.Info("waiting for in-flight work",
		zap.String("tracker", ift.name),
	)

	done := make(chan struct{})
	go func() {
		ift.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		ift.logger.Info("in-flight work drained",
			zap.String("tracker", ift.name),
		)
		return nil
	case <-ctx.Done():
		ift.logger.Warn("drain deadline exceeded, some work may be incomplete",
			zap.String("tracker", ift.name),
		)
		return ctx.Err()
	}
}
