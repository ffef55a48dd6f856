package settlement

import (
	"context"
	"time"

	"github.com/tourvia/commission-service/internal/domain/models"
	"github.com/tourvia/commission-service/internal/domain/ports"
	"github.com/tourvia/commission-service/pkg/resilience"
	"github.com/tourvia/commission-service/pkg/shutdown"
	"github.com/tourvia/commission-service/pkg/timeutil"
	"go.uber.org/zap"
)

// Scheduler fires one settlement run for the just-closed month at the start
// of every month. Intended for single-instance deployments; clustered
// deployments trigger runs through the API instead so only one node runs the
// batch.
type Scheduler struct {
	service  ports.SettlementService
	timeouts *resilience.TimeoutConfig
	backoff  resilience.BackoffStrategy
	tracker  *shutdown.InFlightTracker
	logger   *zap.Logger
	stopCh   chan struct{}
}

// maxRunAttempts bounds retries of a failed scheduled run. Settlement is
// idempotent per profile and period, so re-running a failed batch is safe.
const maxRunAttempts = 3

func NewScheduler(service ports.SettlementService, timeouts *resilience.TimeoutConfig, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		service:  service,
		timeouts: timeouts,
		backoff:  resilience.SettlementRetryBackoff(),
		tracker:  shutdown.NewInFlightTracker("settlement-scheduler", logger),
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the scheduler loop. Returns immediately.
func (s *Scheduler) Start() {
	go s.loop()
	s.logger.Info("settlement scheduler started",
		zap.Time("next_run", timeutil.NextMonthStart(timeutil.Now())))
}

func (s *Scheduler) loop() {
	for {
		now := timeutil.Now()
		next := timeutil.NextMonthStart(now)

		select {
		case <-s.stopCh:
			return
		case <-time.After(next.Sub(now)):
			s.runOnce(next)
		}
	}
}

func (s *Scheduler) runOnce(firedAt time.Time) {
	if !s.tracker.Add() {
		return
	}
	defer s.tracker.Done()

	// The period that just closed
	period := models.PeriodOf(firedAt.AddDate(0, 0, -1))

	for attempt := 0; attempt < maxRunAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-s.stopCh:
				return
			case <-time.After(s.backoff.NextDelay(attempt - 1)):
			}
		}

		ctx, cancel := s.timeouts.SettlementContext(context.Background())
		batch, err := s.service.Run(ctx, period)
		cancel()
		if err != nil {
			s.logger.Error("scheduled settlement run failed",
				zap.String("period", period.String()),
				zap.Int("attempt", attempt+1),
				zap.Error(err))
			continue
		}
		s.logger.Info("scheduled settlement run finished",
			zap.String("period", period.String()),
			zap.Int("succeeded", len(batch.Succeeded)),
			zap.Int("failed", len(batch.Failed)))
		return
	}
	s.logger.Error("scheduled settlement run exhausted retries",
		zap.String("period", period.String()),
		zap.Int("attempts", maxRunAttempts))
}

// Shutdown stops the loop and waits for an in-progress run to finish
func (s *Scheduler) Shutdown(ctx context.Context) error {
	close(s.stopCh)
	return s.tracker.Shutdown(ctx)
}
