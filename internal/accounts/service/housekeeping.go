package service

import (
	"log/slog"
	"time"
)

// HousekeepingService periodically cancels login attempts that outlived the
// provider's code lifetime and forgets revocations of expired passes.
type HousekeepingService struct {
	Attempts *AttemptRegistry
	Passes   *PassService
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
	now    func() time.Time
}

// NewHousekeepingService creates a worker that runs every interval,
// defaulting to one minute.
func NewHousekeepingService(attempts *AttemptRegistry, passes *PassService, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Minute
	}

	return &HousekeepingService{
		Attempts: attempts,
		Passes:   passes,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		now:      time.Now,
	}
}

// Start launches the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts the worker down and waits for an in-progress sweep to finish.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup runs one sweep of each component.
func (s *HousekeepingService) cleanup() {
	now := s.now()

	var attempts, passes int
	if s.Attempts != nil {
		attempts = s.Attempts.Sweep(now)
	}
	if s.Passes != nil {
		passes = s.Passes.Sweep(now)
	}

	if attempts > 0 || passes > 0 {
		s.Logger.Info("housekeeping cleanup completed",
			"expired_attempts", attempts,
			"expired_revocations", passes,
		)
		return
	}
	s.Logger.Debug("housekeeping cleanup completed")
}
