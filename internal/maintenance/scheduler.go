// Package maintenance keeps the transcript database small: it prunes rows
// past the retention period and vacuums the file on a fixed interval.
package maintenance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yourusername/relay/internal/database"
	"github.com/yourusername/relay/internal/output"
)

const vacuumTimeout = 5 * time.Minute

// Scheduler runs transcript maintenance in the background
type Scheduler struct {
	db            *database.DB
	logger        output.Logger
	interval      time.Duration
	retentionDays int // 0 keeps everything
	now           func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastRun time.Time
}

// New creates a scheduler that runs every interval
func New(db *database.DB, logger output.Logger, interval time.Duration, retentionDays int) *Scheduler {
	return &Scheduler{
		db:            db,
		logger:        logger,
		interval:      interval,
		retentionDays: retentionDays,
		now:           time.Now,
	}
}

// Start runs one pass right away, then one every interval
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler is already running")
	}
	if s.interval <= 0 {
		return fmt.Errorf("maintenance interval must be positive, got %v", s.interval)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.running = true

	s.logger.Info("Starting transcript maintenance (every %v, retention %d days)", s.interval, s.retentionDays)
	s.wg.Add(1)
	go s.run(ctx)
	return nil
}

// Stop cancels the scheduler and waits for a pass in progress to finish
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is not running")
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// IsRunning reports whether Start has been called without Stop
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// LastRun returns when the last complete pass finished
func (s *Scheduler) LastRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("Transcript maintenance failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce prunes expired rows, then vacuums
func (s *Scheduler) RunOnce(ctx context.Context) error {
	start := s.now()

	if s.retentionDays > 0 {
		cutoff := start.AddDate(0, 0, -s.retentionDays)
		removed, err := s.db.PruneBefore(cutoff)
		if err != nil {
			return err
		}
		if removed > 0 {
			remaining, err := s.db.MessageCount()
			if err != nil {
				return err
			}
			s.logger.Info("Pruned %d transcript rows older than %d days (%d messages remain)", removed, s.retentionDays, remaining)
		}
	}

	vacuumCtx, cancel := context.WithTimeout(ctx, vacuumTimeout)
	defer cancel()
	if err := s.db.Vacuum(vacuumCtx); err != nil {
		return err
	}

	s.mu.Lock()
	s.lastRun = s.now()
	s.mu.Unlock()
	s.logger.Success("Transcript maintenance completed in %.2f seconds", time.Since(start).Seconds())
	return nil
}
