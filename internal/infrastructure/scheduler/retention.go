package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tesoreria/backend/internal/infrastructure/rendering"
)

// RetentionSweeperConfig holds configuration for the daily document sweep
type RetentionSweeperConfig struct {
	// SweepHour and SweepMinute define the daily run time (24h format)
	SweepHour   int
	SweepMinute int

	// CheckInterval is how often to check if it's time to run
	CheckInterval time.Duration

	// MaxAge is how old a rendered document may get before removal
	MaxAge time.Duration
}

// DefaultRetentionSweeperConfig returns default sweeper configuration
func DefaultRetentionSweeperConfig() RetentionSweeperConfig {
	return RetentionSweeperConfig{
		SweepHour:     3, // 3am, outside cashier hours
		SweepMinute:   0,
		CheckInterval: time.Minute,
		MaxAge:        90 * 24 * time.Hour,
	}
}

// RetentionSweeper removes archived receipt and cash-cut documents once
// they pass the configured retention age.
type RetentionSweeper struct {
	config  RetentionSweeperConfig
	archive rendering.PDFStorage
	logger  *zap.Logger

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string // Track which date we last ran for
}

// NewRetentionSweeper creates a new retention sweeper
func NewRetentionSweeper(config RetentionSweeperConfig, archive rendering.PDFStorage, logger *zap.Logger) *RetentionSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetentionSweeper{
		config:  config,
		archive: archive,
		logger:  logger,
	}
}

// Start starts the retention sweeper
func (s *RetentionSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Retention sweeper started",
		zap.Int("sweep_hour", s.config.SweepHour),
		zap.Int("sweep_minute", s.config.SweepMinute),
		zap.Duration("max_age", s.config.MaxAge),
	)

	return nil
}

// Stop stops the retention sweeper
func (s *RetentionSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Retention sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop checks periodically if it's time to sweep
func (s *RetentionSweeper) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkAndSweep(ctx)
		}
	}
}

// checkAndSweep runs the sweep once per day at the configured time
func (s *RetentionSweeper) checkAndSweep(ctx context.Context) {
	now := time.Now()
	currentDate := now.Format("2006-01-02")

	// Skip if we already ran today
	s.mu.Lock()
	if s.lastRunDate == currentDate {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	// Check if it's the right time
	if now.Hour() != s.config.SweepHour || now.Minute() != s.config.SweepMinute {
		return
	}

	s.mu.Lock()
	s.lastRunDate = currentDate
	s.mu.Unlock()

	s.Sweep(ctx)
}

// Sweep removes documents older than the configured retention age.
// Exposed for manual triggering.
func (s *RetentionSweeper) Sweep(ctx context.Context) {
	removed, err := s.archive.CleanupOlderThan(ctx, s.config.MaxAge)
	if err != nil {
		s.logger.Error("Document retention sweep failed", zap.Error(err))
		return
	}
	s.logger.Info("Document retention sweep completed",
		zap.Int("removed", removed),
		zap.Duration("max_age", s.config.MaxAge),
	)
}
