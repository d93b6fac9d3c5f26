package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job types
const (
	JobTypePruneRegistrations = "prune-registrations"
)

// Scheduler runs registered jobs on cron schedules
type Scheduler struct {
	registry *HandlerRegistry
	cron     *cron.Cron
	logger   *slog.Logger
	timeout  time.Duration

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// NewScheduler creates a scheduler for the handlers in registry. Each
// run gets its own context bounded by timeout.
func NewScheduler(registry *HandlerRegistry, timeout time.Duration, logger *slog.Logger) *Scheduler {
	if timeout <= 0 {
		timeout = time.Minute
	}
	cl := cronLogger{logger: logger}
	return &Scheduler{
		registry: registry,
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:  logger,
		timeout: timeout,
		entries: make(map[string]cron.EntryID),
	}
}

// Schedule runs jobType on spec, a standard five-field cron expression
// or a descriptor such as "@hourly".
func (s *Scheduler) Schedule(jobType, spec string) error {
	if !s.registry.HasHandler(jobType) {
		return fmt.Errorf("unknown job type: %s", jobType)
	}

	id, err := s.cron.AddFunc(spec, func() {
		if err := s.RunNow(context.Background(), jobType); err != nil {
			s.logger.Error("scheduled job failed", "type", jobType, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", spec, jobType, err)
	}

	s.mu.Lock()
	if old, ok := s.entries[jobType]; ok {
		s.cron.Remove(old)
	}
	s.entries[jobType] = id
	s.mu.Unlock()

	s.logger.Info("job scheduled", "type", jobType, "schedule", spec)
	return nil
}

// RunNow executes jobType immediately
func (s *Scheduler) RunNow(ctx context.Context, jobType string) error {
	handler, err := s.registry.GetHandler(jobType)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	s.logger.DebugContext(ctx, "running job", "type", jobType)
	if err := handler.Handle(ctx); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "job completed", "type", jobType, "duration", time.Since(start))
	return nil
}

// Next returns the next scheduled run of jobType, or the zero time
func (s *Scheduler) Next(jobType string) time.Time {
	s.mu.Lock()
	id, ok := s.entries[jobType]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// Start begins running schedules in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("job scheduler started", "jobs", len(s.entries))
}

// Stop prevents new runs and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("job scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger routes cron's internal logging to slog
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
