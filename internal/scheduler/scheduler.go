package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/amishk599/jobdigest/internal/pipeline"
)

// Job is one pass of work the scheduler repeats.
type Job interface {
	Run(ctx context.Context) (pipeline.Report, error)
}

// JobFunc adapts a function to Job.
type JobFunc func(ctx context.Context) (pipeline.Report, error)

func (f JobFunc) Run(ctx context.Context) (pipeline.Report, error) { return f(ctx) }

// Scheduler owns the watch loop: one pass immediately, then one per interval.
type Scheduler struct {
	job      Job
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that runs job every interval.
func NewScheduler(job Job, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		job:      job,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the loop. It returns nil when ctx is cancelled (graceful shutdown).
// A failed pass is logged and the loop continues.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "interval", s.interval.String())

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	rep, err := s.job.Run(ctx)
	if err != nil {
		s.logger.Error("run failed", "error", err)
		return
	}
	s.logger.Info("run complete",
		"emails", rep.SourceEmails,
		"unique", rep.Unique,
		"sent", rep.Sent,
		"took", time.Since(start).Round(time.Millisecond).String(),
	)
}
