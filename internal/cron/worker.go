package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/seblin/curpy/internal/metrics"
	"github.com/seblin/curpy/internal/rates"
)

const jobName = "refresh_rates"

// Refresher re-evaluates the rate snapshot. *rates.Service satisfies it.
type Refresher interface {
	Refresh(ctx context.Context) (rates.Snapshot, error)
}

// NewScheduler registers the refresh job on a cron scheduler evaluated in
// loc. The returned scheduler is not started.
func NewScheduler(ctx context.Context, schedule string, loc *time.Location, r Refresher, logger *slog.Logger) (*cron.Cron, error) {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := cron.New(cron.WithLocation(loc))
	_, err := c.AddFunc(schedule, func() {
		runOnce(ctx, r, logger)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	return c, nil
}

// Run refreshes on schedule until ctx is done, waiting for a running job
// to finish before returning.
func Run(ctx context.Context, schedule string, loc *time.Location, r Refresher, logger *slog.Logger) error {
	c, err := NewScheduler(ctx, schedule, loc, r, logger)
	if err != nil {
		return err
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("cron worker starting", "schedule", schedule, "location", c.Location().String())
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}

func runOnce(ctx context.Context, r Refresher, logger *slog.Logger) {
	started := time.Now()
	snap, err := r.Refresh(ctx)
	metrics.UpdateJobMetrics(jobName, started, err)
	if err != nil {
		logger.Error("cron: refresh failed", "job", jobName, "error", err, "duration", time.Since(started))
		return
	}
	logger.Info("cron: refresh completed", "job", jobName,
		"published_on", snap.PublishedOn.Format(rates.DateLayout), "duration", time.Since(started))
}
