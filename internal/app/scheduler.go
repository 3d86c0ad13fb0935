package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/utafrali/storefront/internal/repository"
)

const (
	purgeSchedule = "@every 1h"
	jobTimeout    = 2 * time.Minute
)

// catalogRefresher is the part of the catalog service the scheduler drives.
type catalogRefresher interface {
	RefreshCatalog(ctx context.Context) (int, error)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append([]any{slog.String("error", err.Error())}, keysAndValues...)...)
}

// newScheduler registers the background jobs. An empty refreshSchedule skips
// the catalog refresh; a nil purger skips the expired-state purge.
func newScheduler(refreshSchedule string, refresher catalogRefresher, purger repository.Purger, logger *slog.Logger) (*cron.Cron, error) {
	cl := cronLogger{l: logger}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	if refreshSchedule != "" {
		if _, err := c.AddFunc(refreshSchedule, func() { runRefresh(refresher, logger) }); err != nil {
			return nil, fmt.Errorf("register catalog refresh job: %w", err)
		}
		logger.Info("catalog refresh scheduled", slog.String("schedule", refreshSchedule))
	}

	if purger != nil {
		if _, err := c.AddFunc(purgeSchedule, func() { runPurge(purger, logger) }); err != nil {
			return nil, fmt.Errorf("register state purge job: %w", err)
		}
	}

	return c, nil
}

func runRefresh(refresher catalogRefresher, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	n, err := refresher.RefreshCatalog(ctx)
	if err != nil {
		logger.Warn("catalog refresh failed", slog.String("error", err.Error()))
		return
	}
	logger.Info("catalog refreshed",
		slog.Int("products", n),
		slog.Duration("duration", time.Since(start)),
	)
}

func runPurge(purger repository.Purger, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := purger.PurgeExpired(ctx)
	if err != nil {
		logger.Error("expired state purge failed", slog.String("error", err.Error()))
		return
	}
	if n > 0 {
		logger.Info("expired state purged", slog.Int64("rows", n))
	}
}
