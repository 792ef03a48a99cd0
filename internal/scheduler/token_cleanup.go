// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/iliyamo/event-ticketing/internal/logger"
)

// ExpiredTokenDeleter removes refresh tokens that expired before cutoff.
// *repository.TokenRepo satisfies it.
type ExpiredTokenDeleter interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// CleanupTokens deletes expired refresh tokens once.
func CleanupTokens(ctx context.Context, tokens ExpiredTokenDeleter, now time.Time) error {
	n, err := tokens.DeleteExpired(ctx, now)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Error("scheduler: token cleanup failed")
		return err
	}
	if n > 0 {
		logger.FromContext(ctx).WithField("deleted", n).Info("scheduler: expired refresh tokens removed")
	}
	return nil
}

// Run starts the token cleanup job every interval and blocks until ctx is
// cancelled, then shuts the scheduler down.
func Run(ctx context.Context, tokens ExpiredTokenDeleter, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Hour
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			jobCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			_ = CleanupTokens(jobCtx, tokens, time.Now())
		}),
		gocron.WithName("refresh-token-cleanup"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return err
	}

	s.Start()
	logger.FromContext(ctx).WithField("interval", interval.String()).Info("scheduler: started")
	<-ctx.Done()
	return s.Shutdown()
}
