package session

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/datadeck-io/datadeck/internal/logger"
)

// StartJanitor runs the TTL sweep on a fixed interval until the
// context is cancelled. It blocks, so callers run it on its own
// goroutine. With expiry disabled (zero TTL) it returns immediately.
func (r *Registry) StartJanitor(ctx context.Context, interval time.Duration) {
	if r.ttl <= 0 {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}

	scheduler := gocron.NewScheduler(time.UTC)

	_, err := scheduler.Every(interval).Do(func() {
		if removed := r.sweep(time.Now()); removed > 0 {
			logger.Info("session janitor evicted %d idle session(s)", removed)
		}
	})
	if err != nil {
		logger.Warn("session janitor not started: %v", err)
		return
	}

	scheduler.StartAsync()
	<-ctx.Done()
	scheduler.Stop()
	logger.Info("session janitor stopped")
}
