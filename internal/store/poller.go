package store

import (
	"context"
	"time"
)

// Watch polls the backend every interval and publishes plans committed by
// other processes to local subscribers. It returns when ctx is done.
func (s *Store) Watch(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var seen int64
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		plan, err := s.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.loggerFor(ctx, "Watch").WarnContext(ctx, "poll failed", "error", err)
			continue
		}
		if seen == 0 {
			seen = plan.Version
			continue
		}
		if plan.Version > seen {
			seen = plan.Version
			s.hub.Publish(plan)
		}
	}
}
