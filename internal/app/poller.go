package app

import (
	"context"
	"time"
)

type refresher interface {
	Refresh()
}

// StartPoller launches a background goroutine that requests a refresh at a
// fixed cadence. It returns immediately. A non-positive interval disables the
// timer; refreshes then only happen on user request.
func StartPoller(ctx context.Context, r refresher, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Refresh()
			}
		}
	}()
}
