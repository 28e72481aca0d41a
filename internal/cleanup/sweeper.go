// Package cleanup runs the daily maintenance that the managed cron job
// used to do: purging accounts that never confirmed their email and
// dropping verification codes that expired.
package cleanup

import (
	"context"
	"log"
	"time"
)

// UnverifiedPurger deletes unverified users created before the cutoff.
type UnverifiedPurger interface {
	DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ExpiredCodePurger deletes codes whose expiry passed before the cutoff.
type ExpiredCodePurger interface {
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// unverifiedRetention is how long an account may stay unverified
// before the sweeper removes it.
const unverifiedRetention = 7 * 24 * time.Hour

// Start launches the sweeper loop. One pass runs immediately, then one
// per interval (a day in production). The loop stops when ctx is
// cancelled.
func Start(ctx context.Context, users UnverifiedPurger, codes ExpiredCodePurger, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		sweep(ctx, users, codes)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweep(ctx, users, codes)
			}
		}
	}()
}

func sweep(ctx context.Context, users UnverifiedPurger, codes ExpiredCodePurger) {
	opCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	now := time.Now().UTC()
	if n, err := users.DeleteUnverifiedBefore(opCtx, now.Add(-unverifiedRetention)); err != nil {
		log.Printf("cleanup: unverified user purge failed: %v", err)
	} else if n > 0 {
		log.Printf("cleanup: removed %d unverified users", n)
	}

	if n, err := codes.DeleteExpiredBefore(opCtx, now); err != nil {
		log.Printf("cleanup: expired code purge failed: %v", err)
	} else if n > 0 {
		log.Printf("cleanup: removed %d expired codes", n)
	}
}
