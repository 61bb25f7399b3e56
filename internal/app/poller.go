package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// maxBackoff caps the delay between refreshes after repeated failures.
const maxBackoff = 5 * time.Minute

// orderSource is the part of the coordinator the refresher drives.
type orderSource interface {
	SignedIn() bool
	SessionExpired(now time.Time) bool
	RefreshOrders(ctx context.Context) error
}

// StartOrderRefresher launches a background goroutine that refreshes the
// signed-in user's orders at interval, backing off on consecutive failures.
// A non-positive interval disables it. It returns immediately.
func StartOrderRefresher(ctx context.Context, src orderSource, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("refresher")

	go func() {
		failures := 0
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			ran, err := refreshOrders(ctx, src, time.Now())
			switch {
			case err != nil:
				failures++
				logger.Warn("order refresh failed",
					zap.Error(err),
					zap.Int("failures", failures),
				)
			case ran:
				failures = 0
			}
			timer.Reset(calculateBackoff(failures, interval))
		}
	}()
}

// refreshOrders refreshes once. It reports false without calling the
// coordinator when nobody is signed in or the credential has expired.
func refreshOrders(ctx context.Context, src orderSource, now time.Time) (bool, error) {
	if !src.SignedIn() || src.SessionExpired(now) {
		return false, nil
	}
	if err := src.RefreshOrders(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// calculateBackoff doubles base for each consecutive failure, up to maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
