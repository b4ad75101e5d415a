package cacherepositories

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// runTrimmer calls trim on every tick and every request until ctx is done.
func runTrimmer(ctx context.Context, interval time.Duration, requests <-chan struct{}, trim func(context.Context) error, log logrus.FieldLogger) {
	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
		case <-requests:
		}

		if err := trim(ctx); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("cache storage trim failed")
		}
	}
}

func signalTrim(requests chan struct{}) {
	select {
	case requests <- struct{}{}:
	default:
	}
}
