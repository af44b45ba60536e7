package publish

import (
	"context"
	"time"

	"github.com/spencer-p/skydash/pkg/almanac"
	"github.com/spencer-p/skydash/pkg/logging"
)

// ReportsFunc computes the reports to publish at an instant.
type ReportsFunc func(t time.Time) ([]*almanac.Report, error)

// Run publishes reports now and then every interval until ctx is done.
// Failures are logged and retried on the next tick.
func Run(ctx context.Context, p Publisher, site string, every time.Duration, reports ReportsFunc) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		Once(p, site, reports, time.Now())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Once computes and publishes the reports at t, logging any failure.
func Once(p Publisher, site string, reports ReportsFunc, t time.Time) bool {
	rs, err := reports(t)
	if err != nil {
		logging.Errorw("Failed to compute reports", "site", site, "error", err)
		return false
	}
	if err := PublishReports(p, site, rs); err != nil {
		logging.Errorw("Failed to publish reports", "site", site, "error", err)
		return false
	}
	logging.Debugw("Published reports", "site", site, "bodies", len(rs))
	return true
}
