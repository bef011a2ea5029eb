// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/iglesiahub/internal/app/system/auditlog"
	"github.com/dalemusser/iglesiahub/internal/app/system/automation"
	"go.uber.org/zap"
)

// Job is a unit of periodic background work.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// AutomationJob reapplies the membership rules to every active church.
// Each church's pass is written to the audit log.
func AutomationJob(runner *automation.Runner, audit *auditlog.Logger, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:     "membership-automation",
		Interval: interval,
		Run: func(ctx context.Context) error {
			sum, err := runner.RunAll(ctx)
			if err != nil {
				return err
			}
			for _, c := range sum.Churches {
				audit.AutomationRun(ctx, auditlog.SystemActor(c.ChurchID), c.Total, c.Updated, c.Errors)
			}
			if sum.Failed > 0 {
				logger.Warn("some churches failed automation", zap.Int("failed_churches", sum.Failed))
			}
			return nil
		},
	}
}
