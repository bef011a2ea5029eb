package automation

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ChurchLister enumerates the churches the periodic run should process.
type ChurchLister interface {
	ListActiveIDs(ctx context.Context) ([]int64, error)
}

// ChurchSummary is one church's line in a RunAll summary.
type ChurchSummary struct {
	ChurchID int64  `json:"church_id"`
	Total    int    `json:"total"`
	Updated  int    `json:"updated"`
	Errors   int    `json:"errors"`
	Failed   string `json:"failed,omitempty"` // set when the church's run could not start
}

// RunSummary accumulates totals across churches.
type RunSummary struct {
	Churches []ChurchSummary `json:"churches"`
	Total    int             `json:"total"`
	Updated  int             `json:"updated"`
	Errors   int             `json:"errors"`
	Failed   int             `json:"failed_churches"`
	Duration time.Duration   `json:"duration"`
}

// Runner drives ApplyChurch over every active church.
type Runner struct {
	svc      *Service
	churches ChurchLister
	log      *zap.Logger
}

// NewRunner builds a Runner.
func NewRunner(svc *Service, churches ChurchLister, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{svc: svc, churches: churches, log: logger}
}

// RunAll processes every active church in turn. A church whose run fails is
// recorded and skipped; later churches still run. The error is non-nil only
// when the church list itself cannot be loaded.
func (r *Runner) RunAll(ctx context.Context) (RunSummary, error) {
	start := time.Now()
	var sum RunSummary

	ids, err := r.churches.ListActiveIDs(ctx)
	if err != nil {
		return sum, err
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			return sum, ctx.Err()
		}
		res, err := r.svc.ApplyChurch(ctx, id)
		line := ChurchSummary{ChurchID: id, Total: res.Total, Updated: res.Updated, Errors: res.Errors}
		if err != nil {
			line.Failed = err.Error()
			sum.Failed++
			r.log.Error("church automation failed", zap.Int64("church_id", id), zap.Error(err))
		} else {
			r.log.Info("church automation complete",
				zap.Int64("church_id", id),
				zap.Int("total", res.Total),
				zap.Int("updated", res.Updated),
				zap.Int("errors", res.Errors))
		}
		sum.Churches = append(sum.Churches, line)
		sum.Total += res.Total
		sum.Updated += res.Updated
		sum.Errors += res.Errors
	}

	sum.Duration = time.Since(start)
	r.log.Info("automation run complete",
		zap.Int("churches", len(ids)),
		zap.Int("failed_churches", sum.Failed),
		zap.Int("total", sum.Total),
		zap.Int("updated", sum.Updated),
		zap.Int("errors", sum.Errors),
		zap.Duration("duration", sum.Duration))
	return sum, nil
}
