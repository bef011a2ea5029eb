// internal/app/system/workers/periodic.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/iglesiahub/internal/app/system/tasks"
	"go.uber.org/zap"
)

// Periodic runs a tasks.Job on its interval until stopped.
type Periodic struct {
	job     tasks.Job
	log     *zap.Logger
	timeout time.Duration
	stopCh  chan struct{}
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	mu      sync.Mutex
	stopped sync.Once
}

// NewPeriodic creates a worker for job. Each run is bounded by timeout.
func NewPeriodic(job tasks.Job, logger *zap.Logger, timeout time.Duration) *Periodic {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Periodic{
		job:     job,
		log:     logger,
		timeout: timeout,
		stopCh:  make(chan struct{}),
	}
}

// Start begins the background loop.
func (w *Periodic) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("worker started",
		zap.String("job", w.job.Name),
		zap.Duration("interval", w.job.Interval))
}

// Stop cancels an in-flight run, signals the loop to exit and waits for it.
// Calls after the first are no-ops.
func (w *Periodic) Stop() {
	w.stopped.Do(func() {
		close(w.stopCh)
		w.mu.Lock()
		if w.cancel != nil {
			w.cancel()
		}
		w.mu.Unlock()
		w.wg.Wait()
		w.log.Info("worker stopped", zap.String("job", w.job.Name))
	})
}

func (w *Periodic) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.runOnce()
		}
	}
}

func (w *Periodic) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.cancel = nil
		w.mu.Unlock()
		cancel()
	}()

	start := time.Now()
	if err := w.job.Run(ctx); err != nil {
		w.log.Error("job failed", zap.String("job", w.job.Name), zap.Error(err))
		return
	}
	w.log.Debug("job finished", zap.String("job", w.job.Name), zap.Duration("took", time.Since(start)))
}
