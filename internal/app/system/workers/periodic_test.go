package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/iglesiahub/internal/app/system/tasks"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPeriodic_RunsAndStops(t *testing.T) {
	var runs int32
	done := make(chan struct{}, 10)
	w := NewPeriodic(tasks.Job{
		Name:     "test",
		Interval: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			atomic.AddInt32(&runs, 1)
			done <- struct{}{}
			return nil
		},
	}, zap.NewNop(), time.Second)

	w.Start()
	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("job did not run")
		}
	}
	w.Stop()

	if atomic.LoadInt32(&runs) < 2 {
		t.Errorf("runs: got %d, want >= 2", runs)
	}
}

func TestPeriodic_StopCancelsInFlightRun(t *testing.T) {
	started := make(chan struct{})
	w := NewPeriodic(tasks.Job{
		Name:     "slow",
		Interval: time.Millisecond,
		Run: func(ctx context.Context) error {
			select {
			case started <- struct{}{}:
			default:
			}
			<-ctx.Done()
			return ctx.Err()
		},
	}, zap.NewNop(), time.Hour)

	w.Start()
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not start")
	}

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not cancel the in-flight run")
	}
}

func TestPeriodic_ErrorDoesNotStopLoop(t *testing.T) {
	calls := make(chan struct{}, 10)
	w := NewPeriodic(tasks.Job{
		Name:     "flaky",
		Interval: 2 * time.Millisecond,
		Run: func(ctx context.Context) error {
			calls <- struct{}{}
			return errors.New("boom")
		},
	}, zap.NewNop(), time.Second)

	w.Start()
	defer w.Stop()
	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-time.After(2 * time.Second):
			t.Fatal("loop stopped after an error")
		}
	}
}

func TestPeriodic_StopTwice(t *testing.T) {
	w := NewPeriodic(tasks.Job{
		Name:     "twice",
		Interval: time.Hour,
		Run:      func(context.Context) error { return nil },
	}, zap.NewNop(), time.Second)

	w.Start()
	w.Stop()
	w.Stop()
}
