package supervisor

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func waitAll(t *testing.T, s *Supervisor) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Wait(ctx)
}

func TestGoCapturesFirstErrorAndCancels(t *testing.T) {
	t.Parallel()

	s := NewSupervisor(context.Background(), WithCancelOnError(true))
	s.Go("boom", func(ctx context.Context) error {
		return errors.New("boom")
	})
	s.Go("sleeper", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})

	err := waitAll(t, s)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("Wait() = %v, want boom error", err)
	}
	select {
	case <-s.Context().Done():
	default:
		t.Fatal("context not cancelled after first error")
	}
}

func TestGoTurnsPanicIntoError(t *testing.T) {
	t.Parallel()

	s := NewSupervisor(context.Background())
	s.Go("panicky", func(ctx context.Context) error {
		panic("kaboom")
	})

	if err := waitAll(t, s); err == nil || !strings.Contains(err.Error(), "panic in panicky") {
		t.Fatalf("Wait() = %v, want recovered panic error", err)
	}
}

func TestGoIgnoresContextCanceled(t *testing.T) {
	t.Parallel()

	s := NewSupervisor(context.Background())
	s.Go("quitter", func(ctx context.Context) error {
		return context.Canceled
	})

	if err := waitAll(t, s); err != nil {
		t.Fatalf("Wait() = %v, want nil for context.Canceled exit", err)
	}
}

func TestGoRestartGivesUpAfterMaxRestarts(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	s := NewSupervisor(context.Background())
	s.GoRestart("flaky", func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("still broken")
	},
		WithRestartBackoff(time.Millisecond, 2*time.Millisecond),
		WithMaxRestarts(2),
		WithFatalOnFinalError(true),
	)

	err := waitAll(t, s)
	if err == nil || !strings.Contains(err.Error(), "still broken") {
		t.Fatalf("Wait() = %v, want final error after restarts", err)
	}
	// initial run plus two restarts
	if got := calls.Load(); got != 3 {
		t.Fatalf("calls = %d, want 3", got)
	}
}

func TestGoRestartStopsOnCleanExitByDefault(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	s := NewSupervisor(context.Background())
	s.GoRestart("oneshot", func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, WithRestartBackoff(time.Millisecond, 2*time.Millisecond))

	if err := waitAll(t, s); err != nil {
		t.Fatalf("Wait() = %v, want nil", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestGoRestartKeepsRunningWhenCleanExitDisabled(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	enough := make(chan struct{})
	s := NewSupervisor(context.Background())
	s.GoRestart("loop", func(ctx context.Context) error {
		if calls.Add(1) == 3 {
			close(enough)
		}
		return nil
	},
		WithRestartBackoff(time.Millisecond, 2*time.Millisecond),
		WithStopOnCleanExit(false),
	)

	select {
	case <-enough:
	case <-time.After(5 * time.Second):
		t.Fatal("loop was not restarted after clean exits")
	}
	s.Cancel()
	_ = waitAll(t, s)
}

func TestWaitHonorsDeadline(t *testing.T) {
	t.Parallel()

	s := NewSupervisor(context.Background())
	s.Go("stuck", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait() = %v, want deadline exceeded", err)
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() = %v", err)
	}
}

func TestCounters(t *testing.T) {
	t.Parallel()

	s := NewSupervisor(context.Background())
	release := make(chan struct{})
	s.Go("held", func(ctx context.Context) error {
		<-release
		return nil
	})

	c := s.Counters()
	if c.Started != 1 || c.Active != 1 {
		t.Fatalf("Counters() = %+v, want started=1 active=1", c)
	}

	close(release)
	if err := waitAll(t, s); err != nil {
		t.Fatalf("Wait() = %v", err)
	}
	if c := s.Counters(); c.Active != 0 {
		t.Fatalf("Active = %d after Wait, want 0", c.Active)
	}
}
