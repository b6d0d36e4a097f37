package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
)

func TestPollerAwaitActiveSuccess(t *testing.T) {
	files := newFileProcessorFake()
	clock := newFakeClock()
	observer := newObserverRecorder()
	poller := NewPoller(files, clock, PollerConfig{Interval: 2 * time.Second, MaxWait: 120 * time.Second}, observer)

	handle, err := poller.AwaitActive(context.Background(), files.uploadHandle)
	if err != nil {
		t.Fatalf("AwaitActive() error = %v", err)
	}
	if handle.State != domain.FileStateActive {
		t.Fatalf("expected ACTIVE, got %s", handle.State)
	}
	if handle.URI != files.uploadHandle.URI {
		t.Fatalf("expected uri to be carried over, got %q", handle.URI)
	}
	if files.stateCalls != 2 {
		t.Fatalf("expected 2 state calls, got %d", files.stateCalls)
	}
	if len(clock.sleeps) != 2 || clock.sleeps[0] != 2*time.Second {
		t.Fatalf("unexpected sleeps: %v", clock.sleeps)
	}
	if observer.polls != 1 {
		t.Fatalf("expected one poll observation, got %d", observer.polls)
	}
}

func TestPollerAlreadyActiveMakesNoCalls(t *testing.T) {
	files := newFileProcessorFake()
	poller := NewPoller(files, newFakeClock(), PollerConfig{}, nil)

	handle := files.uploadHandle
	handle.State = domain.FileStateActive
	if _, err := poller.AwaitActive(context.Background(), handle); err != nil {
		t.Fatalf("AwaitActive() error = %v", err)
	}
	if files.stateCalls != 0 {
		t.Fatalf("expected no state calls, got %d", files.stateCalls)
	}
}

func TestPollerFailedState(t *testing.T) {
	files := newFileProcessorFake()
	files.states = []domain.FileState{domain.FileStateProcessing, domain.FileStateFailed}
	poller := NewPoller(files, newFakeClock(), PollerConfig{}, nil)

	_, err := poller.AwaitActive(context.Background(), files.uploadHandle)
	if !errors.Is(err, domain.ErrProcessingFailed) {
		t.Fatalf("expected ErrProcessingFailed, got %v", err)
	}
}

func TestPollerTimesOutWithinBudget(t *testing.T) {
	files := newFileProcessorFake()
	files.states = []domain.FileState{domain.FileStateProcessing}
	clock := newFakeClock()
	cfg := PollerConfig{Interval: 2 * time.Second, MaxWait: 120 * time.Second}
	poller := NewPoller(files, clock, cfg, nil)

	started := clock.Now()
	_, err := poller.AwaitActive(context.Background(), files.uploadHandle)
	if !errors.Is(err, domain.ErrProcessingTimeout) {
		t.Fatalf("expected ErrProcessingTimeout, got %v", err)
	}
	if elapsed := clock.elapsed(started); elapsed > cfg.MaxWait+cfg.Interval {
		t.Fatalf("poller ran %s, budget %s", elapsed, cfg.MaxWait+cfg.Interval)
	}
	if files.stateCalls != 60 {
		t.Fatalf("expected 60 state calls, got %d", files.stateCalls)
	}
}

func TestPollerUnevenIntervalStillBounded(t *testing.T) {
	files := newFileProcessorFake()
	files.states = []domain.FileState{domain.FileStatePending}
	clock := newFakeClock()
	cfg := PollerConfig{Interval: 7 * time.Second, MaxWait: 20 * time.Second}
	poller := NewPoller(files, clock, cfg, nil)

	started := clock.Now()
	_, err := poller.AwaitActive(context.Background(), files.uploadHandle)
	if !errors.Is(err, domain.ErrProcessingTimeout) {
		t.Fatalf("expected ErrProcessingTimeout, got %v", err)
	}
	if elapsed := clock.elapsed(started); elapsed != 21*time.Second {
		t.Fatalf("expected 21s elapsed, got %s", elapsed)
	}
}

func TestPollerStopsOnCancellation(t *testing.T) {
	files := newFileProcessorFake()
	files.states = []domain.FileState{domain.FileStateProcessing}
	poller := NewPoller(files, newFakeClock(), PollerConfig{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := poller.AwaitActive(ctx, files.uploadHandle)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if files.stateCalls != 0 {
		t.Fatalf("expected no state calls after cancellation, got %d", files.stateCalls)
	}
}

func TestPollerStateErrorPropagates(t *testing.T) {
	files := newFileProcessorFake()
	files.stateErr = domain.WrapError(domain.ErrTemporary, "get file", errors.New("connection reset"))
	poller := NewPoller(files, newFakeClock(), PollerConfig{}, nil)

	_, err := poller.AwaitActive(context.Background(), files.uploadHandle)
	if !errors.Is(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}
}

func TestPollerStepDecisions(t *testing.T) {
	files := newFileProcessorFake()
	clock := newFakeClock()
	poller := NewPoller(files, clock, PollerConfig{Interval: time.Second, MaxWait: 10 * time.Second}, nil)

	tests := []struct {
		name     string
		state    domain.FileState
		started  time.Time
		decision PollDecision
	}{
		{name: "active", state: domain.FileStateActive, started: clock.Now(), decision: PollActive},
		{name: "failed", state: domain.FileStateFailed, started: clock.Now(), decision: PollFailed},
		{name: "expired", state: domain.FileStateProcessing, started: clock.Now().Add(-10 * time.Second), decision: PollTimedOut},
		{name: "continue", state: domain.FileStatePending, started: clock.Now(), decision: PollContinue},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handle := domain.RemoteFileHandle{Name: "files/x", State: tc.state}
			_, decision, err := poller.Step(context.Background(), handle, tc.started)
			if err != nil {
				t.Fatalf("Step() error = %v", err)
			}
			if decision != tc.decision {
				t.Fatalf("expected %s, got %s", tc.decision, decision)
			}
		})
	}
}
