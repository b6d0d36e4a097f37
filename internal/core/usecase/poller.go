package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
	"github.com/kirillkom/legal-doc-assistant/internal/core/ports"
)

const (
	DefaultPollInterval = 2 * time.Second
	DefaultPollMaxWait  = 120 * time.Second
)

// Clock abstracts time so the poll loop can be driven by a fake in tests.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

func SystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type PollDecision int

const (
	PollContinue PollDecision = iota
	PollActive
	PollFailed
	PollTimedOut
)

func (d PollDecision) String() string {
	switch d {
	case PollActive:
		return "active"
	case PollFailed:
		return "failed"
	case PollTimedOut:
		return "timed_out"
	default:
		return "continue"
	}
}

type PollerConfig struct {
	Interval time.Duration
	MaxWait  time.Duration
}

type Poller struct {
	files    ports.FileProcessor
	clock    Clock
	cfg      PollerConfig
	observer ports.PipelineObserver
}

func NewPoller(files ports.FileProcessor, clock Clock, cfg PollerConfig, observer ports.PipelineObserver) *Poller {
	if clock == nil {
		clock = SystemClock()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = DefaultPollMaxWait
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return &Poller{files: files, clock: clock, cfg: cfg, observer: observer}
}

// Step advances the poll state machine by one tick. Terminal states and an
// exhausted budget are decided without touching the network; otherwise it
// sleeps one interval and re-reads the remote state.
func (p *Poller) Step(ctx context.Context, handle domain.RemoteFileHandle, startedAt time.Time) (domain.RemoteFileHandle, PollDecision, error) {
	switch handle.State {
	case domain.FileStateActive:
		return handle, PollActive, nil
	case domain.FileStateFailed:
		return handle, PollFailed, nil
	}
	if p.clock.Now().Sub(startedAt) >= p.cfg.MaxWait {
		return handle, PollTimedOut, nil
	}
	if err := p.clock.Sleep(ctx, p.cfg.Interval); err != nil {
		return handle, PollContinue, err
	}
	next, err := p.files.State(ctx, handle.Name)
	if err != nil {
		return handle, PollContinue, err
	}
	if next.Name == "" {
		next.Name = handle.Name
	}
	if next.URI == "" {
		next.URI = handle.URI
	}
	if next.MimeType == "" {
		next.MimeType = handle.MimeType
	}
	return next, PollContinue, nil
}

// AwaitActive polls until the file is ACTIVE. It never outlives MaxWait plus
// one interval (and one state request).
func (p *Poller) AwaitActive(ctx context.Context, handle domain.RemoteFileHandle) (domain.RemoteFileHandle, error) {
	startedAt := p.clock.Now()
	current := handle
	attempts := 0

	for {
		next, decision, err := p.Step(ctx, current, startedAt)
		if err != nil {
			p.observer.ObservePoll(attempts, current.State)
			return current, fmt.Errorf("poll file state %s: %w", current.Name, err)
		}
		current = next

		switch decision {
		case PollActive:
			p.observer.ObservePoll(attempts, current.State)
			return current, nil
		case PollFailed:
			p.observer.ObservePoll(attempts, current.State)
			return current, domain.WrapError(domain.ErrProcessingFailed, "await active", fmt.Errorf("remote file %s reported FAILED", current.Name))
		case PollTimedOut:
			p.observer.ObservePoll(attempts, current.State)
			return current, domain.WrapError(
				domain.ErrProcessingTimeout,
				"await active",
				fmt.Errorf("remote file %s still %s after %s", current.Name, current.State, p.cfg.MaxWait),
			)
		}

		attempts++
		slog.Debug("poll_tick", "file", current.Name, "state", string(current.State), "attempt", attempts)
	}
}
