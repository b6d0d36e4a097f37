package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// ErrRateGate is returned when the local token bucket cannot admit a call
// before the context ends.
var ErrRateGate = errors.New("resilience: rate gate rejected call")

// ErrorClassification tells the executor what to do with a failed attempt.
// Wait, when positive, replaces the computed backoff for the next attempt
// (an upstream Retry-After hint). Hints above Config.RetryMaxHint end the
// retry loop instead.
type ErrorClassification struct {
	Retryable     bool
	RecordFailure bool
	Wait          time.Duration
}

type ErrorClassifier func(err error) ErrorClassification

// Executor runs outbound calls through a per-operation circuit breaker, an
// optional token bucket and a bounded retry loop.
type Executor struct {
	cfg     Config
	limiter *rate.Limiter
	sleep   func(ctx context.Context, d time.Duration) error

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

func NewExecutor(cfg Config) *Executor {
	cfg = cfg.normalize()
	exec := &Executor{
		cfg:      cfg,
		sleep:    sleepContext,
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
	}
	if cfg.RatePerSecond > 0 {
		exec.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst)
	}
	return exec
}

func (e *Executor) Execute(
	ctx context.Context,
	operation string,
	fn func(context.Context) error,
	classifier ErrorClassifier,
) error {
	if fn == nil {
		return fmt.Errorf("resilience: operation callback is nil")
	}
	op := strings.TrimSpace(operation)
	if op == "" {
		op = "unknown"
	}
	if classifier == nil {
		classifier = recordEveryFailure
	}

	run := func() error {
		return e.retry(ctx, op, fn, classifier)
	}
	if !e.cfg.BreakerEnabled {
		return run()
	}
	_, err := e.breakerFor(op, classifier).Execute(func() (any, error) {
		return nil, run()
	})
	return err
}

// BreakerState reports the breaker state of an operation ("closed" when it
// has never run or breakers are disabled).
func (e *Executor) BreakerState(operation string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if b, ok := e.breakers[operation]; ok {
		return b.State().String()
	}
	return gobreaker.StateClosed.String()
}

func (e *Executor) retry(
	ctx context.Context,
	operation string,
	fn func(context.Context) error,
	classifier ErrorClassifier,
) error {
	delays := newBackoff(e.cfg)

	var err error
	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if err != nil {
				return err
			}
			return ctxErr
		}
		if gateErr := e.admit(ctx); gateErr != nil {
			return gateErr
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= e.cfg.RetryMaxAttempts {
			return err
		}

		class := classifier(err)
		if !class.Retryable {
			return err
		}
		wait := delays.next()
		if class.Wait > 0 {
			if class.Wait > e.cfg.RetryMaxHint {
				return err
			}
			wait = class.Wait
		}

		slog.Warn("retry_attempt",
			"operation", operation,
			"attempt", attempt,
			"max_attempts", e.cfg.RetryMaxAttempts,
			"backoff_ms", wait.Milliseconds(),
			"error", err,
		)
		if e.sleep(ctx, wait) != nil {
			return err
		}
	}
}

func (e *Executor) breakerFor(operation string, classifier ErrorClassifier) *gobreaker.CircuitBreaker[any] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if b, ok := e.breakers[operation]; ok {
		return b
	}

	minRequests := e.cfg.BreakerMinRequests
	ratio := e.cfg.BreakerFailureRatio
	b := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        operation,
		MaxRequests: e.cfg.BreakerHalfOpenMaxCalls,
		Timeout:     e.cfg.BreakerOpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.Requests >= minRequests && float64(c.TotalFailures)/float64(c.Requests) >= ratio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !classifier(err).RecordFailure
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit_breaker_state_change", "operation", name, "from", from.String(), "to", to.String())
		},
	})
	e.breakers[operation] = b
	return b
}

func (e *Executor) admit(ctx context.Context) error {
	if e.limiter == nil {
		return nil
	}
	if err := e.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", ErrRateGate, err)
	}
	return nil
}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func recordEveryFailure(error) ErrorClassification {
	return ErrorClassification{RecordFailure: true}
}

type backoff struct {
	current    time.Duration
	max        time.Duration
	multiplier float64
}

func newBackoff(cfg Config) *backoff {
	return &backoff{current: cfg.RetryInitialBackoff, max: cfg.RetryMaxBackoff, multiplier: cfg.RetryMultiplier}
}

func (b *backoff) next() time.Duration {
	d := min(b.current, b.max)
	b.current = min(time.Duration(float64(b.current)*b.multiplier), b.max)
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
