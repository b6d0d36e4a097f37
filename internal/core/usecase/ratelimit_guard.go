package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
	"github.com/kirillkom/legal-doc-assistant/internal/core/ports"
)

var errCooldownActive = errors.New("upstream cooldown active")

// RateLimitGuard shares an upstream 429 across invocations so that callers
// fail fast while the cooldown lasts. A nil guard or store is a no-op.
type RateLimitGuard struct {
	store ports.CooldownStore
}

func NewRateLimitGuard(store ports.CooldownStore) *RateLimitGuard {
	return &RateLimitGuard{store: store}
}

func (g *RateLimitGuard) Check(ctx context.Context) error {
	if g == nil || g.store == nil {
		return nil
	}
	remaining, err := g.store.Remaining(ctx)
	if err != nil {
		slog.Warn("cooldown_lookup_failed", "error", err)
		return nil
	}
	if remaining <= 0 {
		return nil
	}
	return &domain.RateLimitError{RetryAfter: remaining, Err: errCooldownActive}
}

// Record starts a cooldown when err is an upstream rate limit.
func (g *RateLimitGuard) Record(ctx context.Context, err error) {
	if g == nil || g.store == nil || err == nil {
		return
	}
	if errors.Is(err, errCooldownActive) {
		return
	}
	var rateErr *domain.RateLimitError
	if !errors.As(err, &rateErr) {
		return
	}
	wait := rateErr.RetryAfter
	if wait <= 0 {
		wait = domain.DefaultRetryAfter
	}
	if startErr := g.store.Start(context.WithoutCancel(ctx), wait); startErr != nil {
		slog.Warn("cooldown_store_failed", "error", startErr)
		return
	}
	slog.Info("cooldown_started", "retry_after", wait.String())
}
