package nats

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
	"github.com/nats-io/nats.go"
)

func TestDispatcherRunsHandlersWithinBound(t *testing.T) {
	var (
		active  int32
		peak    int32
		mu      sync.Mutex
		handled []string
	)
	handler := func(_ context.Context, id string) error {
		cur := atomic.AddInt32(&active, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		mu.Lock()
		handled = append(handled, id)
		mu.Unlock()
		return nil
	}

	d, err := newDispatcher(context.Background(), 2, 0, handler)
	if err != nil {
		t.Fatalf("newDispatcher() error = %v", err)
	}
	for i := 0; i < 8; i++ {
		d.dispatch(fmt.Sprintf("doc-%d", i))
	}
	d.close(time.Second)

	if len(handled) != 8 {
		t.Fatalf("expected 8 handled messages, got %d", len(handled))
	}
	if peak > 2 {
		t.Fatalf("expected at most 2 concurrent handlers, got %d", peak)
	}
}

func TestDispatcherSkipsBlankAndCanceled(t *testing.T) {
	var calls int32
	handler := func(context.Context, string) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	d, err := newDispatcher(ctx, 1, 0, handler)
	if err != nil {
		t.Fatalf("newDispatcher() error = %v", err)
	}
	d.dispatch("   ")
	cancel()
	d.dispatch("doc-1")
	d.close(time.Second)

	if calls != 0 {
		t.Fatalf("expected no handler calls, got %d", calls)
	}
}

func TestDispatcherAppliesHandlerTimeout(t *testing.T) {
	got := make(chan bool, 1)
	handler := func(ctx context.Context, _ string) error {
		_, ok := ctx.Deadline()
		got <- ok
		return errors.New("boom")
	}
	d, err := newDispatcher(context.Background(), 1, time.Minute, handler)
	if err != nil {
		t.Fatalf("newDispatcher() error = %v", err)
	}
	d.dispatch("doc-1")
	d.close(time.Second)

	if !<-got {
		t.Fatalf("expected handler context with deadline")
	}
}

func TestWrapTemporaryIfNeeded(t *testing.T) {
	err := wrapTemporaryIfNeeded(fmt.Errorf("nats publish: %w", nats.ErrConnectionClosed))
	if !errors.Is(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}

	plain := errors.New("bad subject")
	if got := wrapTemporaryIfNeeded(plain); got != plain {
		t.Fatalf("non-retryable errors must pass through, got %v", got)
	}
}

func TestClassifyNATSErrorDoesNotRetryOversizedEvent(t *testing.T) {
	class := classifyNATSError(fmt.Errorf("publish: %w", nats.ErrMaxPayload))
	if class.Retryable || class.RecordFailure {
		t.Fatalf("oversized payload classified as %+v", class)
	}
	if !classifyNATSError(nats.ErrConnectionReconnecting).Retryable {
		t.Fatal("reconnecting connection should be retryable")
	}
}
