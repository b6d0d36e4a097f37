package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kirillkom/legal-doc-assistant/internal/infrastructure/resilience"
	"github.com/nats-io/nats.go"
	"github.com/panjf2000/ants/v2"
)

const (
	DefaultSubject = "documents.reanalyze"
	queueGroup     = "reanalysis-workers"
)

type Queue struct {
	conn        *nats.Conn
	subject     string
	executor    *resilience.Executor
	concurrency int
	handlerTTL  time.Duration
}

func New(url, subject string) (*Queue, error) {
	return NewWithOptions(url, subject, Options{})
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
	// Concurrency bounds the number of handlers running at once.
	Concurrency int
	// HandlerTimeout caps a single handler invocation. Zero means no cap.
	HandlerTimeout time.Duration
}

func NewWithOptions(url, subject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	if strings.TrimSpace(subject) == "" {
		subject = DefaultSubject
	}
	concurrency := options.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	conn, err := nats.Connect(
		url,
		nats.Name("legal-doc-assistant"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:        conn,
		subject:     subject,
		executor:    options.ResilienceExecutor,
		concurrency: concurrency,
		handlerTTL:  options.HandlerTimeout,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishReanalysisRequested(ctx context.Context, documentID string) error {
	call := func(_ context.Context) error {
		if err := q.conn.Publish(q.subject, []byte(documentID)); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	var err error
	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

// SubscribeReanalysisRequested blocks until ctx is done. Messages are handed
// to a bounded ants pool; shutdown drains the subscription and waits for
// in-flight handlers.
func (q *Queue) SubscribeReanalysisRequested(ctx context.Context, handler func(context.Context, string) error) error {
	d, err := newDispatcher(ctx, q.concurrency, q.handlerTTL, handler)
	if err != nil {
		return err
	}

	sub, err := q.conn.QueueSubscribe(q.subject, queueGroup, func(msg *nats.Msg) {
		d.dispatch(string(msg.Data))
	})
	if err != nil {
		d.close(0)
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		d.close(0)
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	drainErr := sub.Drain()
	d.close(30 * time.Second)
	if drainErr != nil {
		return fmt.Errorf("nats drain subscription: %w", drainErr)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

type dispatcher struct {
	ctx     context.Context
	pool    *ants.Pool
	timeout time.Duration
	handler func(context.Context, string) error
	wg      sync.WaitGroup
}

func newDispatcher(ctx context.Context, size int, timeout time.Duration, handler func(context.Context, string) error) (*dispatcher, error) {
	d := &dispatcher{ctx: ctx, timeout: timeout, handler: handler}
	pool, err := ants.NewPool(size,
		ants.WithNonblocking(false),
		ants.WithPanicHandler(func(p any) {
			slog.Error("reanalysis_handler_panic", "panic", p)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	d.pool = pool
	return d, nil
}

func (d *dispatcher) dispatch(documentID string) {
	if errors.Is(d.ctx.Err(), context.Canceled) {
		return
	}
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		slog.Warn("reanalysis_empty_message")
		return
	}

	d.wg.Add(1)
	err := d.pool.Submit(func() {
		defer d.wg.Done()
		d.run(documentID)
	})
	if err != nil {
		d.wg.Done()
		slog.Error("reanalysis_submit_failed", "document_id", documentID, "error", err)
	}
}

func (d *dispatcher) run(documentID string) {
	var (
		handlerCtx context.Context
		cancel     context.CancelFunc
	)
	if d.timeout > 0 {
		handlerCtx, cancel = context.WithTimeout(d.ctx, d.timeout)
	} else {
		handlerCtx, cancel = context.WithCancel(d.ctx)
	}
	defer cancel()
	if err := d.handler(handlerCtx, documentID); err != nil {
		slog.Error("reanalysis_handler_failed", "document_id", documentID, "error", err)
	}
}

func (d *dispatcher) close(wait time.Duration) {
	if wait > 0 {
		done := make(chan struct{})
		go func() {
			d.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(wait):
			slog.Warn("reanalysis_shutdown_timeout", "wait", wait.String())
		}
	}
	d.pool.Release()
}
