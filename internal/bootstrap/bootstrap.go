package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/legal-doc-assistant/internal/config"
	"github.com/kirillkom/legal-doc-assistant/internal/core/ports"
	"github.com/kirillkom/legal-doc-assistant/internal/core/usecase"
	"github.com/kirillkom/legal-doc-assistant/internal/infrastructure/cooldown"
	"github.com/kirillkom/legal-doc-assistant/internal/infrastructure/extractor"
	"github.com/kirillkom/legal-doc-assistant/internal/infrastructure/llm/gemini"
	"github.com/kirillkom/legal-doc-assistant/internal/infrastructure/llm/qa"
	"github.com/kirillkom/legal-doc-assistant/internal/infrastructure/queue/nats"
	"github.com/kirillkom/legal-doc-assistant/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/legal-doc-assistant/internal/infrastructure/resilience"
	"github.com/kirillkom/legal-doc-assistant/internal/infrastructure/storage/tempfs"
	"github.com/kirillkom/legal-doc-assistant/internal/infrastructure/templates"
)

type App struct {
	Config config.Config

	Queue *nats.Queue
	Repo  ports.DocumentRepository

	Ingestor   *usecase.IngestUseCase
	Invoker    *usecase.GenerationInvoker
	Reanalyzer *usecase.ReanalyzeUseCase
	Comparer   *usecase.CompareUseCase
	Templates  *usecase.TemplateUseCase

	closeFn func()
}

// New wires every adapter. observer may be nil.
func New(ctx context.Context, cfg config.Config, observer ports.PipelineObserver) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if observer == nil {
		observer = usecase.NopObserver{}
	}

	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*App, error) {
		closeAll()
		return nil, err
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	closers = append(closers, func() { _ = db.Close() })
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return fail(fmt.Errorf("ensure schema: %w", err))
	}

	store, err := tempfs.New(cfg.ScratchDir, cfg.MaxFileSize)
	if err != nil {
		return fail(fmt.Errorf("init scratch storage: %w", err))
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
		Concurrency:        cfg.NATSConcurrency,
		HandlerTimeout:     cfg.ReanalysisTimeout,
	})
	if err != nil {
		return fail(fmt.Errorf("init message queue: %w", err))
	}
	closers = append(closers, queue.Close)

	cooldownStore, closeCooldown, err := newCooldownStore(ctx, cfg)
	if err != nil {
		return fail(fmt.Errorf("init cooldown store: %w", err))
	}
	closers = append(closers, closeCooldown)

	catalog, err := templates.Load(cfg.TemplatesPath)
	if err != nil {
		return fail(fmt.Errorf("load templates: %w", err))
	}

	callPolicy := resilience.DefaultConfig()
	callPolicy.RetryMaxAttempts = 1
	callPolicy.RatePerSecond = cfg.AIRatePerSecond
	callPolicy.RateBurst = cfg.AIRateBurst
	geminiClient, err := gemini.New(ctx, gemini.Config{
		APIKey:         cfg.GoogleAPIKey,
		Model:          cfg.GeminiModel,
		Temperature:    float32(cfg.GeminiTemperature),
		RequestTimeout: cfg.GeminiRequestTimeout,
		CallPolicy:     callPolicy,
		StatePolicy:    resilience.DefaultConfig(),
	})
	if err != nil {
		return fail(fmt.Errorf("init gemini client: %w", err))
	}
	files := gemini.NewFileProcessor(geminiClient)
	generator := gemini.NewGenerator(geminiClient)
	answerer := qa.New(cfg.QAServiceURL, cfg.QATimeout, resilience.DefaultConfig())

	policy := usecase.ValidationPolicy{
		MaxFileSize: cfg.MaxFileSize,
		StrictMIME:  cfg.StrictMIME,
		AllowImages: cfg.AllowImages,
	}
	validator := usecase.NewFileValidator(policy)
	comparePolicy := policy
	comparePolicy.StrictMIME = true
	comparePolicy.AllowImages = false
	comparePolicy.ExtraMimeTypes = []string{usecase.MimeXLSX}

	guard := usecase.NewRateLimitGuard(cooldownStore)
	invoker := usecase.NewGenerationInvoker(generator, answerer, guard)
	poller := usecase.NewPoller(files, usecase.SystemClock(), usecase.PollerConfig{
		Interval: cfg.PollInterval,
		MaxWait:  cfg.PollMaxWait,
	}, observer)

	ingestor := usecase.NewIngestUseCase(validator, store, files, poller, invoker, repo, guard, observer, usecase.IngestConfig{
		RemoteDeleteTimeout: cfg.RemoteDeleteTimeout,
	})

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		Ingestor:   ingestor,
		Invoker:    invoker,
		Reanalyzer: usecase.NewReanalyzeUseCase(repo, queue, invoker, observer),
		Comparer:   usecase.NewCompareUseCase(usecase.NewFileValidator(comparePolicy), extractor.New()),
		Templates:  usecase.NewTemplateUseCase(catalog, invoker),

		closeFn: closeAll,
	}, nil
}

// newCooldownStore shares the cooldown through redis when REDIS_ADDR is set.
func newCooldownStore(ctx context.Context, cfg config.Config) (ports.CooldownStore, func(), error) {
	if cfg.RedisAddr == "" {
		slog.Info("cooldown_store", "backend", "memory")
		return cooldown.NewMemory(), func() {}, nil
	}
	client, err := cooldown.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("cooldown_store", "backend", "redis", "key", cfg.CooldownKey)
	return cooldown.NewRedis(client, cfg.CooldownKey), func() { _ = client.Close() }, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
