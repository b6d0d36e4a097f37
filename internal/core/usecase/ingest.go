package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
	"github.com/kirillkom/legal-doc-assistant/internal/core/ports"
)

const (
	DefaultRemoteDeleteTimeout = 15 * time.Second

	// OutcomeSuccess is reported to the observer for runs without error.
	OutcomeSuccess domain.ErrorKind = ""
)

type IngestConfig struct {
	RemoteDeleteTimeout time.Duration
}

// IngestUseCase runs one upload through validation, the AI file service and
// generation, and persists an analyzed record on success. Scratch and remote
// copies are released on every exit path.
type IngestUseCase struct {
	validator *FileValidator
	store     ports.TransientStore
	files     ports.FileProcessor
	poller    *Poller
	invoker   *GenerationInvoker
	repo      ports.DocumentRepository
	guard     *RateLimitGuard
	observer  ports.PipelineObserver
	cfg       IngestConfig

	now   func() time.Time
	newID func() string
}

func NewIngestUseCase(
	validator *FileValidator,
	store ports.TransientStore,
	files ports.FileProcessor,
	poller *Poller,
	invoker *GenerationInvoker,
	repo ports.DocumentRepository,
	guard *RateLimitGuard,
	observer ports.PipelineObserver,
	cfg IngestConfig,
) *IngestUseCase {
	if observer == nil {
		observer = NopObserver{}
	}
	if cfg.RemoteDeleteTimeout <= 0 {
		cfg.RemoteDeleteTimeout = DefaultRemoteDeleteTimeout
	}
	return &IngestUseCase{
		validator: validator,
		store:     store,
		files:     files,
		poller:    poller,
		invoker:   invoker,
		repo:      repo,
		guard:     guard,
		observer:  observer,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

func (uc *IngestUseCase) Ingest(ctx context.Context, req domain.UploadRequest) (*domain.IngestResult, error) {
	result, err := uc.ingest(ctx, req)
	if err != nil {
		pipelineErr := Classify(err)
		uc.observer.ObserveOutcome("ingest", pipelineErr.Kind)
		slog.Error("ingest_failed",
			"filename", req.Meta.Filename,
			"owner_id", req.OwnerID,
			"kind", string(pipelineErr.Kind),
			"error", err,
		)
		return nil, pipelineErr
	}
	uc.observer.ObserveOutcome("ingest", OutcomeSuccess)
	slog.Info("ingest_completed", "document_id", result.Document.ID, "filename", result.Document.Name)
	return result, nil
}

func (uc *IngestUseCase) ingest(ctx context.Context, req domain.UploadRequest) (*domain.IngestResult, error) {
	scope := &ingestScope{
		store:         uc.store,
		files:         uc.files,
		observer:      uc.observer,
		deleteTimeout: uc.cfg.RemoteDeleteTimeout,
	}
	defer scope.close(ctx)

	meta := req.Meta
	meta.MimeType = NormalizeMimeType(meta.MimeType)

	err := uc.stage(domain.StageValidating, func() error {
		if req.OwnerID == "" {
			return domain.WrapError(domain.ErrInvalidInput, "ingest", errors.New("owner id is required"))
		}
		warning, err := uc.validator.Validate(meta)
		if err != nil {
			return err
		}
		if warning != "" {
			slog.Warn("validation_warning", "filename", meta.Filename, "mime_type", meta.MimeType, "warning", warning)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var local domain.TransientFile
	err = uc.stage(domain.StageAcquiring, func() error {
		file, err := uc.store.Acquire(ctx, meta.Filename, req.Body)
		if err != nil {
			return fmt.Errorf("acquire scratch file: %w", err)
		}
		local = file
		scope.local = &file
		return uc.validator.ValidateContent(meta, file)
	})
	if err != nil {
		return nil, err
	}

	var remote domain.RemoteFileHandle
	err = uc.stage(domain.StageUploading, func() error {
		if err := uc.guard.Check(ctx); err != nil {
			return err
		}
		handle, err := uc.files.Upload(ctx, local, meta.MimeType, meta.Filename)
		if handle.Name != "" {
			scope.remote = handle.Name
		}
		if err != nil {
			uc.guard.Record(ctx, err)
			return fmt.Errorf("upload %s: %w", meta.Filename, err)
		}
		remote = handle
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = uc.stage(domain.StagePolling, func() error {
		handle, err := uc.poller.AwaitActive(ctx, remote)
		remote = handle
		return err
	})
	if err != nil {
		return nil, err
	}

	var summary string
	err = uc.stage(domain.StageGenerating, func() error {
		text, err := uc.invoker.Summarize(ctx, domain.GenerationContext{File: &remote, DocumentName: meta.Filename})
		summary = text
		return err
	})
	if err != nil {
		return nil, err
	}

	var record *domain.DocumentRecord
	err = uc.stage(domain.StagePersisting, func() error {
		now := uc.now()
		record = &domain.DocumentRecord{
			ID:        uc.newID(),
			OwnerID:   req.OwnerID,
			Name:      meta.Filename,
			MimeType:  meta.MimeType,
			Status:    domain.StatusAnalyzed,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := uc.repo.Create(ctx, record); err != nil {
			return fmt.Errorf("create document record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &domain.IngestResult{Document: record, Summary: summary}, nil
}

func (uc *IngestUseCase) stage(stage domain.IngestStage, fn func() error) error {
	started := time.Now()
	err := fn()
	elapsed := time.Since(started)
	uc.observer.ObserveStage(stage, elapsed, err)
	if err != nil {
		slog.Debug("ingest_stage", "stage", string(stage), "duration_ms", elapsed.Milliseconds(), "error", err)
		return err
	}
	slog.Debug("ingest_stage", "stage", string(stage), "duration_ms", elapsed.Milliseconds())
	return nil
}

// ingestScope owns the resources one invocation acquired. close releases each
// of them at most once and never fails.
type ingestScope struct {
	store         ports.TransientStore
	files         ports.FileProcessor
	observer      ports.PipelineObserver
	deleteTimeout time.Duration

	local  *domain.TransientFile
	remote string
	closed bool
}

func (s *ingestScope) close(ctx context.Context) {
	if s.closed {
		return
	}
	s.closed = true

	if s.local != nil {
		s.store.Release(*s.local)
		s.observer.ObserveCleanup("local_file", nil)
	}
	if s.remote == "" {
		return
	}

	deleteCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.deleteTimeout)
	defer cancel()
	err := s.files.Delete(deleteCtx, s.remote)
	if err != nil {
		slog.Warn("cleanup_warning", "resource", "remote_file", "name", s.remote, "error", err)
	}
	s.observer.ObserveCleanup("remote_file", err)
}
