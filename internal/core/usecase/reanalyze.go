package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
	"github.com/kirillkom/legal-doc-assistant/internal/core/ports"
)

// ReanalyzeUseCase regenerates the summary of a stored record by name and
// moves the record to analyzed or error.
type ReanalyzeUseCase struct {
	repo     ports.DocumentRepository
	queue    ports.MessageQueue
	invoker  *GenerationInvoker
	observer ports.PipelineObserver
}

func NewReanalyzeUseCase(
	repo ports.DocumentRepository,
	queue ports.MessageQueue,
	invoker *GenerationInvoker,
	observer ports.PipelineObserver,
) *ReanalyzeUseCase {
	if observer == nil {
		observer = NopObserver{}
	}
	return &ReanalyzeUseCase{
		repo:     repo,
		queue:    queue,
		invoker:  invoker,
		observer: observer,
	}
}

func (uc *ReanalyzeUseCase) Schedule(ctx context.Context, documentID string) error {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "schedule reanalysis", errors.New("document id is required"))
	}
	if _, err := uc.repo.GetByID(ctx, documentID); err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}
	if uc.queue == nil {
		return domain.WrapError(domain.ErrConfiguration, "schedule reanalysis", errors.New("message queue is not configured"))
	}
	if err := uc.queue.PublishReanalysisRequested(ctx, documentID); err != nil {
		return fmt.Errorf("publish reanalysis event: %w", err)
	}
	return nil
}

func (uc *ReanalyzeUseCase) ReanalyzeByID(ctx context.Context, documentID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}

	summary, err := uc.invoker.SummarizeByName(ctx, doc.Name)
	if err != nil {
		pipelineErr := Classify(err)
		uc.observer.ObserveOutcome("reanalyze", pipelineErr.Kind)
		// Canceled work is redelivered; do not brand the record as failed.
		if pipelineErr.Kind == domain.KindCanceled {
			return err
		}
		if markErr := uc.markStatus(ctx, doc.ID, domain.StatusError, pipelineErr.Message); markErr != nil {
			return fmt.Errorf("%w; mark error status: %v", err, markErr)
		}
		return err
	}

	if err := uc.markStatus(ctx, doc.ID, domain.StatusAnalyzed, ""); err != nil {
		return fmt.Errorf("set status=analyzed: %w", err)
	}
	uc.observer.ObserveOutcome("reanalyze", OutcomeSuccess)
	slog.Info("reanalysis_completed", "document_id", doc.ID, "summary_chars", len([]rune(summary)))
	return nil
}

func (uc *ReanalyzeUseCase) markStatus(ctx context.Context, documentID string, status domain.DocumentStatus, errMessage string) error {
	return uc.repo.UpdateStatus(context.WithoutCancel(ctx), documentID, status, errMessage)
}
