package ports

import (
	"context"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
)

// DocumentIngestor is the inbound contract for the upload→summary pipeline.
type DocumentIngestor interface {
	Ingest(ctx context.Context, req domain.UploadRequest) (*domain.IngestResult, error)
}

// Summarizer produces summaries for documents that skip the upload step.
type Summarizer interface {
	SummarizeByName(ctx context.Context, docName string) (string, error)
}

// ClauseDrafter drafts template clauses.
type ClauseDrafter interface {
	DraftClause(ctx context.Context, req domain.ClauseRequest) (string, error)
}

// QuestionService answers questions about an ingested document.
type QuestionService interface {
	Answer(ctx context.Context, question, contextID string) (*domain.GenerationResult, error)
}

// DocumentReader is the inbound read model for document records.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.DocumentRecord, error)
	ListRecent(ctx context.Context, ownerID string, limit int) ([]domain.DocumentRecord, error)
}

// ReanalysisScheduler enqueues re-analysis of a stored record.
type ReanalysisScheduler interface {
	Schedule(ctx context.Context, documentID string) error
}

// DocumentComparer diffs two revisions of a document.
type DocumentComparer interface {
	Compare(ctx context.Context, left, right domain.UploadRequest) (*domain.Comparison, error)
}

// TemplateService lists and fills legal templates.
type TemplateService interface {
	List(ctx context.Context) []domain.Template
	Render(ctx context.Context, id string, lang domain.Language, values map[string]string, assist map[string]string) (*domain.RenderedTemplate, error)
}
