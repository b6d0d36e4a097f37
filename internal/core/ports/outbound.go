package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
)

// DocumentRepository persists and reads document records.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.DocumentRecord) error
	GetByID(ctx context.Context, id string) (*domain.DocumentRecord, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	ListRecent(ctx context.Context, ownerID string, limit int) ([]domain.DocumentRecord, error)
}

// TransientStore holds scratch copies of uploads. Release never fails.
type TransientStore interface {
	Acquire(ctx context.Context, name string, body io.Reader) (domain.TransientFile, error)
	Release(file domain.TransientFile)
}

// FileProcessor is the AI service's file API.
type FileProcessor interface {
	Upload(ctx context.Context, file domain.TransientFile, mimeType, displayName string) (domain.RemoteFileHandle, error)
	State(ctx context.Context, name string) (domain.RemoteFileHandle, error)
	// Delete must return nil for files that no longer exist.
	Delete(ctx context.Context, name string) error
}

// ContentGenerator invokes the model with an ordered list of parts.
type ContentGenerator interface {
	Generate(ctx context.Context, parts []domain.Part) (string, error)
}

// QuestionAnswerer is the external question-answering endpoint.
type QuestionAnswerer interface {
	Ask(ctx context.Context, question, contextID string) (domain.QAResponse, error)
}

// MessageQueue publishes/consumes re-analysis events.
type MessageQueue interface {
	PublishReanalysisRequested(ctx context.Context, documentID string) error
	SubscribeReanalysisRequested(ctx context.Context, handler func(context.Context, string) error) error
}

// CooldownStore shares an upstream rate-limit cooldown across invocations.
type CooldownStore interface {
	Start(ctx context.Context, d time.Duration) error
	Remaining(ctx context.Context) (time.Duration, error)
}

// TextExtractor turns an uploaded file into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, filename, mimeType string, data []byte) (string, error)
}

// TemplateCatalog is the source of legal templates.
type TemplateCatalog interface {
	List() []domain.Template
	Get(id string) (domain.Template, bool)
}

// PipelineObserver receives stage timings and outcomes of pipeline runs.
type PipelineObserver interface {
	ObserveStage(stage domain.IngestStage, duration time.Duration, err error)
	ObservePoll(attempts int, final domain.FileState)
	ObserveOutcome(operation string, kind domain.ErrorKind)
	ObserveCleanup(resource string, err error)
}
