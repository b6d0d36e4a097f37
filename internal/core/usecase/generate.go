package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
	"github.com/kirillkom/legal-doc-assistant/internal/core/ports"
)

const unknownPage = "N/A"

// GenerationInvoker builds task-specific prompts and normalizes model output.
type GenerationInvoker struct {
	generator ports.ContentGenerator
	answerer  ports.QuestionAnswerer
	guard     *RateLimitGuard
}

func NewGenerationInvoker(
	generator ports.ContentGenerator,
	answerer ports.QuestionAnswerer,
	guard *RateLimitGuard,
) *GenerationInvoker {
	return &GenerationInvoker{
		generator: generator,
		answerer:  answerer,
		guard:     guard,
	}
}

// Summarize produces a single Hindi paragraph for either a processed remote
// file or a document referenced by name.
func (g *GenerationInvoker) Summarize(ctx context.Context, genCtx domain.GenerationContext) (string, error) {
	var parts []domain.Part
	switch {
	case genCtx.File != nil:
		if genCtx.File.State != domain.FileStateActive {
			return "", domain.WrapError(
				domain.ErrInvalidInput,
				"summarize",
				fmt.Errorf("remote file %s is %s, not ACTIVE", genCtx.File.Name, genCtx.File.State),
			)
		}
		parts = []domain.Part{
			{FileURI: genCtx.File.URI, MimeType: genCtx.File.MimeType},
			{Text: summarizeFilePrompt},
		}
	case strings.TrimSpace(genCtx.DocumentName) != "":
		parts = []domain.Part{{Text: summarizeByNamePrompt(strings.TrimSpace(genCtx.DocumentName))}}
	default:
		return "", domain.WrapError(domain.ErrInvalidInput, "summarize", errors.New("no document name provided"))
	}
	return g.generate(ctx, "summarize", parts)
}

func (g *GenerationInvoker) SummarizeByName(ctx context.Context, docName string) (string, error) {
	return g.Summarize(ctx, domain.GenerationContext{DocumentName: docName})
}

func (g *GenerationInvoker) DraftClause(ctx context.Context, req domain.ClauseRequest) (string, error) {
	req.UserInput = strings.TrimSpace(req.UserInput)
	req.TemplateContext = strings.TrimSpace(req.TemplateContext)
	if req.UserInput == "" || req.TemplateContext == "" || req.TargetLanguage == "" {
		return "", domain.WrapError(
			domain.ErrInvalidInput,
			"draft clause",
			errors.New("missing required fields: userInput, templateContext, targetLanguage"),
		)
	}
	lang, err := domain.ParseLanguage(string(req.TargetLanguage))
	if err != nil {
		return "", err
	}
	req.TargetLanguage = lang

	return g.generate(ctx, "draft clause", []domain.Part{{Text: draftClausePrompt(req)}})
}

func (g *GenerationInvoker) Answer(ctx context.Context, question, contextID string) (*domain.GenerationResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer question", errors.New("question is required"))
	}
	if g.answerer == nil {
		return nil, domain.WrapError(domain.ErrConfiguration, "answer question", errors.New("question answering endpoint is not configured"))
	}

	resp, err := g.answerer.Ask(ctx, question, contextID)
	if err != nil {
		return nil, fmt.Errorf("answer question: %w", err)
	}

	answer := strings.TrimSpace(resp.Answer)
	if answer == "" {
		answer = QAFallbackAnswer
	}
	sources := make([]domain.Citation, 0, len(resp.Sources))
	for _, src := range resp.Sources {
		page := strings.TrimSpace(src.Page)
		if page == "" {
			page = unknownPage
		}
		sources = append(sources, domain.Citation{Content: src.Content, Page: page})
	}

	return &domain.GenerationResult{
		Task:    domain.TaskAnswerQuestion,
		Text:    answer,
		Sources: sources,
	}, nil
}

func (g *GenerationInvoker) generate(ctx context.Context, op string, parts []domain.Part) (string, error) {
	if g.generator == nil {
		return "", domain.WrapError(domain.ErrConfiguration, op, errors.New("content generator is not configured"))
	}
	if err := g.guard.Check(ctx); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	text, err := g.generator.Generate(ctx, parts)
	if err != nil {
		g.guard.Record(ctx, err)
		return "", fmt.Errorf("%s: %w", op, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.WrapError(domain.ErrEmptyGeneration, op, errors.New("model returned no text"))
	}
	return text, nil
}
