package gemini

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
	"github.com/kirillkom/legal-doc-assistant/internal/infrastructure/resilience"
)

const DefaultModel = "gemini-flash-latest"

type fileService interface {
	UploadFromPath(ctx context.Context, path string, config *genai.UploadFileConfig) (*genai.File, error)
	Get(ctx context.Context, name string, config *genai.GetFileConfig) (*genai.File, error)
	Delete(ctx context.Context, name string, config *genai.DeleteFileConfig) (*genai.DeleteFileResponse, error)
}

type modelService interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Config struct {
	APIKey         string
	Model          string
	Temperature    float32
	RequestTimeout time.Duration

	// CallPolicy guards upload and generate; it should not retry.
	CallPolicy resilience.Config
	// StatePolicy guards the idempotent state and delete calls.
	StatePolicy resilience.Config
}

// Client talks to the Gemini Files and Models APIs.
type Client struct {
	files          fileService
	models         modelService
	model          string
	temperature    float32
	requestTimeout time.Duration
	callExec       *resilience.Executor
	stateExec      *resilience.Executor
	now            func() time.Time
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, domain.WrapError(domain.ErrConfiguration, "gemini client", errors.New("GOOGLE_API_KEY is not set"))
	}
	sdk, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrConfiguration, "gemini client", err)
	}
	return newClient(sdk.Files, sdk.Models, cfg), nil
}

func newClient(files fileService, models modelService, cfg Config) *Client {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	return &Client{
		files:          files,
		models:         models,
		model:          model,
		temperature:    cfg.Temperature,
		requestTimeout: cfg.RequestTimeout,
		callExec:       resilience.NewExecutor(cfg.CallPolicy),
		stateExec:      resilience.NewExecutor(cfg.StatePolicy),
		now:            time.Now,
	}
}

// FileProcessor exposes the Files API through ports.FileProcessor.
type FileProcessor struct {
	client *Client
}

func NewFileProcessor(client *Client) *FileProcessor {
	return &FileProcessor{client: client}
}

// Generator exposes generateContent through ports.ContentGenerator.
type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.requestTimeout)
}
