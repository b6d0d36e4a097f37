package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
	"github.com/kirillkom/legal-doc-assistant/internal/infrastructure/resilience"
)

type filesFake struct {
	uploaded    *genai.File
	uploadErr   error
	uploadCfg   *genai.UploadFileConfig
	uploadCalls int

	gets    []*genai.File
	getErrs []error
	getCall int

	deleteErr   error
	deleteCalls int
}

func (f *filesFake) UploadFromPath(_ context.Context, _ string, cfg *genai.UploadFileConfig) (*genai.File, error) {
	f.uploadCalls++
	f.uploadCfg = cfg
	return f.uploaded, f.uploadErr
}

func (f *filesFake) Get(_ context.Context, _ string, _ *genai.GetFileConfig) (*genai.File, error) {
	idx := f.getCall
	f.getCall++
	var err error
	if idx < len(f.getErrs) {
		err = f.getErrs[idx]
	}
	if err != nil {
		return nil, err
	}
	if idx >= len(f.gets) {
		idx = len(f.gets) - 1
	}
	return f.gets[idx], nil
}

func (f *filesFake) Delete(context.Context, string, *genai.DeleteFileConfig) (*genai.DeleteFileResponse, error) {
	f.deleteCalls++
	return &genai.DeleteFileResponse{}, f.deleteErr
}

type modelsFake struct {
	resp     *genai.GenerateContentResponse
	err      error
	model    string
	contents []*genai.Content
	calls    int
}

func (m *modelsFake) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.calls++
	m.model = model
	m.contents = contents
	return m.resp, m.err
}

func testConfig() Config {
	return Config{
		CallPolicy: resilience.Config{RetryMaxAttempts: 1, BreakerEnabled: false},
		StatePolicy: resilience.Config{
			RetryMaxAttempts:    3,
			RetryInitialBackoff: time.Millisecond,
			RetryMaxBackoff:     time.Millisecond,
			BreakerEnabled:      false,
		},
	}
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), Config{APIKey: " "})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestUploadMapsHandle(t *testing.T) {
	files := &filesFake{uploaded: &genai.File{
		Name: "files/abc123", URI: "https://generativelanguage.example/files/abc123",
		MIMEType: "application/pdf", State: genai.FileStateProcessing,
	}}
	processor := NewFileProcessor(newClient(files, &modelsFake{}, testConfig()))

	handle, err := processor.Upload(context.Background(), domain.TransientFile{Path: "/tmp/x.pdf"}, "application/pdf", "lease.pdf")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if handle.Name != "files/abc123" || handle.State != domain.FileStateProcessing {
		t.Fatalf("unexpected handle %+v", handle)
	}
	if files.uploadCfg.DisplayName != "lease.pdf" || files.uploadCfg.MIMEType != "application/pdf" {
		t.Fatalf("unexpected upload config %+v", files.uploadCfg)
	}
}

func TestUploadRateLimitUsesRetryInfo(t *testing.T) {
	files := &filesFake{uploadErr: genai.APIError{
		Code:   429,
		Status: "RESOURCE_EXHAUSTED",
		Details: []map[string]any{
			{"@type": "type.googleapis.com/google.rpc.RetryInfo", "retryDelay": "37s"},
		},
	}}
	processor := NewFileProcessor(newClient(files, &modelsFake{}, testConfig()))

	_, err := processor.Upload(context.Background(), domain.TransientFile{Path: "/tmp/x.pdf"}, "application/pdf", "x.pdf")
	var rateErr *domain.RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if rateErr.RetryAfter != 37*time.Second {
		t.Fatalf("expected 37s, got %s", rateErr.RetryAfter)
	}
	if files.uploadCalls != 1 {
		t.Fatalf("upload must not be retried, calls=%d", files.uploadCalls)
	}
}

func TestUploadServerErrorIsUploadKind(t *testing.T) {
	files := &filesFake{uploadErr: genai.APIError{Code: 503, Status: "UNAVAILABLE"}}
	processor := NewFileProcessor(newClient(files, &modelsFake{}, testConfig()))

	_, err := processor.Upload(context.Background(), domain.TransientFile{Path: "/tmp/x.pdf"}, "application/pdf", "x.pdf")
	if !errors.Is(err, domain.ErrUpload) {
		t.Fatalf("expected ErrUpload, got %v", err)
	}
	if files.uploadCalls != 1 {
		t.Fatalf("upload must not be retried, calls=%d", files.uploadCalls)
	}
}

func TestStateRetriesTransientAndMapsStates(t *testing.T) {
	files := &filesFake{
		getErrs: []error{genai.APIError{Code: 500, Status: "INTERNAL"}},
		gets: []*genai.File{
			nil,
			{Name: "files/abc123", State: genai.FileStateActive},
		},
	}
	processor := NewFileProcessor(newClient(files, &modelsFake{}, testConfig()))

	handle, err := processor.State(context.Background(), "files/abc123")
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}
	if handle.State != domain.FileStateActive {
		t.Fatalf("expected ACTIVE, got %s", handle.State)
	}
	if files.getCall != 2 {
		t.Fatalf("expected one retry, got %d calls", files.getCall)
	}
}

func TestMapStateUnspecifiedIsPending(t *testing.T) {
	if got := mapState(genai.FileStateUnspecified); got != domain.FileStatePending {
		t.Fatalf("expected PENDING, got %s", got)
	}
	if got := mapState(genai.FileStateFailed); got != domain.FileStateFailed {
		t.Fatalf("expected FAILED, got %s", got)
	}
}

func TestDeleteIgnoresNotFound(t *testing.T) {
	files := &filesFake{deleteErr: genai.APIError{Code: 404, Status: "NOT_FOUND"}}
	processor := NewFileProcessor(newClient(files, &modelsFake{}, testConfig()))

	if err := processor.Delete(context.Background(), "files/gone"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if files.deleteCalls != 1 {
		t.Fatalf("expected one delete call, got %d", files.deleteCalls)
	}
}

func TestGenerateSendsFileAndPrompt(t *testing.T) {
	models := &modelsFake{resp: textResponse("सारांश")}
	gen := NewGenerator(newClient(&filesFake{}, models, testConfig()))

	text, err := gen.Generate(context.Background(), []domain.Part{
		{FileURI: "https://files/abc", MimeType: "application/pdf"},
		{Text: "summarize"},
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "सारांश" {
		t.Fatalf("unexpected text %q", text)
	}
	if models.model != DefaultModel {
		t.Fatalf("expected default model, got %s", models.model)
	}
	parts := models.contents[0].Parts
	if len(parts) != 2 || parts[0].FileData == nil || parts[0].FileData.FileURI != "https://files/abc" || parts[1].Text != "summarize" {
		t.Fatalf("unexpected parts %+v", parts)
	}
}

func TestGenerateInvalidKeyIsConfiguration(t *testing.T) {
	models := &modelsFake{err: genai.APIError{Code: 400, Message: "API key not valid. Please pass a valid API key.", Status: "INVALID_ARGUMENT"}}
	gen := NewGenerator(newClient(&filesFake{}, models, testConfig()))

	_, err := gen.Generate(context.Background(), []domain.Part{{Text: "x"}})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestGenerateRejectsEmptyParts(t *testing.T) {
	models := &modelsFake{resp: textResponse("x")}
	gen := NewGenerator(newClient(&filesFake{}, models, testConfig()))

	if _, err := gen.Generate(context.Background(), nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if models.calls != 0 {
		t.Fatalf("model must not be called")
	}
}

func TestRetryDelayDefaultsWithoutHint(t *testing.T) {
	if got := retryDelay(genai.APIError{Code: 429}); got != domain.DefaultRetryAfter {
		t.Fatalf("expected default, got %s", got)
	}
}
