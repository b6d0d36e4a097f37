package qa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
	"github.com/kirillkom/legal-doc-assistant/internal/infrastructure/resilience"
)

// Client calls the external question-answering endpoint (POST /ask/).
type Client struct {
	baseURL    string
	httpClient *http.Client
	exec       *resilience.Executor
}

func New(baseURL string, timeout time.Duration, policy resilience.Config) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		exec:       resilience.NewExecutor(policy),
	}
}

type askRequest struct {
	Question  string `json:"question"`
	ContextID string `json:"context_id,omitempty"`
}

type askResponse struct {
	Answer  *string  `json:"answer"`
	Sources []source `json:"sources"`
}

type source struct {
	Content *string   `json:"content"`
	Page    pageValue `json:"page"`
}

// pageValue accepts a page number given as a JSON number or string.
type pageValue string

func (p *pageValue) UnmarshalJSON(raw []byte) error {
	text := strings.TrimSpace(string(raw))
	if text == "null" || text == "" {
		*p = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		*p = pageValue(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return fmt.Errorf("page: %w", err)
	}
	*p = pageValue(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}

func (c *Client) Ask(ctx context.Context, question, contextID string) (domain.QAResponse, error) {
	var resp askResponse
	err := c.exec.Execute(ctx, "qa.ask", func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/ask/", askRequest{Question: question, ContextID: contextID}, &resp, "ask")
	}, classifyQAError)
	if err != nil {
		return domain.QAResponse{}, wrapTemporaryIfNeeded("qa ask", err)
	}

	out := domain.QAResponse{Sources: make([]domain.Citation, 0, len(resp.Sources))}
	if resp.Answer != nil {
		out.Answer = *resp.Answer
	}
	for _, s := range resp.Sources {
		citation := domain.Citation{Page: string(s.Page)}
		if s.Content != nil {
			citation.Content = *s.Content
		}
		out.Sources = append(out.Sources, citation)
	}
	return out, nil
}
