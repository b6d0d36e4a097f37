package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/kirillkom/legal-doc-assistant/internal/config"
	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
	"github.com/kirillkom/legal-doc-assistant/internal/core/ports"
)

const (
	ownerHeader      = "X-User-Id"
	defaultListLimit = 20
	// multipartOverhead covers boundaries and headers on top of the file limit.
	multipartOverhead int64 = 1 << 20
)

// Services groups the inbound ports served over HTTP. Nil services answer 503.
type Services struct {
	Ingestor   ports.DocumentIngestor
	Documents  ports.DocumentReader
	Reanalysis ports.ReanalysisScheduler
	Summarizer ports.Summarizer
	Drafter    ports.ClauseDrafter
	Questions  ports.QuestionService
	Comparer   ports.DocumentComparer
	Templates  ports.TemplateService
}

type Router struct {
	cfg      config.Config
	svc      Services
	onReject func(reason string)
	validate func(http.Handler) http.Handler
}

type Option func(*Router)

// WithRejectionRecorder is called with "rate_limit" or "backpressure" for
// requests turned away by traffic control.
func WithRejectionRecorder(fn func(reason string)) Option {
	return func(rt *Router) {
		rt.onReject = fn
	}
}

func NewRouter(cfg config.Config, svc Services, opts ...Option) (*Router, error) {
	rt := &Router{cfg: cfg, svc: svc}
	for _, opt := range opts {
		opt(rt)
	}
	if cfg.OpenAPIValidation {
		validate, err := openAPIValidationMiddleware()
		if err != nil {
			return nil, fmt.Errorf("load openapi document: %w", err)
		}
		rt.validate = validate
	}
	return rt, nil
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /v1/documents", rt.ingestDocument)
	mux.HandleFunc("GET /v1/documents", rt.listDocuments)
	mux.HandleFunc("GET /v1/documents/{id}", rt.getDocument)
	mux.HandleFunc("POST /v1/documents/{id}/reanalyze", rt.reanalyzeDocument)
	mux.HandleFunc("POST /v1/summaries", rt.summarizeByName)
	mux.HandleFunc("POST /v1/clauses", rt.draftClause)
	mux.HandleFunc("POST /v1/questions", rt.answerQuestion)
	mux.HandleFunc("POST /v1/compare", rt.compareDocuments)
	mux.HandleFunc("GET /v1/templates", rt.listTemplates)
	mux.HandleFunc("POST /v1/templates/{id}/render", rt.renderTemplate)

	var handler http.Handler = mux
	if rt.validate != nil {
		handler = rt.validate(handler)
	}
	if rt.cfg.APIRequestTimeout > 0 {
		handler = requestTimeoutMiddleware(handler, rt.cfg.APIRequestTimeout)
	}
	handler = backpressureMiddleware(handler, rt.cfg.APIBackpressureMaxInFlight, rt.cfg.APIBackpressureWait, rt.reject)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rt.reject)
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) reject(reason string) {
	if rt.onReject != nil {
		rt.onReject(reason)
	}
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func ownerFrom(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(ownerHeader))
}

func parseLimit(raw string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return defaultListLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "parse limit", fmt.Errorf("limit must be a positive integer, got %q", raw))
	}
	return n, nil
}

// decodeJSON rejects unknown fields and trailing data.
func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "decode request", fmt.Errorf("invalid json: %v", err))
	}
	if dec.More() {
		return domain.WrapError(domain.ErrInvalidInput, "decode request", errors.New("invalid json: trailing data"))
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("http_write_failed", "error", err)
	}
}

func unavailable(operation string) error {
	return domain.WrapError(domain.ErrConfiguration, operation, errors.New("service is not wired"))
}
