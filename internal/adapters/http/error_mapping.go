package httpadapter

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
	"github.com/kirillkom/legal-doc-assistant/internal/core/usecase"
)

// statusClientClosedRequest is the nginx convention for a request the client abandoned.
const statusClientClosedRequest = 499

type errorResponse struct {
	Error             string           `json:"error"`
	Kind              domain.ErrorKind `json:"kind"`
	RetryAfterSeconds int              `json:"retry_after_seconds,omitempty"`
}

func mapErrorToHTTPStatus(pe *domain.PipelineError) int {
	switch pe.Kind {
	case domain.KindValidation:
		switch {
		case errors.Is(pe, domain.ErrFileTooLarge):
			return http.StatusRequestEntityTooLarge
		case errors.Is(pe, domain.ErrUnsupportedType):
			return http.StatusUnsupportedMediaType
		case errors.Is(pe, domain.ErrInvalidTransition):
			return http.StatusConflict
		}
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindRateLimit:
		return http.StatusTooManyRequests
	case domain.KindProcessingTimeout:
		return http.StatusGatewayTimeout
	case domain.KindProcessingFailed:
		return http.StatusUnprocessableEntity
	case domain.KindEmptyGeneration:
		return http.StatusBadGateway
	case domain.KindUpload, domain.KindTransientNetwork:
		return http.StatusServiceUnavailable
	case domain.KindCanceled:
		return statusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	pe := usecase.Classify(err)
	status := mapErrorToHTTPStatus(pe)

	attrs := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"kind", string(pe.Kind),
		"error", err.Error(),
	}
	if status >= http.StatusInternalServerError {
		loggerFrom(r.Context()).Error("request_failed", attrs...)
	} else {
		loggerFrom(r.Context()).Warn("request_failed", attrs...)
	}

	resp := errorResponse{Error: pe.Message, Kind: pe.Kind}
	if secs := pe.RetryAfterSeconds(); secs > 0 {
		resp.RetryAfterSeconds = secs
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}
	writeJSON(w, status, resp)
}
