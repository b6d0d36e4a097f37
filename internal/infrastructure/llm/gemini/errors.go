package gemini

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
	"github.com/kirillkom/legal-doc-assistant/internal/infrastructure/resilience"
)

const retryInfoType = "type.googleapis.com/google.rpc.RetryInfo"

// normalizeError maps SDK failures onto domain kinds. Rate limits become
// *domain.RateLimitError carrying the server's retry hint.
func normalizeError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	apiErr, ok := asAPIError(err)
	if !ok {
		var netErr net.Error
		if errors.As(err, &netErr) {
			return domain.WrapError(domain.ErrTemporary, operation, err)
		}
		if strings.Contains(err.Error(), "429") {
			return &domain.RateLimitError{RetryAfter: domain.DefaultRetryAfter, Err: err}
		}
		return err
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED":
		return &domain.RateLimitError{RetryAfter: retryDelay(apiErr), Err: err}
	case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden,
		strings.Contains(apiErr.Message, "API key not valid"):
		return domain.WrapError(domain.ErrConfiguration, operation, err)
	case apiErr.Code == http.StatusRequestTimeout || apiErr.Code >= http.StatusInternalServerError:
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}

// retryDelay reads google.rpc.RetryInfo from the error details.
func retryDelay(apiErr genai.APIError) time.Duration {
	for _, detail := range apiErr.Details {
		if kind, _ := detail["@type"].(string); kind != retryInfoType {
			continue
		}
		raw, _ := detail["retryDelay"].(string)
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return d
		}
	}
	return domain.DefaultRetryAfter
}

func asAPIError(err error) (genai.APIError, bool) {
	var value genai.APIError
	if errors.As(err, &value) {
		return value, true
	}
	var ptr *genai.APIError
	if errors.As(err, &ptr) && ptr != nil {
		return *ptr, true
	}
	return genai.APIError{}, false
}

func isNotFound(err error) bool {
	apiErr, ok := asAPIError(err)
	return ok && (apiErr.Code == http.StatusNotFound || apiErr.Status == "NOT_FOUND")
}

func classifyGeminiError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{
			Retryable:     false,
			RecordFailure: false,
		}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: true,
		}
	}
	if errors.Is(err, domain.ErrRateLimited) || errors.Is(err, domain.ErrConfiguration) {
		return resilience.ErrorClassification{
			Retryable:     false,
			RecordFailure: false,
		}
	}
	if errors.Is(err, domain.ErrTemporary) {
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: true,
		}
	}
	return resilience.ErrorClassification{
		Retryable:     false,
		RecordFailure: true,
	}
}

func wrapTemporaryIfNeeded(operation string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if resilience.IsCircuitOpen(err) || errors.Is(err, resilience.ErrRateGate) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}

// uploadError keeps rate limits, configuration and cancellation as they are
// and reports every other upload failure as ErrUpload.
func uploadError(err error) error {
	switch {
	case errors.Is(err, domain.ErrRateLimited),
		errors.Is(err, domain.ErrConfiguration),
		errors.Is(err, context.Canceled),
		errors.Is(err, domain.ErrUpload):
		return err
	}
	return domain.WrapError(domain.ErrUpload, "upload file", err)
}
