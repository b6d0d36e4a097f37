package usecase

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
)

const (
	msgRateLimited       = "API rate limit exceeded. Please try again later."
	msgConfiguration     = "Service unavailable. Please try again later."
	msgProcessingTimeout = "File processing timed out after 2 minutes."
	msgProcessingFailed  = "Google AI failed to process the file."
	msgEmptyGeneration   = "AI did not generate a response."
	msgUpload            = "Failed to upload the file for processing."
	msgTransient         = "Temporary network failure. Please try again."
	msgCanceled          = "Request was canceled."
	msgNotFound          = "Not found."
	msgInternal          = "Failed to process the request."
)

// Classify normalizes any pipeline failure into a *domain.PipelineError.
// Validation and not-found messages keep the caller-facing reason; every
// other kind gets a fixed message and keeps the cause in Err for logs.
func Classify(err error) *domain.PipelineError {
	if err == nil {
		return nil
	}

	var pipelineErr *domain.PipelineError
	if errors.As(err, &pipelineErr) {
		return pipelineErr
	}

	var rateErr *domain.RateLimitError
	if errors.As(err, &rateErr) {
		retryAfter := rateErr.RetryAfter
		if retryAfter <= 0 {
			retryAfter = domain.DefaultRetryAfter
		}
		return &domain.PipelineError{Kind: domain.KindRateLimit, Message: msgRateLimited, RetryAfter: retryAfter, Err: err}
	}

	switch {
	case errors.Is(err, context.Canceled):
		return newPipelineError(domain.KindCanceled, msgCanceled, err)
	case errors.Is(err, domain.ErrProcessingTimeout):
		return newPipelineError(domain.KindProcessingTimeout, msgProcessingTimeout, err)
	case errors.Is(err, domain.ErrProcessingFailed):
		return newPipelineError(domain.KindProcessingFailed, msgProcessingFailed, err)
	case errors.Is(err, domain.ErrEmptyGeneration):
		return newPipelineError(domain.KindEmptyGeneration, msgEmptyGeneration, err)
	case errors.Is(err, domain.ErrConfiguration):
		return newPipelineError(domain.KindConfiguration, msgConfiguration, err)
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidTransition):
		return newPipelineError(domain.KindValidation, validationMessage(err), err)
	case errors.Is(err, domain.ErrDocumentNotFound):
		return newPipelineError(domain.KindNotFound, "Document not found.", err)
	case errors.Is(err, domain.ErrTemplateNotFound):
		return newPipelineError(domain.KindNotFound, "Template not found.", err)
	case errors.Is(err, domain.ErrRateLimited):
		return &domain.PipelineError{Kind: domain.KindRateLimit, Message: msgRateLimited, RetryAfter: domain.DefaultRetryAfter, Err: err}
	case errors.Is(err, domain.ErrUpload):
		return newPipelineError(domain.KindUpload, msgUpload, err)
	case errors.Is(err, domain.ErrTemporary), errors.Is(err, context.DeadlineExceeded):
		return newPipelineError(domain.KindTransientNetwork, msgTransient, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return newPipelineError(domain.KindTransientNetwork, msgTransient, err)
	}

	text := err.Error()
	switch {
	case strings.Contains(text, "429"):
		return &domain.PipelineError{Kind: domain.KindRateLimit, Message: msgRateLimited, RetryAfter: domain.DefaultRetryAfter, Err: err}
	case strings.Contains(text, "API key not valid"):
		return newPipelineError(domain.KindConfiguration, msgConfiguration, err)
	}
	return newPipelineError(domain.KindInternal, msgInternal, err)
}

func newPipelineError(kind domain.ErrorKind, message string, err error) *domain.PipelineError {
	return &domain.PipelineError{Kind: kind, Message: message, Err: err}
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoFile):
		return "No file provided or file data is invalid"
	case errors.Is(err, domain.ErrFileTooLarge):
		return "File too large"
	case errors.Is(err, domain.ErrUnsupportedType):
		return "Unsupported file type"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "Document status cannot move backwards"
	}
	// WrapError renders "op: invalid input: reason"; surface only the reason.
	text := err.Error()
	marker := domain.ErrInvalidInput.Error() + ": "
	if idx := strings.LastIndex(text, marker); idx >= 0 {
		return text[idx+len(marker):]
	}
	return text
}
