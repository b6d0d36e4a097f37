package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrTemplateNotFound  = errors.New("template not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrTemporary         = errors.New("temporary failure")
	ErrUpload            = errors.New("upload failed")
	ErrProcessingTimeout = errors.New("processing timed out")
	ErrProcessingFailed  = errors.New("processing failed")
	ErrRateLimited       = errors.New("rate limit exceeded")
	ErrEmptyGeneration   = errors.New("empty generation")
	ErrConfiguration     = errors.New("configuration error")

	ErrNoFile          = errors.New("no file provided")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported type")
)

// DefaultRetryAfter is used when the upstream rate limiter gives no hint.
const DefaultRetryAfter = 60 * time.Second

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// RateLimitError carries the wait suggested by the upstream service.
type RateLimitError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
	}
	return fmt.Sprintf("rate limit exceeded, retry after %s: %v", e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRateLimited}
	}
	return []error{ErrRateLimited, e.Err}
}

type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindUpload            ErrorKind = "upload"
	KindTransientNetwork  ErrorKind = "transient_network"
	KindProcessingTimeout ErrorKind = "processing_timeout"
	KindProcessingFailed  ErrorKind = "processing_failed"
	KindRateLimit         ErrorKind = "rate_limit"
	KindEmptyGeneration   ErrorKind = "empty_generation"
	KindConfiguration     ErrorKind = "configuration"
	KindNotFound          ErrorKind = "not_found"
	KindCanceled          ErrorKind = "canceled"
	KindInternal          ErrorKind = "internal"
)

// Retryable reports whether the caller may retry the same request unchanged.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindUpload, KindTransientNetwork, KindProcessingTimeout, KindRateLimit, KindEmptyGeneration:
		return true
	default:
		return false
	}
}

// PipelineError is the normalized error handed to callers of the pipeline.
type PipelineError struct {
	Kind       ErrorKind
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *PipelineError) Error() string {
	if e.Err == nil || e.Err.Error() == e.Message {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// RetryAfterSeconds rounds the suggested wait up to whole seconds.
func (e *PipelineError) RetryAfterSeconds() int {
	if e.RetryAfter <= 0 {
		return 0
	}
	return int(math.Ceil(e.RetryAfter.Seconds()))
}
