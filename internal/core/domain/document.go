package domain

import (
	"fmt"
	"strings"
	"time"
)

type DocumentStatus string

const (
	StatusUploading  DocumentStatus = "uploading"
	StatusProcessing DocumentStatus = "processing"
	StatusAnalyzed   DocumentStatus = "analyzed"
	StatusError      DocumentStatus = "error"
)

// legacyStatuses maps literals written by older clients onto the enum.
var legacyStatuses = map[string]DocumentStatus{
	"uploading":  StatusUploading,
	"processing": StatusProcessing,
	"प्रगति में":  StatusProcessing,
	"analyzed":   StatusAnalyzed,
	"complete":   StatusAnalyzed,
	"completed":  StatusAnalyzed,
	"विश्लेषित":   StatusAnalyzed,
	"error":      StatusError,
	"failed":     StatusError,
}

func ParseDocumentStatus(raw string) (DocumentStatus, error) {
	status, ok := legacyStatuses[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", WrapError(ErrInvalidInput, "parse document status", fmt.Errorf("unknown status %q", raw))
	}
	return status, nil
}

func (s DocumentStatus) Valid() bool {
	return s.rank() > 0
}

func (s DocumentStatus) rank() int {
	switch s {
	case StatusUploading:
		return 1
	case StatusProcessing:
		return 2
	case StatusAnalyzed:
		return 3
	case StatusError:
		return 4
	default:
		return 0
	}
}

// CanAdvanceTo reports whether a record in status s may move to next.
// Status only moves forward; error is reachable from anywhere and a record
// in error may be re-analyzed back to analyzed.
func (s DocumentStatus) CanAdvanceTo(next DocumentStatus) bool {
	if !next.Valid() {
		return false
	}
	if next == StatusError {
		return true
	}
	if s == StatusError {
		return next == StatusAnalyzed
	}
	return next.rank() >= s.rank()
}

// DocumentRecord is the durable anchor of one successfully ingested upload.
type DocumentRecord struct {
	ID        string         `json:"id"`
	OwnerID   string         `json:"user_id"`
	Name      string         `json:"name"`
	MimeType  string         `json:"mime_type,omitempty"`
	Status    DocumentStatus `json:"status"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
