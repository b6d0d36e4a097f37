package domain

import "time"

// FileState is the processing state of a file held by the AI service.
type FileState string

const (
	FileStatePending    FileState = "PENDING"
	FileStateProcessing FileState = "PROCESSING"
	FileStateActive     FileState = "ACTIVE"
	FileStateFailed     FileState = "FAILED"
)

func (s FileState) Terminal() bool {
	return s == FileStateActive || s == FileStateFailed
}

// RemoteFileHandle is the AI service's copy of an uploaded file.
type RemoteFileHandle struct {
	Name        string    `json:"name"`
	URI         string    `json:"uri"`
	MimeType    string    `json:"mime_type"`
	DisplayName string    `json:"display_name,omitempty"`
	State       FileState `json:"state"`
	ObservedAt  time.Time `json:"observed_at"`
}
