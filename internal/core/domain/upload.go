package domain

import "io"

// FileMeta is what the caller declares about an upload before any bytes are read.
type FileMeta struct {
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

type UploadRequest struct {
	OwnerID string
	Meta    FileMeta
	Body    io.Reader
}

// TransientFile is a scratch copy owned by exactly one pipeline invocation.
type TransientFile struct {
	Path string
	Size int64
	// Head holds the first bytes of the file for content sniffing.
	Head []byte
}

type IngestResult struct {
	Document *DocumentRecord `json:"document"`
	Summary  string          `json:"summary"`
}

// IngestStage names one step of the ingestion state machine.
type IngestStage string

const (
	StageValidating IngestStage = "validating"
	StageAcquiring  IngestStage = "acquiring"
	StageUploading  IngestStage = "uploading"
	StagePolling    IngestStage = "polling"
	StageGenerating IngestStage = "generating"
	StagePersisting IngestStage = "persisting"
	StageDone       IngestStage = "done"
)
