package usecase

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
)

type ingestFixture struct {
	store     *scratchStoreFake
	files     *fileProcessorFake
	generator *generatorFake
	repo      *repoFake
	observer  *observerRecorder
	cooldown  *cooldownFake
	uc        *IngestUseCase
}

func newIngestFixture(t *testing.T) *ingestFixture {
	t.Helper()
	f := &ingestFixture{
		store:     newScratchStoreFake(t.TempDir()),
		files:     newFileProcessorFake(),
		generator: &generatorFake{text: "यह दस्तावेज़ एक किराया समझौता है।"},
		repo:      newRepoFake(),
		observer:  newObserverRecorder(),
		cooldown:  &cooldownFake{},
	}
	guard := NewRateLimitGuard(f.cooldown)
	poller := NewPoller(f.files, newFakeClock(), PollerConfig{Interval: 2 * time.Second, MaxWait: 120 * time.Second}, f.observer)
	f.uc = NewIngestUseCase(
		NewFileValidator(ValidationPolicy{StrictMIME: true}),
		f.store,
		f.files,
		poller,
		NewGenerationInvoker(f.generator, nil, guard),
		f.repo,
		guard,
		f.observer,
		IngestConfig{},
	)
	f.uc.newID = func() string { return "doc-1" }
	return f
}

func pdfUpload(body []byte) domain.UploadRequest {
	return domain.UploadRequest{
		OwnerID: "user-1",
		Meta:    domain.FileMeta{Filename: "lease.pdf", MimeType: MimePDF, Size: int64(len(body))},
		Body:    bytes.NewReader(body),
	}
}

func samplePDF() []byte {
	return []byte("%PDF-1.7\n1 0 obj << /Type /Catalog >> endobj\n%%EOF\n")
}

func (f *ingestFixture) assertScratchReleased(t *testing.T) {
	t.Helper()
	for _, path := range f.store.acquired {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("scratch file %s still exists", path)
		}
		if f.store.releases[path] != 1 {
			t.Fatalf("expected exactly one release of %s, got %d", path, f.store.releases[path])
		}
	}
}

func TestIngestSuccess(t *testing.T) {
	f := newIngestFixture(t)

	result, err := f.uc.Ingest(context.Background(), pdfUpload(samplePDF()))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if result.Summary != "यह दस्तावेज़ एक किराया समझौता है।" {
		t.Fatalf("unexpected summary %q", result.Summary)
	}
	if len(f.repo.created) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(f.repo.created))
	}
	record := f.repo.created[0]
	if record.Status != domain.StatusAnalyzed || record.OwnerID != "user-1" || record.Name != "lease.pdf" {
		t.Fatalf("unexpected record %+v", record)
	}
	if f.files.deleteCalls["files/abc123"] != 1 {
		t.Fatalf("expected one remote delete, got %d", f.files.deleteCalls["files/abc123"])
	}
	if len(f.store.acquired) != 1 {
		t.Fatalf("expected one scratch file, got %d", len(f.store.acquired))
	}
	f.assertScratchReleased(t)

	want := []domain.IngestStage{
		domain.StageValidating, domain.StageAcquiring, domain.StageUploading,
		domain.StagePolling, domain.StageGenerating, domain.StagePersisting,
	}
	if len(f.observer.stages) != len(want) {
		t.Fatalf("unexpected stages %v", f.observer.stages)
	}
	for i := range want {
		if f.observer.stages[i] != want[i] {
			t.Fatalf("stage %d: expected %s, got %s", i, want[i], f.observer.stages[i])
		}
	}
	if f.observer.outcomes[0] != OutcomeSuccess {
		t.Fatalf("expected success outcome, got %v", f.observer.outcomes)
	}
}

func TestIngestOversizedFileMakesNoNetworkCall(t *testing.T) {
	f := newIngestFixture(t)

	req := pdfUpload(samplePDF())
	req.Meta.Size = 15 << 20
	_, err := f.uc.Ingest(context.Background(), req)

	var pipelineErr *domain.PipelineError
	if !errors.As(err, &pipelineErr) || pipelineErr.Kind != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !errors.Is(err, domain.ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	if f.files.uploadCalls != 0 || f.generator.calls != 0 {
		t.Fatalf("no network calls expected, upload=%d generate=%d", f.files.uploadCalls, f.generator.calls)
	}
	if len(f.store.acquired) != 0 || len(f.repo.created) != 0 {
		t.Fatalf("nothing should be stored")
	}
}

func TestIngestActualSizeBeyondLimit(t *testing.T) {
	f := newIngestFixture(t)

	body := append(samplePDF(), bytes.Repeat([]byte("a"), int(DefaultMaxFileSize))...)
	req := pdfUpload(body)
	req.Meta.Size = 1024
	_, err := f.uc.Ingest(context.Background(), req)
	if !errors.Is(err, domain.ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	if f.files.uploadCalls != 0 {
		t.Fatalf("upload must not be attempted")
	}
	f.assertScratchReleased(t)
}

func TestIngestRequiresOwner(t *testing.T) {
	f := newIngestFixture(t)
	req := pdfUpload(samplePDF())
	req.OwnerID = ""

	if _, err := f.uc.Ingest(context.Background(), req); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestIngestFailureInjection(t *testing.T) {
	tests := []struct {
		name          string
		inject        func(f *ingestFixture)
		kind          domain.ErrorKind
		remoteDeletes int
		acquired      int
	}{
		{
			name:   "acquire fails",
			inject: func(f *ingestFixture) { f.store.acquireErr = errors.New("disk full") },
			kind:   domain.KindInternal,
		},
		{
			name: "upload fails",
			inject: func(f *ingestFixture) {
				f.files.uploadErr = domain.WrapError(domain.ErrUpload, "upload file", errors.New("bad gateway"))
			},
			kind:     domain.KindUpload,
			acquired: 1,
		},
		{
			name: "upload rate limited",
			inject: func(f *ingestFixture) {
				f.files.uploadErr = &domain.RateLimitError{RetryAfter: 5 * time.Second}
			},
			kind:     domain.KindRateLimit,
			acquired: 1,
		},
		{
			name: "processing failed",
			inject: func(f *ingestFixture) {
				f.files.states = []domain.FileState{domain.FileStateFailed}
			},
			kind:          domain.KindProcessingFailed,
			remoteDeletes: 1,
			acquired:      1,
		},
		{
			name: "processing timeout",
			inject: func(f *ingestFixture) {
				f.files.states = []domain.FileState{domain.FileStateProcessing}
			},
			kind:          domain.KindProcessingTimeout,
			remoteDeletes: 1,
			acquired:      1,
		},
		{
			name: "poll transport error",
			inject: func(f *ingestFixture) {
				f.files.stateErr = domain.WrapError(domain.ErrTemporary, "get file", errors.New("reset"))
			},
			kind:          domain.KindTransientNetwork,
			remoteDeletes: 1,
			acquired:      1,
		},
		{
			name:          "empty generation",
			inject:        func(f *ingestFixture) { f.generator.text = "   " },
			kind:          domain.KindEmptyGeneration,
			remoteDeletes: 1,
			acquired:      1,
		},
		{
			name: "generation rate limited",
			inject: func(f *ingestFixture) {
				f.generator.err = errors.New("googleapi: Error 429: quota exceeded")
			},
			kind:          domain.KindRateLimit,
			remoteDeletes: 1,
			acquired:      1,
		},
		{
			name:          "persist fails",
			inject:        func(f *ingestFixture) { f.repo.createErr = errors.New("db down") },
			kind:          domain.KindInternal,
			remoteDeletes: 1,
			acquired:      1,
		},
		{
			name: "remote delete fails",
			inject: func(f *ingestFixture) {
				f.files.deleteErr = errors.New("delete failed")
				f.generator.text = ""
			},
			kind:          domain.KindEmptyGeneration,
			remoteDeletes: 1,
			acquired:      1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newIngestFixture(t)
			tc.inject(f)

			_, err := f.uc.Ingest(context.Background(), pdfUpload(samplePDF()))
			var pipelineErr *domain.PipelineError
			if !errors.As(err, &pipelineErr) {
				t.Fatalf("expected *domain.PipelineError, got %T %v", err, err)
			}
			if pipelineErr.Kind != tc.kind {
				t.Fatalf("expected kind %s, got %s (%v)", tc.kind, pipelineErr.Kind, err)
			}
			if got := f.files.totalDeletes(); got != tc.remoteDeletes {
				t.Fatalf("expected %d remote deletes, got %d", tc.remoteDeletes, got)
			}
			if len(f.store.acquired) != tc.acquired {
				t.Fatalf("expected %d scratch files, got %d", tc.acquired, len(f.store.acquired))
			}
			f.assertScratchReleased(t)
			if len(f.repo.created) != 0 {
				t.Fatalf("no record may exist after a failure")
			}
		})
	}
}

func TestIngestCanceledBeforeUploadSkipsNetwork(t *testing.T) {
	f := newIngestFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.uc.Ingest(ctx, pdfUpload(samplePDF()))
	var pipelineErr *domain.PipelineError
	if !errors.As(err, &pipelineErr) || pipelineErr.Kind != domain.KindCanceled {
		t.Fatalf("expected canceled, got %v", err)
	}
	if f.files.uploadCalls != 0 {
		t.Fatalf("upload must not run after cancellation")
	}
}

func TestIngestRemoteDeleteOutlivesCanceledRequest(t *testing.T) {
	f := newIngestFixture(t)
	f.files.states = []domain.FileState{domain.FileStateFailed}

	if _, err := f.uc.Ingest(context.Background(), pdfUpload(samplePDF())); err == nil {
		t.Fatalf("expected error")
	}
	if f.files.deleteCtx == nil {
		t.Fatalf("expected delete to be attempted")
	}
	if _, ok := f.files.deleteCtx.Deadline(); !ok {
		t.Fatalf("remote delete must run with its own deadline")
	}
}

func TestIngestUploadDuringCooldownFailsFast(t *testing.T) {
	f := newIngestFixture(t)
	f.cooldown.remaining = 40 * time.Second

	_, err := f.uc.Ingest(context.Background(), pdfUpload(samplePDF()))
	var pipelineErr *domain.PipelineError
	if !errors.As(err, &pipelineErr) || pipelineErr.Kind != domain.KindRateLimit {
		t.Fatalf("expected rate limit, got %v", err)
	}
	if pipelineErr.RetryAfter != 40*time.Second {
		t.Fatalf("expected remaining cooldown as retry-after, got %s", pipelineErr.RetryAfter)
	}
	if f.files.uploadCalls != 0 {
		t.Fatalf("upload must not be attempted during cooldown")
	}
	f.assertScratchReleased(t)
}

func TestIngestLenientModeAcceptsUnknownType(t *testing.T) {
	f := newIngestFixture(t)
	f.uc.validator = NewFileValidator(ValidationPolicy{StrictMIME: false})

	req := pdfUpload([]byte("plain notes"))
	req.Meta.Filename = "notes.md"
	req.Meta.MimeType = "text/markdown"
	if _, err := f.uc.Ingest(context.Background(), req); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if len(f.repo.created) != 1 {
		t.Fatalf("expected a record")
	}
}
