package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func (c *fakeClock) elapsed(since time.Time) time.Duration {
	return c.Now().Sub(since)
}

type fileProcessorFake struct {
	uploadHandle domain.RemoteFileHandle
	uploadErr    error
	uploadCalls  int

	// states is consumed one entry per State call; the last entry repeats.
	states     []domain.FileState
	stateErr   error
	stateCalls int

	deleteErr   error
	deleteCalls map[string]int
	deleteCtx   context.Context
}

func newFileProcessorFake() *fileProcessorFake {
	return &fileProcessorFake{
		uploadHandle: domain.RemoteFileHandle{
			Name:     "files/abc123",
			URI:      "https://files.example/abc123",
			MimeType: MimePDF,
			State:    domain.FileStatePending,
		},
		states:      []domain.FileState{domain.FileStateProcessing, domain.FileStateActive},
		deleteCalls: map[string]int{},
	}
}

func (f *fileProcessorFake) Upload(_ context.Context, file domain.TransientFile, mimeType, displayName string) (domain.RemoteFileHandle, error) {
	f.uploadCalls++
	if f.uploadErr != nil {
		return domain.RemoteFileHandle{}, f.uploadErr
	}
	if _, err := os.Stat(file.Path); err != nil {
		return domain.RemoteFileHandle{}, fmt.Errorf("scratch file missing: %w", err)
	}
	handle := f.uploadHandle
	handle.MimeType = mimeType
	handle.DisplayName = displayName
	return handle, nil
}

func (f *fileProcessorFake) State(_ context.Context, name string) (domain.RemoteFileHandle, error) {
	f.stateCalls++
	if f.stateErr != nil {
		return domain.RemoteFileHandle{}, f.stateErr
	}
	idx := f.stateCalls - 1
	if idx >= len(f.states) {
		idx = len(f.states) - 1
	}
	return domain.RemoteFileHandle{Name: name, State: f.states[idx]}, nil
}

func (f *fileProcessorFake) Delete(ctx context.Context, name string) error {
	f.deleteCalls[name]++
	f.deleteCtx = ctx
	return f.deleteErr
}

func (f *fileProcessorFake) totalDeletes() int {
	total := 0
	for _, n := range f.deleteCalls {
		total += n
	}
	return total
}

type generatorFake struct {
	text  string
	err   error
	calls int
	parts []domain.Part
}

func (f *generatorFake) Generate(_ context.Context, parts []domain.Part) (string, error) {
	f.calls++
	f.parts = parts
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type answererFake struct {
	resp      domain.QAResponse
	err       error
	question  string
	contextID string
}

func (f *answererFake) Ask(_ context.Context, question, contextID string) (domain.QAResponse, error) {
	f.question = question
	f.contextID = contextID
	if f.err != nil {
		return domain.QAResponse{}, f.err
	}
	return f.resp, nil
}

type statusUpdate struct {
	id      string
	status  domain.DocumentStatus
	message string
}

type repoFake struct {
	records   map[string]*domain.DocumentRecord
	created   []*domain.DocumentRecord
	createErr error
	updateErr error
	updates   []statusUpdate
}

func newRepoFake(records ...*domain.DocumentRecord) *repoFake {
	f := &repoFake{records: map[string]*domain.DocumentRecord{}}
	for _, r := range records {
		f.records[r.ID] = r
	}
	return f
}

func (f *repoFake) Create(_ context.Context, doc *domain.DocumentRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	copyDoc := *doc
	f.created = append(f.created, &copyDoc)
	f.records[doc.ID] = &copyDoc
	return nil
}

func (f *repoFake) GetByID(_ context.Context, id string) (*domain.DocumentRecord, error) {
	doc, ok := f.records[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	copyDoc := *doc
	return &copyDoc, nil
}

func (f *repoFake) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	doc, ok := f.records[id]
	if !ok {
		return domain.ErrDocumentNotFound
	}
	if !doc.Status.CanAdvanceTo(status) {
		return domain.ErrInvalidTransition
	}
	doc.Status = status
	doc.Error = errMessage
	f.updates = append(f.updates, statusUpdate{id: id, status: status, message: errMessage})
	return nil
}

func (f *repoFake) ListRecent(_ context.Context, ownerID string, limit int) ([]domain.DocumentRecord, error) {
	out := make([]domain.DocumentRecord, 0)
	for _, r := range f.records {
		if r.OwnerID == ownerID && len(out) < limit {
			out = append(out, *r)
		}
	}
	return out, nil
}

// scratchStoreFake writes real files under a test directory.
type scratchStoreFake struct {
	dir        string
	acquireErr error
	acquired   []string
	releases   map[string]int
}

func newScratchStoreFake(dir string) *scratchStoreFake {
	return &scratchStoreFake{dir: dir, releases: map[string]int{}}
}

func (f *scratchStoreFake) Acquire(_ context.Context, name string, body io.Reader) (domain.TransientFile, error) {
	if f.acquireErr != nil {
		return domain.TransientFile{}, f.acquireErr
	}
	file, err := os.CreateTemp(f.dir, "*-"+filepath.Base(name))
	if err != nil {
		return domain.TransientFile{}, err
	}
	defer file.Close()
	n, err := io.Copy(file, body)
	if err != nil {
		return domain.TransientFile{}, err
	}
	raw, err := os.ReadFile(file.Name())
	if err != nil {
		return domain.TransientFile{}, err
	}
	if len(raw) > 512 {
		raw = raw[:512]
	}
	f.acquired = append(f.acquired, file.Name())
	return domain.TransientFile{Path: file.Name(), Size: n, Head: raw}, nil
}

func (f *scratchStoreFake) Release(file domain.TransientFile) {
	f.releases[file.Path]++
	_ = os.Remove(file.Path)
}

type observerRecorder struct {
	mu       sync.Mutex
	stages   []domain.IngestStage
	failed   []domain.IngestStage
	outcomes []domain.ErrorKind
	cleanups map[string]int
	polls    int
}

func newObserverRecorder() *observerRecorder {
	return &observerRecorder{cleanups: map[string]int{}}
}

func (o *observerRecorder) ObserveStage(stage domain.IngestStage, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stages = append(o.stages, stage)
	if err != nil {
		o.failed = append(o.failed, stage)
	}
}

func (o *observerRecorder) ObservePoll(int, domain.FileState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.polls++
}

func (o *observerRecorder) ObserveOutcome(_ string, kind domain.ErrorKind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, kind)
}

func (o *observerRecorder) ObserveCleanup(resource string, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cleanups[resource]++
}

type cooldownFake struct {
	remaining time.Duration
	started   []time.Duration
	err       error
}

func (f *cooldownFake) Start(_ context.Context, d time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.started = append(f.started, d)
	f.remaining = d
	return nil
}

func (f *cooldownFake) Remaining(context.Context) (time.Duration, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.remaining, nil
}

type queueFake struct {
	published []string
	err       error
}

func (f *queueFake) PublishReanalysisRequested(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, documentID)
	return nil
}

func (f *queueFake) SubscribeReanalysisRequested(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}
