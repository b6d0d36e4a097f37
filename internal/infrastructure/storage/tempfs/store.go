package tempfs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
)

const headSize = 512

// Store keeps one scratch copy per pipeline invocation under a single
// directory. Names carry a timestamp and a random token, so concurrent
// invocations never collide.
type Store struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

func New(dir string, maxBytes int64) (*Store, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "legal-doc-assistant")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	return &Store{dir: dir, maxBytes: maxBytes, now: time.Now}, nil
}

// Acquire copies at most maxBytes+1 bytes so that the caller can detect an
// understated size without the store buffering an unbounded body.
func (s *Store) Acquire(ctx context.Context, name string, body io.Reader) (domain.TransientFile, error) {
	if body == nil {
		return domain.TransientFile{}, domain.WrapError(domain.ErrInvalidInput, "acquire", domain.ErrNoFile)
	}
	if err := ctx.Err(); err != nil {
		return domain.TransientFile{}, err
	}

	path := filepath.Join(s.dir, s.scratchName(name))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return domain.TransientFile{}, fmt.Errorf("create scratch file: %w", err)
	}

	reader := body
	if s.maxBytes > 0 {
		reader = io.LimitReader(body, s.maxBytes+1)
	}
	head := &headCapture{limit: headSize}
	n, copyErr := io.Copy(f, io.TeeReader(&ctxReader{ctx: ctx, r: reader}, head))
	closeErr := f.Close()

	file := domain.TransientFile{Path: path, Size: n, Head: head.buf}
	if copyErr != nil {
		s.Release(file)
		return domain.TransientFile{}, fmt.Errorf("write scratch file: %w", copyErr)
	}
	if closeErr != nil {
		s.Release(file)
		return domain.TransientFile{}, fmt.Errorf("close scratch file: %w", closeErr)
	}
	return file, nil
}

// Release removes the scratch file. It is safe to call more than once.
func (s *Store) Release(file domain.TransientFile) {
	if file.Path == "" {
		return
	}
	if err := os.Remove(file.Path); err != nil && !os.IsNotExist(err) {
		slog.Warn("cleanup_warning", "resource", "local_file", "path", file.Path, "error", err)
	}
}

func (s *Store) scratchName(original string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return strconv.FormatInt(s.now().UnixNano(), 10) + "-" + token + "-" + sanitizeFilename(original)
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == ".." {
		return "document.bin"
	}
	if len(base) > 128 {
		base = base[len(base)-128:]
	}
	return base
}

type headCapture struct {
	limit int
	buf   []byte
}

func (h *headCapture) Write(p []byte) (int, error) {
	if room := h.limit - len(h.buf); room > 0 {
		if len(p) < room {
			room = len(p)
		}
		h.buf = append(h.buf, p[:room]...)
	}
	return len(p), nil
}

// ctxReader stops a long copy once the request is canceled.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
