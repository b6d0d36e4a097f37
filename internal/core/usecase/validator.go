package usecase

import (
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
)

const (
	DefaultMaxFileSize int64 = 10 << 20

	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeText = "text/plain"
)

var (
	documentMimeTypes = []string{MimePDF, MimeDOCX, MimeText}
	imageMimeTypes    = []string{"image/png", "image/jpeg", "image/webp"}
)

// sniffedTypes lists what http.DetectContentType reports for each declared type.
var sniffedTypes = map[string][]string{
	MimePDF:      {"application/pdf"},
	MimeDOCX:     {"application/zip"},
	MimeXLSX:     {"application/zip"},
	MimeText:     {"text/plain"},
	"image/png":  {"image/png"},
	"image/jpeg": {"image/jpeg"},
	"image/webp": {"image/webp"},
}

type ValidationPolicy struct {
	MaxFileSize int64
	// StrictMIME rejects unknown types instead of passing them through with a warning.
	StrictMIME bool
	// AllowImages admits image uploads for the OCR-capable path.
	AllowImages    bool
	ExtraMimeTypes []string
}

type FileValidator struct {
	policy  ValidationPolicy
	allowed map[string]struct{}
}

func NewFileValidator(policy ValidationPolicy) *FileValidator {
	if policy.MaxFileSize <= 0 {
		policy.MaxFileSize = DefaultMaxFileSize
	}
	allowed := make(map[string]struct{})
	for _, mt := range documentMimeTypes {
		allowed[mt] = struct{}{}
	}
	if policy.AllowImages {
		for _, mt := range imageMimeTypes {
			allowed[mt] = struct{}{}
		}
	}
	for _, mt := range policy.ExtraMimeTypes {
		allowed[NormalizeMimeType(mt)] = struct{}{}
	}
	return &FileValidator{policy: policy, allowed: allowed}
}

func (v *FileValidator) MaxFileSize() int64 {
	return v.policy.MaxFileSize
}

// Validate checks declared metadata before any bytes are stored. A non-empty
// warning means an unknown type was let through by the lenient policy.
func (v *FileValidator) Validate(meta domain.FileMeta) (warning string, err error) {
	if strings.TrimSpace(meta.Filename) == "" || meta.Size == 0 {
		return "", validationError(domain.ErrNoFile)
	}
	if meta.Size > v.policy.MaxFileSize {
		return "", validationError(domain.ErrFileTooLarge)
	}
	mimeType := NormalizeMimeType(meta.MimeType)
	if _, ok := v.allowed[mimeType]; ok {
		return "", nil
	}
	if v.policy.StrictMIME {
		return "", validationError(fmt.Errorf("%w: %q", domain.ErrUnsupportedType, meta.MimeType))
	}
	return fmt.Sprintf("unsupported type %q accepted by lenient policy", meta.MimeType), nil
}

// ValidateContent re-checks a stored file: the real byte count and, in strict
// mode, that the content looks like the declared type.
func (v *FileValidator) ValidateContent(meta domain.FileMeta, file domain.TransientFile) error {
	if file.Size == 0 {
		return validationError(domain.ErrNoFile)
	}
	if file.Size > v.policy.MaxFileSize {
		return validationError(domain.ErrFileTooLarge)
	}
	if !v.policy.StrictMIME {
		return nil
	}
	declared := NormalizeMimeType(meta.MimeType)
	expected, ok := sniffedTypes[declared]
	if !ok {
		return nil
	}
	sniffed := NormalizeMimeType(http.DetectContentType(file.Head))
	for _, candidate := range expected {
		if sniffed == candidate {
			return nil
		}
	}
	return validationError(fmt.Errorf("%w: content looks like %s, declared %s", domain.ErrUnsupportedType, sniffed, declared))
}

// SniffMimeType guesses a type for uploads that declared none.
func SniffMimeType(file domain.TransientFile) string {
	return NormalizeMimeType(http.DetectContentType(file.Head))
}

func NormalizeMimeType(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		if idx := strings.IndexByte(raw, ';'); idx >= 0 {
			raw = raw[:idx]
		}
		return strings.ToLower(strings.TrimSpace(raw))
	}
	return strings.ToLower(mediaType)
}

func validationError(reason error) error {
	return domain.WrapError(domain.ErrInvalidInput, "validate file", reason)
}
