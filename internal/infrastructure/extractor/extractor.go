package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeText = "text/plain"
)

// Extractor dispatches on MIME type, falling back to the file extension when
// the declared type is generic.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(ctx context.Context, filename, mimeType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		text string
		err  error
	)
	switch kindOf(filename, mimeType) {
	case mimePDF:
		text, err = ExtractPDF(data)
	case mimeDOCX:
		text, err = ExtractDOCX(data)
	case mimeXLSX:
		text, err = ExtractXLSX(data)
	case mimeText:
		text, err = ExtractTXT(data)
	default:
		return "", domain.WrapError(
			domain.ErrInvalidInput,
			"extract text",
			fmt.Errorf("%w: %s", domain.ErrUnsupportedType, mimeType),
		)
	}
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", fmt.Errorf("%s: %w", filename, err))
	}
	return text, nil
}

func kindOf(filename, mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	switch mimeType {
	case mimePDF, mimeDOCX, mimeXLSX, mimeText:
		return mimeType
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return mimePDF
	case ".docx":
		return mimeDOCX
	case ".xlsx":
		return mimeXLSX
	case ".txt", ".md":
		return mimeText
	}
	return mimeType
}
