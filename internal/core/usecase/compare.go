package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
	"github.com/kirillkom/legal-doc-assistant/internal/core/ports"
)

// CompareUseCase extracts text from two revisions and produces a line diff.
type CompareUseCase struct {
	validator *FileValidator
	extractor ports.TextExtractor
}

func NewCompareUseCase(validator *FileValidator, extractor ports.TextExtractor) *CompareUseCase {
	return &CompareUseCase{validator: validator, extractor: extractor}
}

func (uc *CompareUseCase) Compare(ctx context.Context, left, right domain.UploadRequest) (*domain.Comparison, error) {
	var leftText, rightText string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		text, err := uc.extract(gctx, left)
		leftText = text
		return err
	})
	g.Go(func() error {
		text, err := uc.extract(gctx, right)
		rightText = text
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	lines, changes := diffLines(splitLines(leftText), splitLines(rightText))
	return &domain.Comparison{
		Left:    left.Meta.Filename,
		Right:   right.Meta.Filename,
		Lines:   lines,
		Changes: changes,
	}, nil
}

func (uc *CompareUseCase) extract(ctx context.Context, req domain.UploadRequest) (string, error) {
	meta := req.Meta
	meta.MimeType = NormalizeMimeType(meta.MimeType)
	if _, err := uc.validator.Validate(meta); err != nil {
		return "", err
	}
	if req.Body == nil {
		return "", validationError(domain.ErrNoFile)
	}

	limit := uc.validator.MaxFileSize()
	data, err := io.ReadAll(io.LimitReader(req.Body, limit+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", meta.Filename, err)
	}
	if int64(len(data)) > limit {
		return "", validationError(domain.ErrFileTooLarge)
	}
	if len(data) == 0 {
		return "", validationError(domain.ErrNoFile)
	}

	text, err := uc.extractor.Extract(ctx, meta.Filename, meta.MimeType, data)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", meta.Filename, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "compare", errors.New("no text could be extracted from "+meta.Filename))
	}
	return text, nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return lines
}

// diffLines renders an ndiff-style listing: "  " unchanged, "- " only in a,
// "+ " only in b. changes counts the +/- lines.
func diffLines(a, b []string) ([]string, int) {
	matcher := difflib.NewMatcher(a, b)
	out := make([]string, 0, len(a)+len(b))
	changes := 0
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'e':
			for _, line := range a[op.I1:op.I2] {
				out = append(out, "  "+line)
			}
		case 'd':
			for _, line := range a[op.I1:op.I2] {
				out = append(out, "- "+line)
				changes++
			}
		case 'i':
			for _, line := range b[op.J1:op.J2] {
				out = append(out, "+ "+line)
				changes++
			}
		case 'r':
			for _, line := range a[op.I1:op.I2] {
				out = append(out, "- "+line)
				changes++
			}
			for _, line := range b[op.J1:op.J2] {
				out = append(out, "+ "+line)
				changes++
			}
		}
	}
	return out, changes
}
