package gemini

import (
	"context"
	"errors"

	"google.golang.org/genai"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
)

func (p *FileProcessor) Upload(ctx context.Context, file domain.TransientFile, mimeType, displayName string) (domain.RemoteFileHandle, error) {
	c := p.client
	var uploaded *genai.File
	err := c.callExec.Execute(ctx, "gemini.upload_file", func(callCtx context.Context) error {
		callCtx, cancel := c.withTimeout(callCtx)
		defer cancel()
		f, err := c.files.UploadFromPath(callCtx, file.Path, &genai.UploadFileConfig{
			MIMEType:    mimeType,
			DisplayName: displayName,
		})
		if err != nil {
			return normalizeError("upload file", err)
		}
		uploaded = f
		return nil
	}, classifyGeminiError)
	if err != nil {
		return domain.RemoteFileHandle{}, uploadError(err)
	}
	if uploaded == nil || uploaded.Name == "" {
		return domain.RemoteFileHandle{}, domain.WrapError(domain.ErrUpload, "upload file", errors.New("empty file handle in response"))
	}
	handle := c.toHandle(uploaded)
	if handle.MimeType == "" {
		handle.MimeType = mimeType
	}
	return handle, nil
}

func (p *FileProcessor) State(ctx context.Context, name string) (domain.RemoteFileHandle, error) {
	c := p.client
	var current *genai.File
	err := c.stateExec.Execute(ctx, "gemini.get_file", func(callCtx context.Context) error {
		callCtx, cancel := c.withTimeout(callCtx)
		defer cancel()
		f, err := c.files.Get(callCtx, name, nil)
		if err != nil {
			return normalizeError("get file", err)
		}
		current = f
		return nil
	}, classifyGeminiError)
	if err != nil {
		return domain.RemoteFileHandle{}, wrapTemporaryIfNeeded("get file", err)
	}
	if current == nil {
		return domain.RemoteFileHandle{}, domain.WrapError(domain.ErrTemporary, "get file", errors.New("empty file in response"))
	}
	return c.toHandle(current), nil
}

// Delete treats a missing file as already deleted.
func (p *FileProcessor) Delete(ctx context.Context, name string) error {
	c := p.client
	err := c.stateExec.Execute(ctx, "gemini.delete_file", func(callCtx context.Context) error {
		callCtx, cancel := c.withTimeout(callCtx)
		defer cancel()
		_, err := c.files.Delete(callCtx, name, nil)
		if err != nil && !isNotFound(err) {
			return normalizeError("delete file", err)
		}
		return nil
	}, classifyGeminiError)
	return wrapTemporaryIfNeeded("delete file", err)
}

func (c *Client) toHandle(f *genai.File) domain.RemoteFileHandle {
	return domain.RemoteFileHandle{
		Name:        f.Name,
		URI:         f.URI,
		MimeType:    f.MIMEType,
		DisplayName: f.DisplayName,
		State:       mapState(f.State),
		ObservedAt:  c.now().UTC(),
	}
}

func mapState(state genai.FileState) domain.FileState {
	switch state {
	case genai.FileStateActive:
		return domain.FileStateActive
	case genai.FileStateFailed:
		return domain.FileStateFailed
	case genai.FileStateProcessing:
		return domain.FileStateProcessing
	default:
		return domain.FileStatePending
	}
}
