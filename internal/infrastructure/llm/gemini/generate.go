package gemini

import (
	"context"
	"errors"

	"google.golang.org/genai"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
)

func (g *Generator) Generate(ctx context.Context, parts []domain.Part) (string, error) {
	c := g.client
	contents, err := buildContents(parts)
	if err != nil {
		return "", err
	}

	config := &genai.GenerateContentConfig{Temperature: genai.Ptr(c.temperature)}
	var text string
	err = c.callExec.Execute(ctx, "gemini.generate_content", func(callCtx context.Context) error {
		callCtx, cancel := c.withTimeout(callCtx)
		defer cancel()
		resp, err := c.models.GenerateContent(callCtx, c.model, contents, config)
		if err != nil {
			return normalizeError("generate content", err)
		}
		if resp != nil {
			text = resp.Text()
		}
		return nil
	}, classifyGeminiError)
	if err != nil {
		return "", wrapTemporaryIfNeeded("generate content", err)
	}
	return text, nil
}

func buildContents(parts []domain.Part) ([]*genai.Content, error) {
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		switch {
		case p.FileURI != "":
			out = append(out, genai.NewPartFromURI(p.FileURI, p.MimeType))
		case p.Text != "":
			out = append(out, genai.NewPartFromText(p.Text))
		}
	}
	if len(out) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "generate content", errors.New("no parts to send"))
	}
	return []*genai.Content{genai.NewContentFromParts(out, genai.RoleUser)}, nil
}
