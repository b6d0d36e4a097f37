package domain

import (
	"fmt"
	"strings"
)

type Task string

const (
	TaskSummarize      Task = "summarize"
	TaskDraftClause    Task = "draft_clause"
	TaskAnswerQuestion Task = "answer_question"
)

type Language string

const (
	LanguageHindi   Language = "hindi"
	LanguageEnglish Language = "english"
)

func ParseLanguage(raw string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(raw))) {
	case LanguageHindi:
		return LanguageHindi, nil
	case LanguageEnglish:
		return LanguageEnglish, nil
	default:
		return "", WrapError(ErrInvalidInput, "parse language", fmt.Errorf("unsupported target language %q", raw))
	}
}

// GenerationContext points the model either at a processed remote file or at
// an already known document referenced by name.
type GenerationContext struct {
	File         *RemoteFileHandle
	DocumentName string
}

// Part is one element of a generation request: a file reference or text.
type Part struct {
	Text     string
	FileURI  string
	MimeType string
}

type ClauseRequest struct {
	UserInput       string   `json:"userInput"`
	TemplateContext string   `json:"templateContext"`
	TargetLanguage  Language `json:"targetLanguage"`
}

type Citation struct {
	Content string `json:"content"`
	Page    string `json:"page"`
}

type GenerationResult struct {
	Task    Task       `json:"task"`
	Text    string     `json:"text"`
	Sources []Citation `json:"sources,omitempty"`
}

// QAResponse is the raw reply of the question-answering endpoint.
type QAResponse struct {
	Answer  string
	Sources []Citation
}
