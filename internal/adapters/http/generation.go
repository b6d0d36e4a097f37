package httpadapter

import (
	"net/http"
	"strings"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
)

type summarizeRequest struct {
	DocName string `json:"docName"`
}

type clauseRequest struct {
	UserInput       string `json:"userInput"`
	TemplateContext string `json:"templateContext"`
	TargetLanguage  string `json:"targetLanguage"`
}

type questionRequest struct {
	Question  string `json:"question"`
	ContextID string `json:"contextId,omitempty"`
}

type renderRequest struct {
	Language string            `json:"language"`
	Values   map[string]string `json:"values,omitempty"`
	Assist   map[string]string `json:"assist,omitempty"`
}

func (rt *Router) summarizeByName(w http.ResponseWriter, r *http.Request) {
	if rt.svc.Summarizer == nil {
		writeError(w, r, unavailable("summarize by name"))
		return
	}
	var req summarizeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	summary, err := rt.svc.Summarizer.SummarizeByName(r.Context(), req.DocName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"summary":  summary,
		"fileName": strings.TrimSpace(req.DocName),
	})
}

func (rt *Router) draftClause(w http.ResponseWriter, r *http.Request) {
	if rt.svc.Drafter == nil {
		writeError(w, r, unavailable("draft clause"))
		return
	}
	var req clauseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	clause, err := rt.svc.Drafter.DraftClause(r.Context(), domain.ClauseRequest{
		UserInput:       req.UserInput,
		TemplateContext: req.TemplateContext,
		TargetLanguage:  domain.Language(req.TargetLanguage),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"clause": clause})
}

func (rt *Router) answerQuestion(w http.ResponseWriter, r *http.Request) {
	if rt.svc.Questions == nil {
		writeError(w, r, unavailable("answer question"))
		return
	}
	var req questionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := rt.svc.Questions.Answer(r.Context(), req.Question, req.ContextID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sources := result.Sources
	if sources == nil {
		sources = []domain.Citation{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"answer":  result.Text,
		"sources": sources,
	})
}

func (rt *Router) listTemplates(w http.ResponseWriter, r *http.Request) {
	if rt.svc.Templates == nil {
		writeError(w, r, unavailable("list templates"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": rt.svc.Templates.List(r.Context())})
}

func (rt *Router) renderTemplate(w http.ResponseWriter, r *http.Request) {
	if rt.svc.Templates == nil {
		writeError(w, r, unavailable("render template"))
		return
	}
	var req renderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	rendered, err := rt.svc.Templates.Render(r.Context(), r.PathValue("id"), domain.Language(req.Language), req.Values, req.Assist)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rendered)
}
