// Package mcpadapter exposes the generation operations as MCP tools.
package mcpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
	"github.com/kirillkom/legal-doc-assistant/internal/core/ports"
	"github.com/kirillkom/legal-doc-assistant/internal/core/usecase"
)

const (
	ToolSummarizeByName = "summarize_document_by_name"
	ToolDraftClause     = "draft_clause"
	ToolAskQuestion     = "ask_question"
)

type Services struct {
	Summarizer ports.Summarizer
	Drafter    ports.ClauseDrafter
	Questions  ports.QuestionService
}

type tools struct {
	svc Services
}

// NewServer registers one tool per wired service.
func NewServer(name, version string, svc Services) *server.MCPServer {
	s := server.NewMCPServer(name, version, server.WithToolCapabilities(false))
	t := tools{svc: svc}

	if svc.Summarizer != nil {
		s.AddTool(mcp.NewTool(ToolSummarizeByName,
			mcp.WithDescription("Summarize a legal document known by name in simple Hindi and English."),
			mcp.WithString("docName", mcp.Required(), mcp.Description("Document name, e.g. rent_agreement.pdf")),
			mcp.WithReadOnlyHintAnnotation(true),
		), t.summarizeByName)
	}
	if svc.Drafter != nil {
		s.AddTool(mcp.NewTool(ToolDraftClause,
			mcp.WithDescription("Draft a formal legal clause from a plain-language requirement."),
			mcp.WithString("userInput", mcp.Required(), mcp.Description("Requirement in plain words.")),
			mcp.WithString("templateContext", mcp.Required(), mcp.Description("Document the clause belongs to.")),
			mcp.WithString("targetLanguage", mcp.Required(), mcp.Enum(string(domain.LanguageHindi), string(domain.LanguageEnglish))),
			mcp.WithReadOnlyHintAnnotation(true),
		), t.draftClause)
	}
	if svc.Questions != nil {
		s.AddTool(mcp.NewTool(ToolAskQuestion,
			mcp.WithDescription("Ask a question about a processed document; answers cite source pages."),
			mcp.WithString("question", mcp.Required()),
			mcp.WithString("contextId", mcp.Description("Document the question refers to.")),
			mcp.WithReadOnlyHintAnnotation(true),
		), t.askQuestion)
	}
	return s
}

func NewHTTPHandler(s *server.MCPServer) http.Handler {
	return server.NewStreamableHTTPServer(s, server.WithEndpointPath("/mcp"))
}

func (t tools) summarizeByName(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docName, err := req.RequireString("docName")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	summary, err := t.svc.Summarizer.SummarizeByName(ctx, docName)
	if err != nil {
		return toolError(ToolSummarizeByName, err), nil
	}
	return mcp.NewToolResultText(summary), nil
}

func (t tools) draftClause(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		UserInput       string `json:"userInput"`
		TemplateContext string `json:"templateContext"`
		TargetLanguage  string `json:"targetLanguage"`
	}
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
	}
	clause, err := t.svc.Drafter.DraftClause(ctx, domain.ClauseRequest{
		UserInput:       args.UserInput,
		TemplateContext: args.TemplateContext,
		TargetLanguage:  domain.Language(args.TargetLanguage),
	})
	if err != nil {
		return toolError(ToolDraftClause, err), nil
	}
	return mcp.NewToolResultText(clause), nil
}

func (t tools) askQuestion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := req.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := t.svc.Questions.Answer(ctx, question, req.GetString("contextId", ""))
	if err != nil {
		return toolError(ToolAskQuestion, err), nil
	}
	payload, err := json.Marshal(map[string]any{
		"answer":  result.Text,
		"sources": result.Sources,
	})
	if err != nil {
		return toolError(ToolAskQuestion, err), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// toolError reports the caller-facing message; the cause only goes to the log.
func toolError(tool string, err error) *mcp.CallToolResult {
	pe := usecase.Classify(err)
	slog.Warn("mcp_tool_failed", "tool", tool, "kind", string(pe.Kind), "error", err.Error())
	return mcp.NewToolResultError(pe.Message)
}
