package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
)

type catalogFake struct {
	templates []domain.Template
}

func (c catalogFake) List() []domain.Template { return c.templates }

func (c catalogFake) Get(id string) (domain.Template, bool) {
	for _, tpl := range c.templates {
		if tpl.ID == id {
			return tpl, true
		}
	}
	return domain.Template{}, false
}

type drafterFake struct {
	requests []domain.ClauseRequest
	clause   string
	err      error
}

func (d *drafterFake) DraftClause(_ context.Context, req domain.ClauseRequest) (string, error) {
	d.requests = append(d.requests, req)
	return d.clause, d.err
}

func rentalTemplate() domain.Template {
	return domain.Template{
		ID:   "rental-agreement",
		Name: domain.LocalizedText{Hindi: "किराया समझौता", English: "Rental Agreement"},
		Body: domain.LocalizedText{
			Hindi:   "किरायेदार: [tenantName]\nशर्तें: [additionalTerms]",
			English: "Tenant: [tenantName]\nTerms: [additionalTerms]",
		},
		Variables: []domain.TemplateVariable{
			{Key: "tenantName", Type: "text"},
			{Key: "additionalTerms", Type: "textarea", AIAssist: true},
		},
	}
}

func TestRenderTemplateFillsAndDrafts(t *testing.T) {
	drafter := &drafterFake{clause: "No pets are allowed."}
	uc := NewTemplateUseCase(catalogFake{templates: []domain.Template{rentalTemplate()}}, drafter)

	got, err := uc.Render(context.Background(), "rental-agreement", domain.LanguageEnglish,
		map[string]string{"tenantName": "Asha"},
		map[string]string{"additionalTerms": "no pets"},
	)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got.Content != "Tenant: Asha\nTerms: No pets are allowed." {
		t.Fatalf("unexpected content %q", got.Content)
	}
	if len(drafter.requests) != 1 || drafter.requests[0].TemplateContext != "Rental Agreement" {
		t.Fatalf("unexpected draft requests %+v", drafter.requests)
	}
	if got.Drafted["additionalTerms"] != "No pets are allowed." {
		t.Fatalf("expected drafted value to be reported")
	}
}

func TestRenderTemplateReportsMissing(t *testing.T) {
	uc := NewTemplateUseCase(catalogFake{templates: []domain.Template{rentalTemplate()}}, &drafterFake{})

	got, err := uc.Render(context.Background(), "rental-agreement", domain.LanguageHindi, nil, nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got.Content != "किरायेदार: [tenantName]\nशर्तें: [additionalTerms]" {
		t.Fatalf("unexpected content %q", got.Content)
	}
	if len(got.Missing) != 2 {
		t.Fatalf("expected 2 missing variables, got %v", got.Missing)
	}
}

func TestRenderTemplateErrors(t *testing.T) {
	uc := NewTemplateUseCase(catalogFake{templates: []domain.Template{rentalTemplate()}}, &drafterFake{})

	if _, err := uc.Render(context.Background(), "lease", domain.LanguageEnglish, nil, nil); !errors.Is(err, domain.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
	if _, err := uc.Render(context.Background(), "rental-agreement", "tamil", nil, nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for language, got %v", err)
	}
	_, err := uc.Render(context.Background(), "rental-agreement", domain.LanguageEnglish, nil, map[string]string{"tenantName": "x"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for non-assisted variable, got %v", err)
	}
	_, err = uc.Render(context.Background(), "rental-agreement", domain.LanguageEnglish, map[string]string{"pets": "no"}, nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown variable, got %v", err)
	}
}
