package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
	"github.com/kirillkom/legal-doc-assistant/internal/core/ports"
)

// TemplateUseCase fills catalog templates, drafting AI-assisted variables
// through the clause generator.
type TemplateUseCase struct {
	catalog ports.TemplateCatalog
	drafter ports.ClauseDrafter
}

func NewTemplateUseCase(catalog ports.TemplateCatalog, drafter ports.ClauseDrafter) *TemplateUseCase {
	return &TemplateUseCase{catalog: catalog, drafter: drafter}
}

func (uc *TemplateUseCase) List(_ context.Context) []domain.Template {
	return uc.catalog.List()
}

func (uc *TemplateUseCase) Get(_ context.Context, id string) (domain.Template, error) {
	tpl, ok := uc.catalog.Get(id)
	if !ok {
		return domain.Template{}, fmt.Errorf("template %q: %w", id, domain.ErrTemplateNotFound)
	}
	return tpl, nil
}

// Render replaces [key] placeholders in the localized body. assist maps a
// variable key to a plain-language requirement; those variables are drafted
// before substitution. Placeholders without a value are kept and reported.
func (uc *TemplateUseCase) Render(
	ctx context.Context,
	id string,
	lang domain.Language,
	values map[string]string,
	assist map[string]string,
) (*domain.RenderedTemplate, error) {
	tpl, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	lang, err = domain.ParseLanguage(string(lang))
	if err != nil {
		return nil, err
	}

	variables := make(map[string]domain.TemplateVariable, len(tpl.Variables))
	for _, v := range tpl.Variables {
		variables[v.Key] = v
	}

	filled := make(map[string]string, len(values)+len(assist))
	for key, value := range values {
		if _, ok := variables[key]; !ok {
			return nil, domain.WrapError(domain.ErrInvalidInput, "render template", fmt.Errorf("unknown variable %q", key))
		}
		filled[key] = strings.TrimSpace(value)
	}

	drafted := make(map[string]string)
	for _, key := range sortedKeys(assist) {
		variable, ok := variables[key]
		if !ok || !variable.AIAssist {
			return nil, domain.WrapError(domain.ErrInvalidInput, "render template", fmt.Errorf("variable %q does not support drafting", key))
		}
		clause, err := uc.drafter.DraftClause(ctx, domain.ClauseRequest{
			UserInput:       assist[key],
			TemplateContext: tpl.Name.In(lang),
			TargetLanguage:  lang,
		})
		if err != nil {
			return nil, fmt.Errorf("draft %s: %w", key, err)
		}
		filled[key] = clause
		drafted[key] = clause
	}

	content := tpl.Body.In(lang)
	var missing []string
	for _, v := range tpl.Variables {
		placeholder := "[" + v.Key + "]"
		value := filled[v.Key]
		if value == "" {
			if strings.Contains(content, placeholder) {
				missing = append(missing, v.Key)
			}
			continue
		}
		content = strings.ReplaceAll(content, placeholder, value)
	}

	rendered := &domain.RenderedTemplate{
		TemplateID: tpl.ID,
		Language:   lang,
		Content:    content,
		Missing:    missing,
	}
	if len(drafted) > 0 {
		rendered.Drafted = drafted
	}
	return rendered, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
