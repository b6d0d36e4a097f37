package templates

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var builtin []byte

var allowedTypes = map[string]struct{}{
	"text":     {},
	"date":     {},
	"number":   {},
	"textarea": {},
}

type localized struct {
	Hindi   string `yaml:"hindi"`
	English string `yaml:"english"`
}

type variableDoc struct {
	Key      string    `yaml:"key"`
	Label    localized `yaml:"label"`
	Type     string    `yaml:"type"`
	AIAssist bool      `yaml:"ai_assist"`
}

type templateDoc struct {
	ID          string        `yaml:"id"`
	Name        localized     `yaml:"name"`
	Description localized     `yaml:"description"`
	Body        localized     `yaml:"body"`
	Variables   []variableDoc `yaml:"variables"`
}

type catalogDoc struct {
	Templates []templateDoc `yaml:"templates"`
}

// Catalog is an immutable, ordered set of templates.
type Catalog struct {
	order []string
	byID  map[string]domain.Template
}

// Builtin returns the catalog compiled into the binary.
func Builtin() (*Catalog, error) {
	return Parse(builtin)
}

// Load reads a catalog from path, falling back to the builtin one when path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Builtin()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrConfiguration, "read template catalog", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Catalog, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, domain.WrapError(domain.ErrConfiguration, "parse template catalog", err)
	}

	c := &Catalog{byID: make(map[string]domain.Template, len(doc.Templates))}
	for i, td := range doc.Templates {
		tpl, err := td.toDomain()
		if err != nil {
			return nil, domain.WrapError(domain.ErrConfiguration, fmt.Sprintf("template #%d", i), err)
		}
		if _, dup := c.byID[tpl.ID]; dup {
			return nil, domain.WrapError(domain.ErrConfiguration, "parse template catalog", fmt.Errorf("duplicate template id %q", tpl.ID))
		}
		c.byID[tpl.ID] = tpl
		c.order = append(c.order, tpl.ID)
	}
	return c, nil
}

func (c *Catalog) List() []domain.Template {
	out := make([]domain.Template, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

func (c *Catalog) Get(id string) (domain.Template, bool) {
	tpl, ok := c.byID[strings.TrimSpace(id)]
	return tpl, ok
}

func (td templateDoc) toDomain() (domain.Template, error) {
	id := strings.TrimSpace(td.ID)
	if id == "" {
		return domain.Template{}, fmt.Errorf("missing id")
	}
	if td.Body.Hindi == "" || td.Body.English == "" {
		return domain.Template{}, fmt.Errorf("template %q: body must exist in both languages", id)
	}

	tpl := domain.Template{
		ID:          id,
		Name:        domain.LocalizedText(td.Name),
		Description: domain.LocalizedText(td.Description),
		Body:        domain.LocalizedText(td.Body),
		Variables:   make([]domain.TemplateVariable, 0, len(td.Variables)),
	}
	seen := make(map[string]struct{}, len(td.Variables))
	for _, v := range td.Variables {
		key := strings.TrimSpace(v.Key)
		if key == "" {
			return domain.Template{}, fmt.Errorf("template %q: variable without key", id)
		}
		if _, dup := seen[key]; dup {
			return domain.Template{}, fmt.Errorf("template %q: duplicate variable %q", id, key)
		}
		seen[key] = struct{}{}
		typ := strings.TrimSpace(v.Type)
		if typ == "" {
			typ = "text"
		}
		if _, ok := allowedTypes[typ]; !ok {
			return domain.Template{}, fmt.Errorf("template %q: variable %q has unknown type %q", id, key, typ)
		}
		tpl.Variables = append(tpl.Variables, domain.TemplateVariable{
			Key:      key,
			Label:    domain.LocalizedText(v.Label),
			Type:     typ,
			AIAssist: v.AIAssist,
		})
	}
	return tpl, nil
}
