package domain

type LocalizedText struct {
	Hindi   string `json:"hindi"`
	English string `json:"english"`
}

func (t LocalizedText) In(lang Language) string {
	if lang == LanguageHindi {
		return t.Hindi
	}
	return t.English
}

type TemplateVariable struct {
	Key      string        `json:"key"`
	Label    LocalizedText `json:"label"`
	Type     string        `json:"type"`
	AIAssist bool          `json:"ai_assist,omitempty"`
}

type Template struct {
	ID          string             `json:"id"`
	Name        LocalizedText      `json:"name"`
	Description LocalizedText      `json:"description"`
	Body        LocalizedText      `json:"-"`
	Variables   []TemplateVariable `json:"variables"`
}

type RenderedTemplate struct {
	TemplateID string            `json:"template_id"`
	Language   Language          `json:"language"`
	Content    string            `json:"content"`
	Drafted    map[string]string `json:"drafted,omitempty"`
	Missing    []string          `json:"missing,omitempty"`
}

type Comparison struct {
	Left    string   `json:"left"`
	Right   string   `json:"right"`
	Lines   []string `json:"comparison_lines"`
	Changes int      `json:"changes"`
}
