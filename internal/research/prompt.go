package research

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompt.yaml
var promptYAML []byte

// PromptData holds the variables available in the research prompt template.
type PromptData struct {
	URL         string
	Title       string
	Description string
}

type promptFile struct {
	Temperature *float64 `yaml:"temperature"`
	System      string  `yaml:"system"`
	User        string  `yaml:"user"`
}

// researchPrompt is the compiled research prompt.
type researchPrompt struct {
	temperature *float64
	system      string
	user        *template.Template
}

// loadPrompt parses a YAML prompt document. An empty src selects the
// embedded default.
func loadPrompt(src []byte) (*researchPrompt, error) {
	if len(src) == 0 {
		src = promptYAML
	}
	var f promptFile
	if err := yaml.Unmarshal(src, &f); err != nil {
		return nil, fmt.Errorf("parse research prompt: %w", err)
	}
	if f.System == "" || f.User == "" {
		return nil, fmt.Errorf("research prompt needs both system and user sections")
	}
	tmpl, err := template.New("research").Option("missingkey=error").Parse(f.User)
	if err != nil {
		return nil, fmt.Errorf("parse research prompt template: %w", err)
	}
	return &researchPrompt{temperature: f.Temperature, system: f.System, user: tmpl}, nil
}

func (p *researchPrompt) render(data PromptData) (string, error) {
	var buf bytes.Buffer
	if err := p.user.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
