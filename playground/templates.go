package playground

import (
	_ "embed"
	"fmt"

	"github.com/FlorianRuen/devhub/model"
	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

// Catalogue is the ordered list of starter templates
type Catalogue struct {
	templates []model.Template
}

// LoadCatalogue parses the built-in template catalogue
func LoadCatalogue() (*Catalogue, error) {
	return ParseCatalogue(templatesYAML)
}

func ParseCatalogue(raw []byte) (*Catalogue, error) {
	var templates []model.Template
	if err := yaml.Unmarshal(raw, &templates); err != nil {
		return nil, fmt.Errorf("parsing template catalogue: %w", err)
	}

	seen := make(map[string]bool, len(templates))
	for _, t := range templates {
		if t.ID == "" {
			return nil, fmt.Errorf("template %q has no id", t.Name)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}
		seen[t.ID] = true
	}

	return &Catalogue{templates: templates}, nil
}

func (c *Catalogue) All() []model.Template {
	return append([]model.Template{}, c.templates...)
}

func (c *Catalogue) Get(id string) (model.Template, error) {
	for _, t := range c.templates {
		if t.ID == id {
			return t, nil
		}
	}

	return model.Template{}, fmt.Errorf("%w: %s", model.ErrTemplateNotFound, id)
}
