package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompt.yaml
var defaultPrompt []byte

// Prompt — политика запроса к модели: текст промпта, подписи прогресса и маркеры отказа.
type Prompt struct {
	Text           string   `yaml:"prompt"`
	Captions       []string `yaml:"captions"`
	RefusalMarkers []string `yaml:"refusal_markers"`
}

// LoadPrompt читает встроенную политику и накладывает поверх файл path, если он задан.
func LoadPrompt(path string) (*Prompt, error) {
	var p Prompt
	if err := yaml.Unmarshal(defaultPrompt, &p); err != nil {
		return nil, fmt.Errorf("embedded prompt: %w", err)
	}
	if path == "" {
		return &p, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt file: %w", err)
	}
	var override Prompt
	if err := yaml.Unmarshal(b, &override); err != nil {
		return nil, fmt.Errorf("bad prompt file %s: %w", path, err)
	}
	if strings.TrimSpace(override.Text) != "" {
		p.Text = override.Text
	}
	if len(override.Captions) > 0 {
		p.Captions = override.Captions
	}
	if len(override.RefusalMarkers) > 0 {
		p.RefusalMarkers = override.RefusalMarkers
	}
	return &p, nil
}
