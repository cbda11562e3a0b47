package policy

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"
)

type frontMatter struct {
	Title          string   `yaml:"title"`
	Version        string   `yaml:"version"`
	Classification string   `yaml:"classification"`
	Owner          string   `yaml:"owner"`
	Date           string   `yaml:"date"`
	NextReview     string   `yaml:"next_review"`
	Template       string   `yaml:"template"`
	Frameworks     []string `yaml:"frameworks"`
	Controls       []string `yaml:"controls"`
	GenerationID   string   `yaml:"generation_id"`
}

func withFrontMatter(fm frontMatter, body string) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return "---\n" + buf.String() + "---\n\n" + body, nil
}

// SplitFrontMatter separates a leading YAML front matter block from the
// document body. Documents without one return a nil map.
func SplitFrontMatter(doc string) (map[string]any, string, error) {
	if !strings.HasPrefix(doc, "---\n") {
		return nil, doc, nil
	}
	rest := doc[len("---\n"):]
	end := strings.Index(rest, "\n---\n")
	if end < 0 {
		return nil, doc, nil
	}
	meta := map[string]any{}
	if err := yaml.Unmarshal([]byte(rest[:end+1]), &meta); err != nil {
		return nil, doc, err
	}
	return meta, strings.TrimPrefix(rest[end+len("\n---\n"):], "\n"), nil
}
