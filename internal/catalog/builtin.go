package catalog

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed stories
var storiesFS embed.FS

type manifestEntry struct {
	ID       string   `yaml:"id"`
	Title    string   `yaml:"title"`
	Author   string   `yaml:"author"`
	File     string   `yaml:"file"`
	HTML     bool     `yaml:"html"`
	Keywords []string `yaml:"keywords"`
}

// Builtin returns the stories shipped with the binary, in catalog order.
func Builtin() ([]Story, error) {
	data, err := storiesFS.ReadFile("stories/catalog.yaml")
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var entries []manifestEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	stories := make([]Story, 0, len(entries))
	for _, e := range entries {
		content, err := storiesFS.ReadFile("stories/" + e.File)
		if err != nil {
			return nil, fmt.Errorf("read story %s: %w", e.ID, err)
		}
		stories = append(stories, Story{
			ID:       e.ID,
			Title:    e.Title,
			Author:   e.Author,
			Content:  string(content),
			IsHTML:   e.HTML,
			Keywords: e.Keywords,
		})
	}
	return stories, nil
}
