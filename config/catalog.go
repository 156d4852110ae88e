package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog holds the hand-authored tables: topics, queries, taxonomy slugs
// and image prompts.
type Catalog struct {
	Topics              []string          `yaml:"topics"`
	NewsQueries         []string          `yaml:"news_queries"`
	TopicCategory       string            `yaml:"topic_category"`
	NewsCategory        string            `yaml:"news_category"`
	ReleaseCategory     string            `yaml:"release_category"`
	Tags                []string          `yaml:"tags"`
	ImagePrompts        map[string]string `yaml:"image_prompts"`
	FallbackImagePrompt string            `yaml:"fallback_image_prompt"`
}

// LoadCatalog reads the catalog at path, or the embedded default when path
// is empty.
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("[Config] read catalog %s: %w", path, err)
		}
		data = b
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("[Config] parse catalog: %w", err)
	}
	c.Topics = compact(c.Topics)
	c.NewsQueries = compact(c.NewsQueries)
	c.Tags = compact(c.Tags)

	if len(c.Topics) == 0 {
		return nil, fmt.Errorf("[Config] catalog has no topics")
	}
	if len(c.NewsQueries) == 0 {
		c.NewsQueries = c.Topics
	}
	if c.NewsCategory == "" {
		c.NewsCategory = "blog"
	}
	if c.ReleaseCategory == "" {
		c.ReleaseCategory = "just-release"
	}
	return &c, nil
}

func compact(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
