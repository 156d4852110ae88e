// Package prompts maps topics to image-generation prompts.
package prompts

import (
	"strings"
)

const defaultFallback = "An imaginative and thought-provoking image capturing the essence of %s " +
	"with attention to details and aesthetics. Vivid colors and a combination of realistic " +
	"and surreal elements to convey depth and inspiration."

// Builder looks topics up case-insensitively; keys and topics are
// lower-cased and trimmed before comparison.
type Builder struct {
	prompts  map[string]string
	fallback string
}

// NewBuilder copies table. fallback must contain one %s, replaced literally
// by the topic; otherwise the built-in sentence is used.
func NewBuilder(table map[string]string, fallback string) *Builder {
	prompts := make(map[string]string, len(table))
	for k, v := range table {
		prompts[normalize(k)] = strings.TrimSpace(v)
	}
	fallback = strings.TrimSpace(fallback)
	if strings.Count(fallback, "%s") != 1 {
		fallback = defaultFallback
	}
	return &Builder{prompts: prompts, fallback: fallback}
}

func (b *Builder) Build(topic string) string {
	if p, ok := b.prompts[normalize(topic)]; ok && p != "" {
		return p
	}
	name := strings.TrimSpace(topic)
	if name == "" {
		name = "the topic"
	}
	return strings.Replace(b.fallback, "%s", name, 1)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
