package models

import (
	"fmt"
	"strings"
)

// Topic is the subject a run writes about. Article is set only when the
// topic was derived from a fetched news item.
type Topic struct {
	Name    string       `json:"name"`
	Article *NewsArticle `json:"article,omitempty"`
}

// FromNews reports whether the topic came from the news source.
func (t Topic) FromNews() bool {
	return t.Article != nil
}

// Subject is the text handed to the language model.
func (t Topic) Subject() string {
	if t.Article == nil {
		return t.Name
	}
	parts := []string{t.Article.Title}
	if t.Article.Description != "" {
		parts = append(parts, t.Article.Description)
	}
	if t.Article.URL != "" {
		parts = append(parts, fmt.Sprintf("(source: %s)", t.Article.URL))
	}
	return strings.Join(parts, " ")
}
