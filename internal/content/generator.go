// Package content asks a chat model for blog posts and parses the reply.
package content

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spacesedan/postsmith/internal/models"
)

const systemPersona = "You are a helpful writing assistant."

// Completer is the chat-completion backend.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type Generator struct {
	llm Completer
}

func NewGenerator(llm Completer) *Generator {
	return &Generator{llm: llm}
}

// GeneratePost makes exactly one backend call. Any failure comes back as a
// *models.GenerationError.
func (g *Generator) GeneratePost(ctx context.Context, topic models.Topic) (models.GeneratedPost, error) {
	subject := topic.Subject()
	slog.Info("[ContentGenerator] Generating a post", slog.String("subject", subject))

	raw, err := g.llm.Complete(ctx, systemPersona, UserPrompt(topic))
	if err != nil {
		slog.Error("[ContentGenerator] Failed to generate post", slog.String("error", err.Error()))
		return models.GeneratedPost{}, &models.GenerationError{Subject: subject, Err: err}
	}
	if raw == "" {
		return models.GeneratedPost{}, &models.GenerationError{Subject: subject, Err: models.ErrEmptyResult}
	}

	fallback := topic.Name
	if topic.Article != nil && topic.Article.Title != "" {
		fallback = topic.Article.Title
	}
	post := ParsePost(raw, fallback)

	slog.Info("[ContentGenerator] Generated Post", slog.String("title", post.Title))
	slog.Debug("[ContentGenerator] Content", slog.String("body", post.Body))
	return post, nil
}

// UserPrompt builds the instruction for topic: catalog topics get the
// structured article brief, news topics the article write-up brief.
func UserPrompt(topic models.Topic) string {
	if topic.FromNews() {
		return fmt.Sprintf(
			"Create a unique and engaging post about this article, %s with a title and content. "+
				"The title should be catchy, between 8-12 words, and suitable for a blog post. "+
				"The content should be under 500 words and include relevant hashtags, SEO keywords, and emojis. "+
				"Do not include the word 'Title' in the title.",
			topic.Subject())
	}
	return fmt.Sprintf(
		"Create an engaging post on %s with a title and content. "+
			"The title should be catchy, between 8-12 words, and suitable for a blog post. "+
			"The content should have a professional yet conversational tone to keep readers engaged. "+
			"The content should be structured, using subheadings, bullet points, and short paragraphs for readability. "+
			"The content should have citations links to credible sources when referencing data and news. "+
			"The content should be under 500 words and include relevant hashtags and SEO keywords. "+
			"Don't include the word Title in the title.",
		topic.Name)
}
