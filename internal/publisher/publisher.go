// Package publisher submits generated posts to WordPress.
package publisher

import (
	"context"
	"log/slog"
	"time"

	"github.com/spacesedan/postsmith/internal/clients"
	"github.com/spacesedan/postsmith/internal/models"
)

type PostCreator interface {
	CreatePost(ctx context.Context, payload models.PostPayload) (clients.WordPressPost, error)
}

// Submission is everything needed for one POST /posts. Zero ids mean
// unresolved.
type Submission struct {
	Post              models.GeneratedPost
	TopicCategoryID   int
	ReleaseCategoryID int
	TagIDs            []int
	FeaturedMediaID   int
}

type Result struct {
	Skipped bool
	Reason  string
	Post    models.PublishedPost
}

type Options struct {
	Status         models.PublishStatus
	RenderMarkdown bool
	// Render converts the markdown body to HTML when RenderMarkdown is set.
	Render func(string) string
	Now    func() time.Time
}

type Publisher struct {
	wp   PostCreator
	opts Options
}

func NewPublisher(wp PostCreator, opts Options) *Publisher {
	if !opts.Status.Valid() {
		opts.Status = models.StatusDraft
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Publisher{wp: wp, opts: opts}
}

// Publish creates the post unless either category is unresolved, in which
// case nothing is sent and the result is marked skipped. Rejections and
// transport failures come back as *models.PublishError; there is no retry.
func (p *Publisher) Publish(ctx context.Context, sub Submission) (Result, error) {
	if sub.TopicCategoryID == 0 || sub.ReleaseCategoryID == 0 {
		reason := "topic category or release category could not be resolved"
		slog.Warn("[Publisher] Skipping post", slog.String("title", sub.Post.Title), slog.String("reason", reason))
		return Result{Skipped: true, Reason: reason}, nil
	}

	payload := p.Payload(sub)

	slog.Info("[Publisher] Publishing post",
		slog.String("title", payload.Title),
		slog.String("status", string(payload.Status)),
		slog.Int("featuredMedia", payload.FeaturedMedia))

	created, err := p.wp.CreatePost(ctx, payload)
	if err != nil {
		slog.Error("[Publisher] Failed to publish post",
			slog.String("title", payload.Title),
			slog.String("error", err.Error()))
		return Result{}, &models.PublishError{Title: payload.Title, Err: err}
	}

	slog.Info("[Publisher] Post published",
		slog.Int("postID", created.ID),
		slog.String("link", created.Link))

	status := models.PublishStatus(created.Status)
	if !status.Valid() {
		status = payload.Status
	}
	return Result{Post: models.PublishedPost{
		ID:          created.ID,
		Link:        created.Link,
		Title:       payload.Title,
		Status:      status,
		MediaID:     payload.FeaturedMedia,
		PublishedAt: p.opts.Now().UTC(),
	}}, nil
}

// Payload builds the /posts body for sub.
func (p *Publisher) Payload(sub Submission) models.PostPayload {
	content := sub.Post.Body
	if p.opts.RenderMarkdown && p.opts.Render != nil {
		content = p.opts.Render(content)
	}
	tags := sub.TagIDs
	if tags == nil {
		tags = []int{}
	}
	return models.PostPayload{
		Title:         sub.Post.Title,
		Content:       content,
		Status:        p.opts.Status,
		Categories:    []int{sub.TopicCategoryID, sub.ReleaseCategoryID},
		Tags:          tags,
		FeaturedMedia: sub.FeaturedMediaID,
	}
}
