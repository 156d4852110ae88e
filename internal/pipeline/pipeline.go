// Package pipeline runs one content cycle: pick a topic, write a post,
// attach an image, resolve taxonomy, publish, then record the result.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spacesedan/postsmith/internal/metrics"
	"github.com/spacesedan/postsmith/internal/models"
	"github.com/spacesedan/postsmith/internal/publisher"
	"github.com/spacesedan/postsmith/internal/utils"
)

type TopicSource interface {
	NextTopic(ctx context.Context) (models.Topic, error)
}

type PostGenerator interface {
	GeneratePost(ctx context.Context, topic models.Topic) (models.GeneratedPost, error)
}

type ImageProducer interface {
	ProduceAndUploadImage(ctx context.Context, topic models.Topic) *models.MediaAsset
}

type TaxonomyResolver interface {
	ResolveCategory(ctx context.Context, slug string) (int, bool)
	ResolveTags(ctx context.Context, slugs []string) []int
}

type PostPublisher interface {
	Publish(ctx context.Context, sub publisher.Submission) (publisher.Result, error)
}

type Recorder interface {
	Record(ctx context.Context, post models.PublishedPost) error
}

type EventNotifier interface {
	PublishPostEvent(event models.PostEvent) error
}

type ProcessedMarker interface {
	MarkProcessed(ctx context.Context, key string) error
}

// Deps holds the stages. Media, Ledger, Events and Processed are optional.
type Deps struct {
	Topics    TopicSource
	Generator PostGenerator
	Media     ImageProducer
	Taxonomy  TaxonomyResolver
	Publisher PostPublisher
	Ledger    Recorder
	Events    EventNotifier
	Processed ProcessedMarker
}

type Options struct {
	// TopicCategory overrides the category slug. When empty, news topics use
	// NewsCategory and everything else the slug of the topic name.
	TopicCategory   string
	NewsCategory    string
	ReleaseCategory string
	Tags            []string
	RunTimeout      time.Duration
	NewRunID        func() string
	Now             func() time.Time
}

// Outcome describes a finished run. Skipped runs are not errors.
type Outcome struct {
	RunID     string
	Topic     models.Topic
	Published bool
	Skipped   bool
	Reason    string
	Post      models.PublishedPost
}

type Pipeline struct {
	deps Deps
	opts Options
}

func New(deps Deps, opts Options) *Pipeline {
	if opts.NewRunID == nil {
		opts.NewRunID = uuid.NewString
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{deps: deps, opts: opts}
}

// RunOnce executes a full cycle bounded by RunTimeout.
func (p *Pipeline) RunOnce(ctx context.Context) (Outcome, error) {
	if p.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.RunTimeout)
		defer cancel()
	}

	out := Outcome{RunID: p.opts.NewRunID()}
	log := slog.With(slog.String("runID", out.RunID))
	log.Info("[Pipeline] Starting run")

	topic, err := p.deps.Topics.NextTopic(ctx)
	if err != nil {
		log.Error("[Pipeline] Failed to select topic", slog.String("error", err.Error()))
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		return out, fmt.Errorf("select topic: %w", err)
	}
	out.Topic = topic
	log.Info("[Pipeline] Selected topic", slog.String("topic", topic.Name), slog.Bool("fromNews", topic.FromNews()))

	categorySlug := p.topicCategory(topic)
	topicCategoryID, topicOK := p.deps.Taxonomy.ResolveCategory(ctx, categorySlug)
	releaseCategoryID, releaseOK := p.deps.Taxonomy.ResolveCategory(ctx, p.opts.ReleaseCategory)
	if !topicOK || !releaseOK {
		reason := fmt.Sprintf("category %q or %q could not be resolved", categorySlug, p.opts.ReleaseCategory)
		log.Warn("[Pipeline] Run skipped", slog.String("reason", reason))
		metrics.RunsTotal.WithLabelValues("skipped").Inc()
		out.Skipped = true
		out.Reason = reason
		return out, nil
	}
	tagIDs := p.deps.Taxonomy.ResolveTags(ctx, p.opts.Tags)

	post, err := p.deps.Generator.GeneratePost(ctx, topic)
	if err != nil {
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		return out, err
	}

	var mediaID int
	if p.deps.Media != nil {
		if asset := p.deps.Media.ProduceAndUploadImage(ctx, topic); asset != nil {
			mediaID = asset.RemoteID
		}
	}

	res, err := p.deps.Publisher.Publish(ctx, publisher.Submission{
		Post:              post,
		TopicCategoryID:   topicCategoryID,
		ReleaseCategoryID: releaseCategoryID,
		TagIDs:            tagIDs,
		FeaturedMediaID:   mediaID,
	})
	if err != nil {
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		return out, err
	}
	if res.Skipped {
		log.Warn("[Pipeline] Run skipped", slog.String("reason", res.Reason))
		metrics.RunsTotal.WithLabelValues("skipped").Inc()
		out.Skipped = true
		out.Reason = res.Reason
		return out, nil
	}

	published := res.Post
	published.Topic = topic.Name
	if topic.Article != nil {
		published.ArticleURL = topic.Article.URL
	}
	out.Published = true
	out.Post = published

	p.afterPublish(ctx, log, out)

	source := "catalog"
	if topic.FromNews() {
		source = "news"
	}
	metrics.PostsPublished.WithLabelValues(string(published.Status), source).Inc()
	metrics.RunsTotal.WithLabelValues("published").Inc()
	log.Info("[Pipeline] Run complete", slog.Int("postID", published.ID), slog.String("link", published.Link))
	return out, nil
}

func (p *Pipeline) topicCategory(topic models.Topic) string {
	switch {
	case p.opts.TopicCategory != "":
		return p.opts.TopicCategory
	case topic.FromNews() && p.opts.NewsCategory != "":
		return p.opts.NewsCategory
	default:
		return utils.Slugify(topic.Name)
	}
}

// afterPublish runs the best-effort bookkeeping; failures are logged only.
func (p *Pipeline) afterPublish(ctx context.Context, log *slog.Logger, out Outcome) {
	if p.deps.Ledger != nil {
		if err := p.deps.Ledger.Record(ctx, out.Post); err != nil {
			log.Error("[Pipeline] Failed to record post in ledger", slog.String("error", err.Error()))
		}
	}

	if p.deps.Events != nil {
		event := models.PostEvent{
			EventID:    uuid.NewString(),
			RunID:      out.RunID,
			Type:       models.EventTypePostPublished,
			Post:       out.Post,
			OccurredAt: p.opts.Now().UTC(),
		}
		if err := p.deps.Events.PublishPostEvent(event); err != nil {
			log.Error("[Pipeline] Failed to emit post event", slog.String("error", err.Error()))
		}
	}

	if p.deps.Processed != nil && out.Post.ArticleURL != "" {
		if err := p.deps.Processed.MarkProcessed(ctx, out.Post.ArticleURL); err != nil {
			log.Error("[Pipeline] Failed to mark article processed", slog.String("error", err.Error()))
		}
	}
}
