package models

import "time"

type PublishStatus string

const (
	StatusDraft   PublishStatus = "draft"
	StatusPublish PublishStatus = "publish"
)

// Valid reports whether WordPress accepts the status for new posts here.
func (s PublishStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublish
}

// GeneratedPost is a parsed language-model response.
type GeneratedPost struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// PostPayload is the JSON body sent to POST /posts. FeaturedMedia is
// omitted when zero so posts without an image carry no featured_media key.
type PostPayload struct {
	Title         string        `json:"title"`
	Content       string        `json:"content"`
	Status        PublishStatus `json:"status"`
	Categories    []int         `json:"categories"`
	Tags          []int         `json:"tags"`
	FeaturedMedia int           `json:"featured_media,omitempty"`
}

// TaxonomyTerm is a WordPress category or tag.
type TaxonomyTerm struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// PublishedPost is what we keep about a post after a 201 from /posts.
type PublishedPost struct {
	ID          int           `json:"id" dynamodbav:"post_id"`
	Link        string        `json:"link" dynamodbav:"link"`
	Title       string        `json:"title" dynamodbav:"title"`
	Status      PublishStatus `json:"status" dynamodbav:"status"`
	Topic       string        `json:"topic" dynamodbav:"topic"`
	ArticleURL  string        `json:"article_url,omitempty" dynamodbav:"article_url,omitempty"`
	MediaID     int           `json:"media_id,omitempty" dynamodbav:"media_id,omitempty"`
	PublishedAt time.Time     `json:"published_at" dynamodbav:"published_at"`
}

// EventTypePostPublished is the PostEvent type for a created post.
const EventTypePostPublished = "post.published"

// PostEvent is emitted after a post is created.
type PostEvent struct {
	EventID    string        `json:"event_id"`
	RunID      string        `json:"run_id"`
	Type       string        `json:"type"`
	Post       PublishedPost `json:"post"`
	OccurredAt time.Time     `json:"occurred_at"`
}
