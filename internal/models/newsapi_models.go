package models

import "time"

// NewsAPIEverythingResponse is the body returned by NewsAPI's /v2/everything.
type NewsAPIEverythingResponse struct {
	Status       string           `json:"status"`
	TotalResults int              `json:"totalResults"`
	Articles     []NewsAPIArticle `json:"articles"`
	Code         string           `json:"code,omitempty"`
	Message      string           `json:"message,omitempty"`
}

type NewsAPIArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string    `json:"author"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	URLToImage  string    `json:"urlToImage"`
	PublishedAt time.Time `json:"publishedAt"`
	Content     string    `json:"content"`
}

// NewsArticle is the provider-neutral article the pipeline works with.
// It is never mutated once fetched, apart from the sentiment annotation
// applied by the topic source before selection.
type NewsArticle struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
	ImageURL    string    `json:"image_url,omitempty"`
	Description string    `json:"description,omitempty"`
	Source      string    `json:"source,omitempty"`
	Sentiment   float64   `json:"sentiment,omitempty"`
}

// FromNewsAPI normalizes a NewsAPI article.
func FromNewsAPI(a NewsAPIArticle) NewsArticle {
	return NewsArticle{
		Title:       a.Title,
		URL:         a.URL,
		PublishedAt: a.PublishedAt,
		ImageURL:    a.URLToImage,
		Description: a.Description,
		Source:      a.Source.Name,
	}
}
