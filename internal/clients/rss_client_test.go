package clients

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spacesedan/postsmith/internal/models"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Search results</title>
    <item>
      <title>Robots learn to paint</title>
      <link>https://news.example/robots</link>
      <description>&lt;a href="https://news.example/robots"&gt;Robots&lt;/a&gt; learn to paint</description>
      <pubDate>Sun, 01 Feb 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>No link here</title>
    </item>
  </channel>
</rss>`

func TestRSSClient_Search(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = io.WriteString(w, feedXML)
	}))
	defer srv.Close()

	c := NewRSSClient(srv.URL+"/rss?q=%s&hl=en", 5*time.Second)
	articles, err := c.Search(context.Background(), "ai art")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if gotQuery != "ai art" {
		t.Errorf("query = %q", gotQuery)
	}
	if len(articles) != 1 {
		t.Fatalf("got %d articles, want 1 (items without links dropped)", len(articles))
	}
	a := articles[0]
	if a.Title != "Robots learn to paint" || a.URL != "https://news.example/robots" || a.Source != "Search results" {
		t.Errorf("article = %+v", a)
	}
	if a.Description != "Robots learn to paint" {
		t.Errorf("Description = %q", a.Description)
	}
	if a.PublishedAt.IsZero() {
		t.Error("PublishedAt not parsed")
	}
}

func TestRSSClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewRSSClient(srv.URL+"?q=%s", 5*time.Second).Search(context.Background(), "tech")
	var rejected *models.BackendRejectedError
	if !errors.As(err, &rejected) || rejected.StatusCode != http.StatusForbidden {
		t.Errorf("error = %v, want 403 rejection", err)
	}
}

func TestRSSClient_Unreachable(t *testing.T) {
	_, err := NewRSSClient("http://127.0.0.1:1/?q=%s", time.Second).Search(context.Background(), "tech")
	if !errors.Is(err, models.ErrBackendUnavailable) {
		t.Errorf("error = %v, want ErrBackendUnavailable", err)
	}
}
