package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spacesedan/postsmith/internal/clients"
	"github.com/spacesedan/postsmith/internal/models"
)

type wpServer struct {
	status    int
	postCalls int
	lastBody  map[string]any
}

func (s *wpServer) start(t *testing.T) *clients.WordPressClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/posts" {
			http.NotFound(w, r)
			return
		}
		s.postCalls++
		raw, _ := io.ReadAll(r.Body)
		s.lastBody = map[string]any{}
		_ = json.Unmarshal(raw, &s.lastBody)

		w.WriteHeader(s.status)
		if s.status == http.StatusCreated {
			_, _ = io.WriteString(w, `{"id":901,"link":"https://blog.example/?p=901","status":"draft"}`)
			return
		}
		_, _ = io.WriteString(w, `{"code":"rest_cannot_create"}`)
	}))
	t.Cleanup(srv.Close)
	return clients.NewWordPressClient(srv.URL, "bot", "secret", "", 5*time.Second)
}

var post = models.GeneratedPost{Title: "Neon Labs", Body: "Some **bold** text"}

func TestPublish_Created(t *testing.T) {
	s := &wpServer{status: http.StatusCreated}
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := NewPublisher(s.start(t), Options{Status: models.StatusDraft, Now: func() time.Time { return fixed }})

	res, err := p.Publish(context.Background(), Submission{
		Post: post, TopicCategoryID: 12, ReleaseCategoryID: 3, TagIDs: []int{7, 8}, FeaturedMediaID: 55,
	})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if res.Skipped {
		t.Fatal("unexpected skip")
	}
	want := models.PublishedPost{
		ID: 901, Link: "https://blog.example/?p=901", Title: "Neon Labs",
		Status: models.StatusDraft, MediaID: 55, PublishedAt: fixed,
	}
	if res.Post != want {
		t.Errorf("Post = %+v, want %+v", res.Post, want)
	}
	if s.lastBody["featured_media"] != float64(55) {
		t.Errorf("featured_media = %v", s.lastBody["featured_media"])
	}
	if !reflect.DeepEqual(s.lastBody["categories"], []any{float64(12), float64(3)}) {
		t.Errorf("categories = %v", s.lastBody["categories"])
	}
	if s.lastBody["content"] != "Some **bold** text" {
		t.Errorf("content = %v", s.lastBody["content"])
	}
}

func TestPublish_OmitsAbsentFeaturedMedia(t *testing.T) {
	s := &wpServer{status: http.StatusCreated}
	p := NewPublisher(s.start(t), Options{})

	if _, err := p.Publish(context.Background(), Submission{Post: post, TopicCategoryID: 1, ReleaseCategoryID: 2}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if _, ok := s.lastBody["featured_media"]; ok {
		t.Errorf("featured_media present: %v", s.lastBody)
	}
	if tags, ok := s.lastBody["tags"].([]any); !ok || len(tags) != 0 {
		t.Errorf("tags = %#v, want empty list", s.lastBody["tags"])
	}
	if s.lastBody["status"] != "draft" {
		t.Errorf("status = %v, want draft default", s.lastBody["status"])
	}
}

func TestPublish_SkipsWithoutCategories(t *testing.T) {
	tests := []struct {
		name    string
		topic   int
		release int
	}{
		{"no topic category", 0, 3},
		{"no release category", 12, 0},
		{"neither", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &wpServer{status: http.StatusCreated}
			p := NewPublisher(s.start(t), Options{})

			res, err := p.Publish(context.Background(), Submission{Post: post, TopicCategoryID: tt.topic, ReleaseCategoryID: tt.release})
			if err != nil {
				t.Fatalf("Publish() error = %v", err)
			}
			if !res.Skipped || res.Reason == "" {
				t.Errorf("result = %+v, want skipped with reason", res)
			}
			if s.postCalls != 0 {
				t.Errorf("POST /posts called %d times, want 0", s.postCalls)
			}
		})
	}
}

func TestPublish_Rejected(t *testing.T) {
	s := &wpServer{status: http.StatusForbidden}
	p := NewPublisher(s.start(t), Options{Status: models.StatusPublish})

	_, err := p.Publish(context.Background(), Submission{Post: post, TopicCategoryID: 1, ReleaseCategoryID: 2})
	var pubErr *models.PublishError
	if !errors.As(err, &pubErr) {
		t.Fatalf("error = %v, want *PublishError", err)
	}
	var rejected *models.BackendRejectedError
	if !errors.As(err, &rejected) || rejected.StatusCode != http.StatusForbidden {
		t.Errorf("error does not carry the 403: %v", err)
	}
	if s.postCalls != 1 {
		t.Errorf("POST /posts called %d times, want exactly 1", s.postCalls)
	}
	if s.lastBody["status"] != "publish" {
		t.Errorf("status = %v", s.lastBody["status"])
	}
}

func TestPublish_TransportFailure(t *testing.T) {
	wp := clients.NewWordPressClient("http://127.0.0.1:1", "", "", "", time.Second)
	p := NewPublisher(wp, Options{})

	_, err := p.Publish(context.Background(), Submission{Post: post, TopicCategoryID: 1, ReleaseCategoryID: 2})
	if !errors.Is(err, models.ErrBackendUnavailable) {
		t.Fatalf("error = %v, want ErrBackendUnavailable", err)
	}
}

func TestPayload_RendersMarkdown(t *testing.T) {
	p := NewPublisher(nil, Options{RenderMarkdown: true, Render: strings.ToUpper})
	got := p.Payload(Submission{Post: post, TopicCategoryID: 1, ReleaseCategoryID: 2})
	if got.Content != "SOME **BOLD** TEXT" {
		t.Errorf("Content = %q", got.Content)
	}
}
