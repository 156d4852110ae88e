package topics

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/spacesedan/postsmith/internal/models"
)

// fixedPicker always returns the same index, clamped to n.
type fixedPicker struct{ index int }

func (f fixedPicker) IntN(n int) int {
	if f.index >= n {
		return n - 1
	}
	return f.index
}

type mockNews struct {
	articles  []models.NewsArticle
	err       error
	callCount int
	lastTopic string
}

func (m *mockNews) GetArticles(ctx context.Context, topic string, maxCount int) ([]models.NewsArticle, error) {
	m.callCount++
	m.lastTopic = topic
	if m.err != nil {
		return nil, m.err
	}
	if len(m.articles) > maxCount {
		return m.articles[:maxCount], nil
	}
	return m.articles, nil
}

type processedSet map[string]bool

func (p processedSet) IsProcessed(ctx context.Context, key string) bool { return p[key] }

func TestCatalogSource_ReturnsMember(t *testing.T) {
	catalog := []string{"art", "tech", "entrepreneurship", "Stable Diffusion"}
	src, err := NewCatalogSource(catalog, rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		t.Fatalf("NewCatalogSource() error = %v", err)
	}

	for i := 0; i < 200; i++ {
		topic, err := src.NextTopic(context.Background())
		if err != nil {
			t.Fatalf("NextTopic() error = %v", err)
		}
		if topic.Name == "" {
			t.Fatal("NextTopic() returned an empty topic")
		}
		if !slices.Contains(catalog, topic.Name) {
			t.Fatalf("NextTopic() = %q, not in catalog", topic.Name)
		}
		if topic.FromNews() {
			t.Fatal("catalog topic should not carry an article")
		}
	}
}

func TestCatalogSource_SeededIsDeterministic(t *testing.T) {
	catalog := []string{"a", "b", "c", "d", "e"}
	first, _ := NewCatalogSource(catalog, rand.New(rand.NewPCG(7, 7)))
	second, _ := NewCatalogSource(catalog, rand.New(rand.NewPCG(7, 7)))

	for i := 0; i < 20; i++ {
		a, _ := first.NextTopic(context.Background())
		b, _ := second.NextTopic(context.Background())
		if a.Name != b.Name {
			t.Fatalf("draw %d differs: %q vs %q", i, a.Name, b.Name)
		}
	}
}

func TestCatalogSource_EmptyCatalog(t *testing.T) {
	if _, err := NewCatalogSource(nil, fixedPicker{}); err == nil {
		t.Fatal("expected error for empty catalog")
	}
}

func TestNewsSource_PicksArticle(t *testing.T) {
	news := &mockNews{articles: []models.NewsArticle{
		{Title: "First", URL: "https://example.com/1"},
		{Title: "Second", URL: "https://example.com/2"},
		{Title: "Third", URL: "https://example.com/3"},
	}}
	src, err := NewNewsSource([]string{"tech"}, news, fixedPicker{index: 1}, NewsOptions{MaxCount: 15, MinSentiment: -1})
	if err != nil {
		t.Fatalf("NewNewsSource() error = %v", err)
	}

	topic, err := src.NextTopic(context.Background())
	if err != nil {
		t.Fatalf("NextTopic() error = %v", err)
	}
	if topic.Name != "tech" {
		t.Errorf("topic.Name = %q, want tech", topic.Name)
	}
	if topic.Article == nil || topic.Article.Title != "Second" {
		t.Errorf("topic.Article = %+v, want Second", topic.Article)
	}
	if news.lastTopic != "tech" {
		t.Errorf("news queried with %q, want tech", news.lastTopic)
	}
}

func TestNewsSource_NoArticles(t *testing.T) {
	src, _ := NewNewsSource([]string{"tech"}, &mockNews{}, fixedPicker{}, NewsOptions{MinSentiment: -1})

	_, err := src.NextTopic(context.Background())
	if !errors.Is(err, models.ErrNoArticlesAvailable) {
		t.Fatalf("NextTopic() error = %v, want ErrNoArticlesAvailable", err)
	}
}

func TestNewsSource_BackendFailure(t *testing.T) {
	backendErr := errors.New("boom")
	src, _ := NewNewsSource([]string{"tech"}, &mockNews{err: backendErr}, fixedPicker{}, NewsOptions{MinSentiment: -1})

	_, err := src.NextTopic(context.Background())
	if !errors.Is(err, backendErr) {
		t.Fatalf("NextTopic() error = %v, want wrapped backend error", err)
	}
}

func TestNewsSource_SkipsProcessedArticles(t *testing.T) {
	news := &mockNews{articles: []models.NewsArticle{
		{Title: "Old", URL: "https://example.com/old"},
		{Title: "New", URL: "https://example.com/new"},
	}}
	src, _ := NewNewsSource([]string{"tech"}, news, fixedPicker{index: 0}, NewsOptions{
		MinSentiment: -1,
		Processed:    processedSet{"https://example.com/old": true},
	})

	topic, err := src.NextTopic(context.Background())
	if err != nil {
		t.Fatalf("NextTopic() error = %v", err)
	}
	if topic.Article.Title != "New" {
		t.Errorf("picked %q, want New", topic.Article.Title)
	}
}

func TestNewsSource_AllFilteredIsNoArticles(t *testing.T) {
	news := &mockNews{articles: []models.NewsArticle{
		{Title: "Terrible disaster kills many", Description: "Horrible tragic awful crash"},
	}}
	src, _ := NewNewsSource([]string{"tech"}, news, fixedPicker{}, NewsOptions{MinSentiment: 0})

	_, err := src.NextTopic(context.Background())
	if !errors.Is(err, models.ErrNoArticlesAvailable) {
		t.Fatalf("NextTopic() error = %v, want ErrNoArticlesAvailable", err)
	}
}
