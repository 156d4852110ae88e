package content

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spacesedan/postsmith/internal/models"
)

type mockCompleter struct {
	response   string
	err        error
	callCount  int
	lastSystem string
	lastUser   string
}

func (m *mockCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.callCount++
	m.lastSystem = systemPrompt
	m.lastUser = userPrompt
	return m.response, m.err
}

func TestGeneratePost_Success(t *testing.T) {
	llm := &mockCompleter{response: "Title: Neon Labs of Tomorrow\nBody text #tech"}
	g := NewGenerator(llm)

	post, err := g.GeneratePost(context.Background(), models.Topic{Name: "tech"})
	if err != nil {
		t.Fatalf("GeneratePost() error = %v", err)
	}
	if post.Title != "Neon Labs of Tomorrow" || post.Body != "Body text #tech" {
		t.Errorf("post = %+v", post)
	}
	if llm.callCount != 1 {
		t.Errorf("backend called %d times, want 1", llm.callCount)
	}
	if llm.lastSystem != systemPersona {
		t.Errorf("system prompt = %q", llm.lastSystem)
	}
	if !strings.Contains(llm.lastUser, "tech") || !strings.Contains(llm.lastUser, "500 words") {
		t.Errorf("user prompt missing subject or word ceiling: %q", llm.lastUser)
	}
}

func TestGeneratePost_BackendError(t *testing.T) {
	cause := errors.New("connection reset")
	g := NewGenerator(&mockCompleter{err: cause})

	_, err := g.GeneratePost(context.Background(), models.Topic{Name: "tech"})
	var genErr *models.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error = %v, want *GenerationError", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("GenerationError does not wrap cause: %v", err)
	}
}

func TestGeneratePost_EmptyResponse(t *testing.T) {
	g := NewGenerator(&mockCompleter{response: ""})

	_, err := g.GeneratePost(context.Background(), models.Topic{Name: "tech"})
	if !errors.Is(err, models.ErrEmptyResult) {
		t.Fatalf("error = %v, want ErrEmptyResult", err)
	}
}

func TestGeneratePost_NewsFallbackUsesArticleTitle(t *testing.T) {
	g := NewGenerator(&mockCompleter{response: "Title:"})
	topic := models.Topic{Name: "tech", Article: &models.NewsArticle{Title: "chips get smaller"}}

	post, err := g.GeneratePost(context.Background(), topic)
	if err != nil {
		t.Fatalf("GeneratePost() error = %v", err)
	}
	if post.Title != "Chips get smaller" {
		t.Errorf("Title = %q, want %q", post.Title, "Chips get smaller")
	}
}

func TestUserPrompt(t *testing.T) {
	catalog := UserPrompt(models.Topic{Name: "ComfyUI"})
	if !strings.Contains(catalog, "engaging post on ComfyUI") {
		t.Errorf("catalog prompt = %q", catalog)
	}

	news := UserPrompt(models.Topic{Name: "tech", Article: &models.NewsArticle{
		Title: "New chip", Description: "Smaller and faster", URL: "https://example.com/chip",
	}})
	for _, want := range []string{"New chip", "Smaller and faster", "https://example.com/chip", "emojis"} {
		if !strings.Contains(news, want) {
			t.Errorf("news prompt missing %q: %q", want, news)
		}
	}
}
