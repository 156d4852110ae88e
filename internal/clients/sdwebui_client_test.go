package clients

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spacesedan/postsmith/internal/models"
)

func TestStableDiffusionClient_Available(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   bool
	}{
		{"cuda present", http.StatusOK, `{"cuda":{"system":{"free":1,"used":1,"total":8589934592}}}`, true},
		{"cuda error", http.StatusOK, `{"cuda":{"error":"Torch not compiled with CUDA enabled"}}`, false},
		{"no total", http.StatusOK, `{"cuda":{"system":{"total":0}}}`, false},
		{"server error", http.StatusInternalServerError, ``, false},
		{"garbage", http.StatusOK, `not json`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/sdapi/v1/memory" {
					http.NotFound(w, r)
					return
				}
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			if got := NewStableDiffusionClient(srv.URL, 5*time.Second).Available(context.Background()); got != tt.want {
				t.Errorf("Available() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStableDiffusionClient_AvailableUnreachable(t *testing.T) {
	if NewStableDiffusionClient("http://127.0.0.1:1", time.Second).Available(context.Background()) {
		t.Error("Available() = true for an unreachable server")
	}
}

func TestStableDiffusionClient_Generate(t *testing.T) {
	var got models.Txt2ImgRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/sdapi/v1/txt2img" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(models.Txt2ImgResponse{
			Images: []string{base64.StdEncoding.EncodeToString([]byte("png-bytes"))},
		})
	}))
	defer srv.Close()

	data, err := NewStableDiffusionClient(srv.URL, 5*time.Second).Generate(context.Background(), "a neon lab",
		models.ImageParams{Steps: 50, Guidance: 7.5})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("data = %q", data)
	}
	if got.Prompt != "a neon lab" || got.Steps != 50 || got.CfgScale != 7.5 || got.BatchSize != 1 {
		t.Errorf("request = %+v", got)
	}
}

func TestStableDiffusionClient_GenerateEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"images":[]}`)
	}))
	defer srv.Close()

	_, err := NewStableDiffusionClient(srv.URL, 5*time.Second).Generate(context.Background(), "p", models.ImageParams{})
	if !errors.Is(err, models.ErrEmptyResult) {
		t.Errorf("error = %v, want ErrEmptyResult", err)
	}
}
