package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"time"

	"github.com/spacesedan/postsmith/internal/models"
	"golang.org/x/oauth2"
)

const (
	ResourceCategories = "categories"
	ResourceTags       = "tags"
)

// WordPressClient wraps the subset of the WordPress REST API (wp/v2) the
// bot needs. BaseURL points at the wp/v2 root, e.g.
// https://example.com/wp-json/wp/v2.
type WordPressClient struct {
	Client   *http.Client
	BaseURL  string
	username string
	password string
	bearer   bool
}

// WordPressPost is the subset of the /posts response we read.
type WordPressPost struct {
	ID     int    `json:"id"`
	Link   string `json:"link"`
	Status string `json:"status"`
}

// NewWordPressClient uses HTTP Basic auth (application passwords) unless a
// token is given, in which case requests carry it as a bearer token.
func NewWordPressClient(baseURL, username, password, token string, timeout time.Duration) *WordPressClient {
	base := &http.Client{Timeout: timeout}
	wp := &WordPressClient{
		Client:   base,
		BaseURL:  baseURL,
		username: username,
		password: password,
	}
	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		wp.Client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token,
			TokenType:   "Bearer",
		}))
		wp.Client.Timeout = timeout
		wp.bearer = true
	}
	return wp
}

func (w *WordPressClient) newRequest(ctx context.Context, method, path string, body *bytes.Buffer) (*http.Request, error) {
	var req *http.Request
	var err error
	if body == nil {
		req, err = http.NewRequestWithContext(ctx, method, w.BaseURL+path, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, w.BaseURL+path, body)
	}
	if err != nil {
		return nil, err
	}
	if !w.bearer && w.username != "" {
		req.SetBasicAuth(w.username, w.password)
	}
	return req, nil
}

// LookupTerm returns the first term of resource (categories or tags) with
// the given slug, or ErrNotFound.
func (w *WordPressClient) LookupTerm(ctx context.Context, resource, slug string) (models.TaxonomyTerm, error) {
	req, err := w.newRequest(ctx, http.MethodGet, "/"+resource+"?slug="+url.QueryEscape(slug), nil)
	if err != nil {
		return models.TaxonomyTerm{}, err
	}

	res, err := doRequest(w.Client, "wordpress", req)
	if err != nil {
		return models.TaxonomyTerm{}, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return models.TaxonomyTerm{}, rejected("lookup "+resource, res)
	}

	var terms []models.TaxonomyTerm
	if err := json.NewDecoder(res.Body).Decode(&terms); err != nil {
		return models.TaxonomyTerm{}, fmt.Errorf("lookup %s %q: decode: %w", resource, slug, err)
	}
	if len(terms) == 0 {
		return models.TaxonomyTerm{}, fmt.Errorf("%s %q: %w", resource, slug, models.ErrNotFound)
	}
	return terms[0], nil
}

func (w *WordPressClient) CreatePost(ctx context.Context, payload models.PostPayload) (WordPressPost, error) {
	body := &bytes.Buffer{}
	if err := json.NewEncoder(body).Encode(payload); err != nil {
		return WordPressPost{}, err
	}

	req, err := w.newRequest(ctx, http.MethodPost, "/posts", body)
	if err != nil {
		return WordPressPost{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := doRequest(w.Client, "wordpress", req)
	if err != nil {
		return WordPressPost{}, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusCreated {
		return WordPressPost{}, rejected("create post", res)
	}

	var post WordPressPost
	if err := json.NewDecoder(res.Body).Decode(&post); err != nil {
		return WordPressPost{}, fmt.Errorf("create post: decode: %w", err)
	}
	return post, nil
}

// UploadMedia posts data to /media as a multipart file part, with the
// filename repeated in a Content-Disposition header as WordPress expects.
func (w *WordPressClient) UploadMedia(ctx context.Context, data []byte, filename, mimeType string) (models.WordPressMedia, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	partHeader := make(textproto.MIMEHeader)
	partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	partHeader.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(partHeader)
	if err != nil {
		return models.WordPressMedia{}, err
	}
	if _, err := part.Write(data); err != nil {
		return models.WordPressMedia{}, err
	}
	if err := mw.Close(); err != nil {
		return models.WordPressMedia{}, err
	}

	req, err := w.newRequest(ctx, http.MethodPost, "/media", body)
	if err != nil {
		return models.WordPressMedia{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Content-Disposition", "attachment; filename="+filename)

	slog.Info("[WordPressClient] Uploading image", slog.String("filename", filename))

	res, err := doRequest(w.Client, "wordpress", req)
	if err != nil {
		return models.WordPressMedia{}, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusCreated {
		return models.WordPressMedia{}, rejected("upload media", res)
	}

	var media models.WordPressMedia
	if err := json.NewDecoder(res.Body).Decode(&media); err != nil {
		return models.WordPressMedia{}, fmt.Errorf("upload media: decode: %w", err)
	}
	return media, nil
}
