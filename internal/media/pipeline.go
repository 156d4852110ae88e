// Package media generates a featured image for a topic, stores it on disk
// and uploads it to the WordPress media library.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/spacesedan/postsmith/internal/metrics"
	"github.com/spacesedan/postsmith/internal/models"
	"github.com/spacesedan/postsmith/internal/utils"
)

const (
	FormatJPEG = "JPEG"
	FormatPNG  = "PNG"

	filePrefix  = "ai_gen_image_"
	jpegQuality = 90
)

type ImageBackend interface {
	Name() string
	Available(ctx context.Context) bool
	Generate(ctx context.Context, prompt string, params models.ImageParams) ([]byte, error)
}

type Uploader interface {
	UploadMedia(ctx context.Context, data []byte, filename, mimeType string) (models.WordPressMedia, error)
}

// ArticleImageFetcher downloads the image attached to a news article.
type ArticleImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

type PromptBuilder interface {
	Build(topic string) string
}

type Options struct {
	Enabled         bool
	Dir             string
	Format          string
	Params          models.ImageParams
	UseArticleImage bool
}

type Pipeline struct {
	backend  ImageBackend
	prompts  PromptBuilder
	uploader Uploader
	fetcher  ArticleImageFetcher
	opts     Options
	health   *atomic.Bool
}

// NewPipeline accepts a nil backend or fetcher; the matching source is then
// never tried.
func NewPipeline(backend ImageBackend, prompts PromptBuilder, uploader Uploader, fetcher ArticleImageFetcher, opts Options) *Pipeline {
	if opts.Format == "" {
		opts.Format = FormatJPEG
	}
	opts.Format = strings.ToUpper(opts.Format)
	if opts.Dir == "" {
		opts.Dir = "images"
	}
	return &Pipeline{
		backend:  backend,
		prompts:  prompts,
		uploader: uploader,
		fetcher:  fetcher,
		opts:     opts,
	}
}

// TrackHealth makes generation consult flag, kept current by a background
// watcher, instead of probing the backend on every run.
func (p *Pipeline) TrackHealth(flag *atomic.Bool) {
	p.health = flag
}

// ProduceAndUploadImage returns the uploaded asset, or nil when image
// generation is disabled or any step fails. Failures are logged, never
// returned.
func (p *Pipeline) ProduceAndUploadImage(ctx context.Context, topic models.Topic) *models.MediaAsset {
	if !p.opts.Enabled {
		slog.Info("[MediaPipeline] Image generation disabled")
		metrics.MediaUploads.WithLabelValues("disabled").Inc()
		return nil
	}

	data := p.generate(ctx, topic)
	if data == nil {
		data = p.articleImage(ctx, topic)
	}
	if data == nil {
		metrics.MediaUploads.WithLabelValues("no_image").Inc()
		return nil
	}

	path, err := p.save(topic.Name, data)
	if err != nil {
		slog.Error("[MediaPipeline] Failed to save image", slog.String("error", err.Error()))
		metrics.MediaUploads.WithLabelValues("save_failed").Inc()
		return nil
	}

	return p.Upload(ctx, path)
}

func (p *Pipeline) generate(ctx context.Context, topic models.Topic) []byte {
	if p.backend == nil {
		return nil
	}
	if !p.backendUp(ctx) {
		slog.Warn("[MediaPipeline] Image backend unavailable, skipping generation",
			slog.String("backend", p.backend.Name()))
		return nil
	}

	prompt := p.prompts.Build(topic.Name)
	slog.Info("[MediaPipeline] Generating image",
		slog.String("backend", p.backend.Name()),
		slog.String("topic", topic.Name))

	data, err := p.backend.Generate(ctx, prompt, p.opts.Params)
	if err != nil {
		slog.Error("[MediaPipeline] Image generation failed",
			slog.String("backend", p.backend.Name()),
			slog.String("error", err.Error()))
		return nil
	}
	return data
}

func (p *Pipeline) backendUp(ctx context.Context) bool {
	if p.health != nil {
		return p.health.Load()
	}
	return p.backend.Available(ctx)
}

func (p *Pipeline) articleImage(ctx context.Context, topic models.Topic) []byte {
	if !p.opts.UseArticleImage || p.fetcher == nil || topic.Article == nil || topic.Article.ImageURL == "" {
		return nil
	}
	slog.Info("[MediaPipeline] Using article image", slog.String("url", topic.Article.ImageURL))

	data, _, err := p.fetcher.Fetch(ctx, topic.Article.ImageURL)
	if err != nil {
		slog.Warn("[MediaPipeline] Failed to download article image", slog.String("error", err.Error()))
		return nil
	}
	return data
}

// save re-encodes data as an opaque image in the configured format and
// writes it to <dir>/ai_gen_image_<slug>.<ext>.
func (p *Pipeline) save(topic string, data []byte) (string, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	var buf bytes.Buffer
	ext := ".jpg"
	switch p.opts.Format {
	case FormatPNG:
		ext = ".png"
		err = png.Encode(&buf, toRGB(src))
	default:
		err = jpeg.Encode(&buf, toRGB(src), &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}

	if err := os.MkdirAll(p.opts.Dir, 0o755); err != nil {
		return "", err
	}
	slug := utils.Slugify(topic)
	if slug == "" {
		slug = "post"
	}
	path := filepath.Join(p.opts.Dir, filePrefix+slug+ext)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	slog.Info("[MediaPipeline] Image saved", slog.String("path", path))
	return path, nil
}

// toRGB flattens any alpha channel onto a white background.
func toRGB(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, b, src, b.Min, draw.Over)
	return dst
}

// Upload sends the file at path to the media library. A missing file or a
// rejected upload yields nil.
func (p *Pipeline) Upload(ctx context.Context, path string) *models.MediaAsset {
	data, err := readImage(path)
	if err != nil {
		slog.Error("[MediaPipeline] Failed to read image", slog.String("path", path), slog.String("error", err.Error()))
		metrics.MediaUploads.WithLabelValues("missing_file").Inc()
		return nil
	}

	mimeType := MimeType(path, data)
	media, err := p.uploader.UploadMedia(ctx, data, filepath.Base(path), mimeType)
	if err != nil {
		slog.Error("[MediaPipeline] Failed to upload image",
			slog.String("path", path),
			slog.String("error", err.Error()))
		metrics.MediaUploads.WithLabelValues("failure").Inc()
		return nil
	}

	slog.Info("[MediaPipeline] Image uploaded",
		slog.Int("mediaID", media.ID),
		slog.String("url", media.SourceURL))
	metrics.MediaUploads.WithLabelValues("success").Inc()

	return &models.MediaAsset{
		LocalPath: path,
		MimeType:  mimeType,
		RemoteID:  media.ID,
		RemoteURL: media.SourceURL,
	}
}

// readImage wraps a missing file in models.ErrResourceMissing.
func readImage(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: image file %s", models.ErrResourceMissing, path)
	}
	return data, err
}

// MimeType prefers the file extension and falls back to sniffing.
func MimeType(path string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		if i := strings.IndexByte(t, ';'); i >= 0 {
			t = t[:i]
		}
		return t
	}
	return http.DetectContentType(data)
}
