package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/spacesedan/postsmith/config"
	"github.com/spacesedan/postsmith/internal/clients"
	"github.com/spacesedan/postsmith/internal/clients/kafka_client"
	"github.com/spacesedan/postsmith/internal/content"
	"github.com/spacesedan/postsmith/internal/ledger"
	"github.com/spacesedan/postsmith/internal/media"
	"github.com/spacesedan/postsmith/internal/metrics"
	"github.com/spacesedan/postsmith/internal/models"
	"github.com/spacesedan/postsmith/internal/monitoring"
	"github.com/spacesedan/postsmith/internal/newscache"
	"github.com/spacesedan/postsmith/internal/pipeline"
	"github.com/spacesedan/postsmith/internal/prompts"
	"github.com/spacesedan/postsmith/internal/publisher"
	"github.com/spacesedan/postsmith/internal/scheduler"
	"github.com/spacesedan/postsmith/internal/taxonomy"
	"github.com/spacesedan/postsmith/internal/topics"
)

// app owns every long-lived client for one process.
type app struct {
	cfg          *config.Config
	pipeline     *pipeline.Pipeline
	imageBackend media.ImageBackend
	images       *media.Pipeline
	rng          *rand.Rand
	closers      []func()
}

func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())),
	}

	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	wp := newWordPressClient(cfg)
	llm := clients.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, cfg.RequestTimeout)

	var valkeyClient *clients.ValkeyClient
	if cfg.Valkey.Address != "" {
		valkeyClient, err = clients.NewValkeyClient(clients.ValkeyOptions{
			Address:  cfg.Valkey.Address,
			Password: cfg.Valkey.Password,
			TLS:      cfg.Valkey.TLS,
		})
		if err != nil {
			slog.Warn("[Main] Valkey unavailable, continuing without shared cache",
				slog.String("error", err.Error()))
			valkeyClient = nil
		} else {
			a.closers = append(a.closers, valkeyClient.Close)
		}
	}

	source, err := a.topicSource(cfg, catalog, valkeyClient)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.imageBackend = newImageBackend(cfg)
	mediaPipeline := media.NewPipeline(
		a.imageBackend,
		prompts.NewBuilder(catalog.ImagePrompts, catalog.FallbackImagePrompt),
		wp,
		clients.NewImageFetcher(cfg.RequestTimeout),
		media.Options{
			Enabled: cfg.Image.Enabled,
			Dir:     cfg.Image.Dir,
			Format:  cfg.Image.Format,
			Params: models.ImageParams{
				Steps:    cfg.Image.Steps,
				Guidance: cfg.Image.Guidance,
			},
			UseArticleImage: cfg.Image.UseArticleImage,
		},
	)

	a.images = mediaPipeline

	deps := pipeline.Deps{
		Topics:    source,
		Generator: content.NewGenerator(llm),
		Media:     mediaPipeline,
		Taxonomy:  taxonomy.NewResolver(wp),
		Publisher: publisher.NewPublisher(wp, publisher.Options{
			Status:         cfg.PublishStatus,
			RenderMarkdown: cfg.RenderMarkdown,
			Render:         content.RenderHTML,
		}),
	}
	if valkeyClient != nil {
		deps.Processed = valkeyClient
	}

	if cfg.AWS.LedgerTable != "" {
		db, err := clients.NewDynamoDBClient(ctx, cfg.AWS.Region, cfg.AWS.Endpoint)
		if err != nil {
			slog.Warn("[Main] Ledger disabled", slog.String("error", err.Error()))
		} else {
			deps.Ledger = ledger.NewDynamoLedger(db, cfg.AWS.LedgerTable, 0)
		}
	}

	if cfg.Kafka.Broker != "" {
		producer, err := kafka_client.NewEventProducer(kafka_client.KafkaConfig{
			Broker: cfg.Kafka.Broker,
			Topic:  cfg.Kafka.Topic,
		})
		if err != nil {
			slog.Warn("[Main] Post events disabled", slog.String("error", err.Error()))
		} else {
			deps.Events = producer
			a.closers = append(a.closers, producer.Close)
		}
	}

	a.pipeline = pipeline.New(deps, pipeline.Options{
		TopicCategory:   catalog.TopicCategory,
		NewsCategory:    catalog.NewsCategory,
		ReleaseCategory: catalog.ReleaseCategory,
		Tags:            catalog.Tags,
		RunTimeout:      cfg.Schedule.RunTimeout,
	})
	return a, nil
}

func (a *app) topicSource(cfg *config.Config, catalog *config.Catalog, vc *clients.ValkeyClient) (pipeline.TopicSource, error) {
	if cfg.TopicSource == config.TopicSourceCatalog {
		return topics.NewCatalogSource(catalog.Topics, a.rng)
	}

	var searcher newscache.Searcher
	switch cfg.News.Provider {
	case config.NewsProviderRSS:
		searcher = clients.NewRSSClient(cfg.News.RSSURL, cfg.RequestTimeout)
	case config.NewsProviderNewsAPI:
		searcher = clients.NewNewsAPIClient(cfg.News.APIKey, cfg.RequestTimeout)
	default:
		return nil, fmt.Errorf("unknown news provider %q", cfg.News.Provider)
	}

	var store newscache.Store = &newscache.MemoryStore{}
	opts := topics.NewsOptions{
		MaxCount:     cfg.News.MaxArticles,
		MinSentiment: cfg.News.MinSentiment,
	}
	if vc != nil {
		store = newscache.NewValkeyStore(vc)
		opts.Processed = vc
	}

	cache := newscache.New(searcher, store, newscache.Options{
		Window:     cfg.News.CacheTTL,
		KeyByQuery: cfg.News.KeyByQuery,
	})
	return topics.NewNewsSource(catalog.NewsQueries, cache, a.rng, opts)
}

func newWordPressClient(cfg *config.Config) *clients.WordPressClient {
	return clients.NewWordPressClient(
		cfg.WordPress.URL,
		cfg.WordPress.Username,
		cfg.WordPress.Password,
		cfg.WordPress.Token,
		cfg.RequestTimeout,
	)
}

func newImageBackend(cfg *config.Config) media.ImageBackend {
	if cfg.Image.Backend == config.ImageBackendOpenAI {
		return clients.NewOpenAIImageClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.Image.Model, cfg.RequestTimeout)
	}
	return clients.NewStableDiffusionClient(cfg.Image.APIURL, cfg.RequestTimeout)
}

// newUploadOnlyPipeline backs the upload-image command, which never
// generates anything.
func newUploadOnlyPipeline(cfg *config.Config, wp *clients.WordPressClient) *media.Pipeline {
	return media.NewPipeline(nil, prompts.NewBuilder(nil, ""), wp, nil, media.Options{
		Enabled: true,
		Dir:     cfg.Image.Dir,
		Format:  cfg.Image.Format,
	})
}

func (a *app) runner() *scheduler.Runner {
	return scheduler.NewRunner(func(ctx context.Context) error {
		_, err := a.pipeline.RunOnce(ctx)
		return err
	}, a.cfg.Schedule.SleepMin, a.cfg.Schedule.SleepMax, a.rng)
}

// startBackground launches the metrics server and, when images are on, the
// image backend health watcher whose flag gates generation.
func (a *app) startBackground(ctx context.Context) {
	if a.cfg.MetricsAddr != "" {
		go a.serveMetrics(ctx)
	}
	if a.cfg.Image.Enabled && a.imageBackend != nil {
		healthy := new(atomic.Bool)
		monitoring.Check(ctx, a.imageBackend, healthy)
		a.images.TrackHealth(healthy)
		go monitoring.WatchImageBackend(ctx, a.imageBackend, monitoring.HEALTHCHECK_INTERVAL, healthy)
	}
}

func (a *app) serveMetrics(ctx context.Context) {
	metrics.Serve(ctx, a.cfg.MetricsAddr)
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
