package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spacesedan/postsmith/internal/models"
)

const (
	TopicSourceCatalog = "catalog"
	TopicSourceNews    = "news"

	NewsProviderNewsAPI = "newsapi"
	NewsProviderRSS     = "rss"

	ImageBackendSDWebUI = "sdwebui"
	ImageBackendOpenAI  = "openai"
)

// Config is read once at startup and never mutated afterwards.
type Config struct {
	AppEnv   string
	LogLevel string

	WordPress WordPressConfig
	OpenAI    OpenAIConfig
	News      NewsConfig
	Image     ImageConfig
	Schedule  ScheduleConfig
	Valkey    ValkeyConfig
	AWS       AWSConfig
	Kafka     KafkaConfig

	TopicSource    string
	PublishStatus  models.PublishStatus
	RenderMarkdown bool
	RequestTimeout time.Duration
	MetricsAddr    string
	CatalogPath    string
}

type WordPressConfig struct {
	URL      string
	Username string
	Password string
	// Token switches the client from HTTP Basic to bearer auth.
	Token string
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type NewsConfig struct {
	Provider     string
	APIKey       string
	RSSURL       string
	MaxArticles  int
	CacheTTL     time.Duration
	KeyByQuery   bool
	MinSentiment float64
}

type ImageConfig struct {
	Enabled         bool
	Backend         string
	APIURL          string
	Model           string
	Dir             string
	Format          string
	Steps           int
	Guidance        float64
	UseArticleImage bool
}

type ScheduleConfig struct {
	SleepMin   time.Duration
	SleepMax   time.Duration
	RunTimeout time.Duration
}

type ValkeyConfig struct {
	Address  string
	Password string
	TLS      bool
}

type AWSConfig struct {
	Endpoint    string
	Region      string
	LedgerTable string
}

type KafkaConfig struct {
	Broker string
	Topic  string
}

// Load reads the process environment. Call LoadEnv first to pick up a
// .env file.
func Load() (*Config, error) {
	var errs []error
	e := envReader{errs: &errs}

	cfg := &Config{
		AppEnv:   e.str("APP_ENV", "dev"),
		LogLevel: e.str("LOG_LEVEL", "info"),
		WordPress: WordPressConfig{
			URL:      strings.TrimRight(e.str("WORDPRESS_URL", ""), "/"),
			Username: e.str("WORDPRESS_USERNAME", ""),
			Password: e.str("WORDPRESS_PASSWORD", ""),
			Token:    e.str("WORDPRESS_TOKEN", ""),
		},
		OpenAI: OpenAIConfig{
			APIKey:  e.str("OPENAI_API_KEY", ""),
			BaseURL: e.str("OPENAI_BASE_URL", ""),
			Model:   e.str("OPENAI_MODEL", "gpt-4o-mini"),
		},
		News: NewsConfig{
			Provider:     strings.ToLower(e.str("NEWS_PROVIDER", NewsProviderNewsAPI)),
			APIKey:       e.str("NEWS_API_KEY", ""),
			RSSURL:       e.str("NEWS_RSS_URL", "https://news.google.com/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en"),
			MaxArticles:  e.integer("NEWS_MAX_ARTICLES", 15),
			CacheTTL:     e.duration("NEWS_CACHE_TTL", 25*time.Minute),
			KeyByQuery:   e.boolean("NEWS_CACHE_KEY_BY_QUERY", true),
			MinSentiment: e.float("NEWS_MIN_SENTIMENT", -1),
		},
		Image: ImageConfig{
			Enabled:         e.boolean("ENABLE_IMAGE_GENERATION", true),
			Backend:         strings.ToLower(e.str("IMAGE_BACKEND", ImageBackendSDWebUI)),
			APIURL:          strings.TrimRight(e.str("IMAGE_API_URL", "http://127.0.0.1:7860"), "/"),
			Model:           e.str("IMAGE_MODEL", "dall-e-3"),
			Dir:             e.str("IMAGE_DIR", "images"),
			Format:          strings.ToUpper(e.str("IMAGE_FORMAT", "JPEG")),
			Steps:           e.integer("IMAGE_STEPS", 50),
			Guidance:        e.float("IMAGE_GUIDANCE", 7.5),
			UseArticleImage: e.boolean("USE_ARTICLE_IMAGE", false),
		},
		Schedule: ScheduleConfig{
			SleepMin:   e.duration("SLEEP_MIN", time.Hour),
			SleepMax:   e.duration("SLEEP_MAX", 2*time.Hour),
			RunTimeout: e.duration("RUN_TIMEOUT", 10*time.Minute),
		},
		Valkey: ValkeyConfig{
			Address:  e.str("VALKEY_INIT_ADDRESS", ""),
			Password: e.str("VALKEY_PASSWORD", ""),
			TLS:      e.boolean("VALKEY_TLS", false),
		},
		AWS: AWSConfig{
			Endpoint:    e.str("AWS_ENDPOINT", ""),
			Region:      e.str("AWS_REGION", "us-west-2"),
			LedgerTable: e.str("LEDGER_TABLE", ""),
		},
		Kafka: KafkaConfig{
			Broker: e.str("KAFKA_BROKER", ""),
			Topic:  e.str("KAFKA_TOPIC", "posts.published"),
		},
		TopicSource:    strings.ToLower(e.str("TOPIC_SOURCE", TopicSourceCatalog)),
		PublishStatus:  models.PublishStatus(strings.ToLower(e.str("PUBLISH_STATUS", string(models.StatusDraft)))),
		RenderMarkdown: e.boolean("RENDER_MARKDOWN", true),
		RequestTimeout: e.duration("REQUEST_TIMEOUT", 60*time.Second),
		MetricsAddr:    e.str("METRICS_ADDR", ""),
		CatalogPath:    e.str("CATALOG_PATH", ""),
	}

	errs = append(errs, cfg.validate()...)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func (c *Config) validate() []error {
	var errs []error
	missing := func(name string) {
		errs = append(errs, fmt.Errorf("%w: %s is required", models.ErrConfigurationMissing, name))
	}

	if c.WordPress.URL == "" {
		missing("WORDPRESS_URL")
	}
	if c.OpenAI.APIKey == "" {
		missing("OPENAI_API_KEY")
	}
	switch c.TopicSource {
	case TopicSourceCatalog:
	case TopicSourceNews:
		switch c.News.Provider {
		case NewsProviderNewsAPI:
			if c.News.APIKey == "" {
				missing("NEWS_API_KEY")
			}
		case NewsProviderRSS:
			if !strings.Contains(c.News.RSSURL, "%s") {
				errs = append(errs, fmt.Errorf("NEWS_RSS_URL must contain %%s for the query"))
			}
		default:
			errs = append(errs, fmt.Errorf("unknown NEWS_PROVIDER %q", c.News.Provider))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown TOPIC_SOURCE %q", c.TopicSource))
	}
	if !c.PublishStatus.Valid() {
		errs = append(errs, fmt.Errorf("unknown PUBLISH_STATUS %q", c.PublishStatus))
	}
	if c.Image.Backend != ImageBackendSDWebUI && c.Image.Backend != ImageBackendOpenAI {
		errs = append(errs, fmt.Errorf("unknown IMAGE_BACKEND %q", c.Image.Backend))
	}
	if c.Image.Format != "JPEG" && c.Image.Format != "PNG" {
		errs = append(errs, fmt.Errorf("unsupported IMAGE_FORMAT %q", c.Image.Format))
	}
	if c.Schedule.SleepMin <= 0 || c.Schedule.SleepMax < c.Schedule.SleepMin {
		errs = append(errs, fmt.Errorf("invalid sleep range [%s, %s]", c.Schedule.SleepMin, c.Schedule.SleepMax))
	}
	if c.News.MaxArticles <= 0 {
		errs = append(errs, fmt.Errorf("NEWS_MAX_ARTICLES must be positive"))
	}
	return errs
}

// envReader collects parse errors instead of failing on the first one.
type envReader struct {
	errs *[]error
}

func (e envReader) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (e envReader) boolean(key string, def bool) bool {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func (e envReader) integer(key string, def int) int {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (e envReader) float(key string, def float64) float64 {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return f
}

// duration accepts Go durations ("90m") or a bare number of seconds.
func (e envReader) duration(key string, def time.Duration) time.Duration {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}
