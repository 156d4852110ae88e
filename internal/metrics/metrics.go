package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postsmith_runs_total",
			Help: "Pipeline runs by outcome",
		},
		[]string{"outcome"},
	)

	PostsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postsmith_posts_published_total",
			Help: "Posts created in WordPress",
		},
		[]string{"status", "source"},
	)

	MediaUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postsmith_media_uploads_total",
			Help: "Featured image attempts by outcome",
		},
		[]string{"outcome"},
	)

	NewsCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postsmith_news_cache_lookups_total",
			Help: "News cache lookups by result",
		},
		[]string{"result"},
	)

	ImageBackendUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "postsmith_image_backend_up",
			Help: "1 when the image backend passed its last health check",
		},
		[]string{"backend"},
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "postsmith_backend_request_duration_seconds",
			Help:    "Outbound request latency per backend",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "result"},
	)
)

func ObserveBackend(backend string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	BackendRequestDuration.WithLabelValues(backend, result).Observe(d.Seconds())
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("[Metrics] Serving metrics", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("[Metrics] Metrics server stopped", slog.String("error", err.Error()))
	}
}
