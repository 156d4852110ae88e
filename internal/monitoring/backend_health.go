// Package monitoring polls backend health between scheduled runs.
package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/spacesedan/postsmith/internal/metrics"
)

const HEALTHCHECK_INTERVAL = 5 * time.Minute

type Prober interface {
	Name() string
	Available(ctx context.Context) bool
}

// Check queries backend once, storing the result in healthy and the
// image_backend_up gauge.
func Check(ctx context.Context, backend Prober, healthy *atomic.Bool) {
	isHealthy := backend.Available(ctx)
	if healthy.Swap(isHealthy) != isHealthy && !isHealthy {
		slog.Warn("[HealthCheck] Image backend is unhealthy", slog.String("backend", backend.Name()))
	}
	up := 0.0
	if isHealthy {
		up = 1
	}
	metrics.ImageBackendUp.WithLabelValues(backend.Name()).Set(up)
}

// WatchImageBackend probes backend every interval until ctx is done. The
// caller runs the first Check.
func WatchImageBackend(ctx context.Context, backend Prober, interval time.Duration, healthy *atomic.Bool) {
	if interval <= 0 {
		interval = HEALTHCHECK_INTERVAL
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			Check(ctx, backend, healthy)
		}
	}
}
