package clients

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spacesedan/postsmith/internal/metrics"
	"github.com/spacesedan/postsmith/internal/models"
)

// doRequest sends req, records latency under backend, and maps transport
// failures to ErrBackendUnavailable. The caller owns the response body.
func doRequest(client *http.Client, backend string, req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", USER_AGENT)
	}
	start := time.Now()
	res, err := client.Do(req)
	metrics.ObserveBackend(backend, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", models.ErrBackendUnavailable, req.Method, req.URL.Redacted(), err)
	}
	return res, nil
}

// rejected drains up to errorBodyLimit bytes of res into a BackendRejectedError.
func rejected(op string, res *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, errorBodyLimit))
	return &models.BackendRejectedError{
		Op:         op,
		StatusCode: res.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

func nextBackoff(backoff time.Duration) time.Duration {
	backoff *= 2
	if backoff > MAX_BACKOFF {
		backoff = MAX_BACKOFF
	}
	return backoff
}

func observe(backend string, start time.Time, err error) {
	metrics.ObserveBackend(backend, time.Since(start), err)
}
