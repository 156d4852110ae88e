package clients

import "time"

const (
	MAX_RETRIES     = 5
	INITIAL_BACKOFF = 1 * time.Second
	MAX_BACKOFF     = 32 * time.Second
	USER_AGENT      = "postsmith-bot/1.0 (+https://github.com/spacesedan/postsmith)"

	// errorBodyLimit caps how much of a failed response body ends up in logs.
	errorBodyLimit = 1024
)
