package kafka_client

import "time"

const (
	KAFKA_TOPIC_POSTS_PUBLISHED = "posts.published" // one message per created post
)

const (
	MAX_RETRIES   = 3
	RETRY_DELAY   = 2 * time.Second
	FLUSH_TIMEOUT = 5000 // ms
)
