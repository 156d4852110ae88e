package kafka_client

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/postsmith/internal/models"
)

// EventProducer announces created posts to downstream consumers.
type EventProducer struct {
	producer *kafka.Producer
	topic    string
}

func NewEventProducer(cfg KafkaConfig) (*EventProducer, error) {
	slog.Info("[KafkaClient] Initializing Kafka Producer...", slog.String("broker", cfg.Broker))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":   cfg.Broker,
		"security.protocol":   "PLAINTEXT",
		"api.version.request": "true",
		"enable.idempotence":  true,
		"acks":                "all",
	})
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	topic := cfg.Topic
	if topic == "" {
		topic = KAFKA_TOPIC_POSTS_PUBLISHED
	}

	ep := &EventProducer{producer: p, topic: topic}
	go ep.logDeliveries()

	slog.Info("[KafkaClient] Kafka Producer initialized successfully")
	return ep, nil
}

func (ep *EventProducer) logDeliveries() {
	for e := range ep.producer.Events() {
		if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			slog.Warn("[KafkaClient] Delivery failed",
				slog.String("key", string(m.Key)),
				slog.String("error", m.TopicPartition.Error.Error()))
		}
	}
}

// PublishPostEvent produces event keyed by the WordPress post id.
func (ep *EventProducer) PublishPostEvent(event models.PostEvent) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &ep.topic, Partition: kafka.PartitionAny},
		Key:            []byte(strconv.Itoa(event.Post.ID)),
		Value:          jsonData,
		Headers:        []kafka.Header{{Key: "type", Value: []byte(event.Type)}},
	}

	for i := 0; i < MAX_RETRIES; i++ {
		err = ep.producer.Produce(msg, nil)
		if err == nil {
			break
		}
		slog.Warn("[KafkaClient] Failed to produce message, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
		time.Sleep(RETRY_DELAY)
	}
	if err != nil {
		return fmt.Errorf("[KafkaClient] failed to produce post event: %w", err)
	}

	slog.Info("[KafkaClient] Published post event",
		slog.String("event_id", event.EventID),
		slog.Int("post_id", event.Post.ID))
	return nil
}

func (ep *EventProducer) Close() {
	slog.Info("[KafkaClient] Flushing Kafka producer before shutdown...")
	if remaining := ep.producer.Flush(FLUSH_TIMEOUT); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	ep.producer.Close()
	slog.Info("[KafkaClient] Kafka producer shut down")
}
