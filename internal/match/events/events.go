// Package events publishes match lifecycle notifications for downstream
// consumers (push notification fan-out, analytics). Events carry only IDs
// and the match fingerprint; no declared names ever leave the service.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"liaison/internal/platform/kafka/producer"
	"liaison/internal/platform/metrics"
	id "liaison/pkg/domain"
)

// MatchCreated is emitted once per match, after the creating transaction
// commits. Each side learns about the match through its own owner ID so
// consumers can route per-user notifications without joining tables.
type MatchCreated struct {
	MatchID        id.MatchID       `json:"match_id"`
	DeclarationID1 id.DeclarationID `json:"declaration_id_1"`
	DeclarationID2 id.DeclarationID `json:"declaration_id_2"`
	Owner1         id.UserID        `json:"owner_1"`
	Owner2         id.UserID        `json:"owner_2"`
	Fingerprint    string           `json:"fingerprint"`
	Score          float64          `json:"score"`
	CreatedAt      time.Time        `json:"created_at"`
}

// Publisher emits match events. Implementations must be safe for concurrent
// use and must not block the request path.
type Publisher interface {
	MatchCreated(event MatchCreated)
}

// KafkaPublisher emits match events to a Kafka topic, keyed by match ID so
// replays of the same match land on the same partition.
type KafkaPublisher struct {
	producer *producer.Producer
	topic    string
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewKafkaPublisher constructs a Kafka-backed publisher.
func NewKafkaPublisher(p *producer.Producer, topic string, logger *slog.Logger, m *metrics.Metrics) *KafkaPublisher {
	return &KafkaPublisher{producer: p, topic: topic, logger: logger, metrics: m}
}

func (k *KafkaPublisher) MatchCreated(event MatchCreated) {
	payload, err := json.Marshal(event)
	if err != nil {
		k.fail(event, fmt.Errorf("marshal match event: %w", err))
		return
	}
	err = k.producer.ProduceAsync(&producer.Message{
		Topic: k.topic,
		Key:   []byte(event.MatchID.String()),
		Value: payload,
		Headers: map[string]string{
			"event_type": "match.created",
		},
	})
	if err != nil {
		k.fail(event, err)
		return
	}
	if k.metrics != nil {
		k.metrics.MatchEventsPublished.Inc()
	}
}

// fail logs and counts a publish failure. Match creation already committed;
// losing the event degrades notification latency, not correctness, so the
// error is never surfaced to the caller.
func (k *KafkaPublisher) fail(event MatchCreated, err error) {
	if k.logger != nil {
		k.logger.Error("failed to publish match event",
			"match_id", event.MatchID,
			"error", err,
		)
	}
	if k.metrics != nil {
		k.metrics.MatchEventsFailed.Inc()
	}
}

// NoopPublisher discards events. Used when Kafka is not configured.
type NoopPublisher struct{}

func (NoopPublisher) MatchCreated(MatchCreated) {}
