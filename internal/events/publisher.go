// Package events provides event publishing functionality.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"meeting-summary-service/internal/observability/metrics"
)

const eventTypeSummaryGenerated = "meeting.summary.generated"

// SummaryGenerated is emitted after a meeting has been summarized.
type SummaryGenerated struct {
	EventType       string  `json:"eventType"`
	MeetingID       string  `json:"meetingId"`
	TotalDuration   float64 `json:"totalDuration"`
	WindowCount     int     `json:"windowCount"`
	DegradedWindows int     `json:"degradedWindows"`
	DegradedOverall bool    `json:"degradedOverall"`
	GeneratedAt     int64   `json:"generatedAt"`
}

// Publisher publishes summary lifecycle events to Kafka.
type Publisher struct {
	writer    *kafka.Writer
	principal string
	topic     string
	enabled   bool
	metrics   *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers   []string
	Topic     string
	Principal string
	Enabled   bool
}

// New creates a Kafka event publisher. When disabled (or given no brokers)
// it degrades to log-only mode and every publish is a cheap no-op.
func New(cfg *Config) *Publisher {
	m := metrics.DefaultMetrics

	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{
			enabled: false,
			metrics: m,
		}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal: cfg.Principal,
			topic:     cfg.Topic,
			enabled:   false,
			metrics:   m,
		}
	}

	// Custom dialer with longer timeouts for DNS resolution in Kubernetes
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport: &kafka.Transport{
			Dial: dialer.DialFunc,
		},
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writer:    writer,
		principal: cfg.Principal,
		topic:     cfg.Topic,
		enabled:   true,
		metrics:   m,
	}
}

// PublishSummaryGenerated publishes a summary-generated event, keyed by
// meeting id. Publish failures are logged, never propagated: the summary has
// already been produced and the event is advisory.
func (p *Publisher) PublishSummaryGenerated(ctx context.Context, event SummaryGenerated) {
	event.EventType = eventTypeSummaryGenerated
	p.publish(ctx, event.MeetingID, event)
}

func (p *Publisher) publish(ctx context.Context, key string, event any) {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", p.topic).Msg("Failed to marshal event")
		return
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", p.topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	// If Kafka is disabled, just log
	if !p.enabled || p.writer == nil {
		p.metrics.RecordKafkaPublish(p.topic, eventTypeSummaryGenerated, nil, time.Since(start).Seconds())
		return
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(eventTypeSummaryGenerated)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", p.topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(p.topic, eventTypeSummaryGenerated, err, time.Since(start).Seconds())
		return
	}

	p.metrics.RecordKafkaPublish(p.topic, eventTypeSummaryGenerated, nil, time.Since(start).Seconds())
}

// Close closes the Kafka writer.
func (p *Publisher) Close() error {
	if p.writer != nil {
		if err := p.writer.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing Kafka writer")
			return err
		}
	}
	return nil
}
