package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/odp-dashboard-service/internal/config"
	"github.com/couchcryptid/odp-dashboard-service/internal/domain"
	"github.com/couchcryptid/odp-dashboard-service/internal/observability"
)

// EventTypeDatasetLoaded is the event_type header of upload events.
const EventTypeDatasetLoaded = "dataset_loaded"

const (
	maxAttempts    = 3
	initialBackoff = 100 * time.Millisecond
	maxBackoff     = time.Second
)

// messageWriter is the subset of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher announces successfully loaded datasets on a Kafka topic.
type Publisher struct {
	writer  messageWriter
	brokers []string
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured dataset topic.
func NewPublisher(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		BatchTimeout:           20 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, brokers: cfg.KafkaBrokers, metrics: metrics, logger: logger}
}

// PublishDatasetLoaded writes one event keyed by file identity, retrying
// transient failures with exponential backoff.
func (p *Publisher) PublishDatasetLoaded(ctx context.Context, event domain.DatasetLoaded) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}

	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		err = p.writer.WriteMessages(ctx, msg)
		if err == nil {
			p.metrics.EventsPublished.WithLabelValues("success").Inc()
			p.logger.Debug("dataset event published", "file_id", event.FileID, "attempt", attempt)
			return nil
		}
		if attempt == maxAttempts || ctx.Err() != nil {
			break
		}
		p.logger.Warn("publish dataset event failed, retrying",
			"error", err, "file_id", event.FileID, "attempt", attempt, "backoff", backoff)
		if !retry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}

	p.metrics.EventsPublished.WithLabelValues("error").Inc()
	return fmt.Errorf("publish dataset event: %w", err)
}

// CheckReadiness dials the first reachable broker.
func (p *Publisher) CheckReadiness(ctx context.Context) error {
	var errs []error
	for _, broker := range p.brokers {
		conn, err := kafkago.DialContext(ctx, "tcp", broker)
		if err == nil {
			return conn.Close()
		}
		errs = append(errs, err)
	}
	return fmt.Errorf("kafka unreachable: %w", errors.Join(errs...))
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a DatasetLoaded event into a Kafka message.
func serializeToMessage(event domain.DatasetLoaded) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize dataset event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.FileID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(EventTypeDatasetLoaded)},
			{Key: "loaded_at", Value: []byte(event.LoadedAt.Format(time.RFC3339))},
		},
	}, nil
}
