package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/config"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/logging"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/types/common"
)

// ErrProducerClosed is returned when publishing after Close.
var ErrProducerClosed = errors.New(errors.ErrCodeExternalService, "kafka producer closed")

// Writer abstracts kafka.Writer for testing.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes domain events as JSON messages. Events are keyed by
// their aggregate ID so per-record ordering survives partitioning.
type Producer struct {
	writer Writer
	logger logging.Logger
	closed atomic.Bool
}

// NewProducer builds a producer over a kafka.Writer configured from cfg.
// The topic is picked per message, so one writer serves all event types.
func NewProducer(cfg config.KafkaConfig, logger logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.CodeInvalidParam, "kafka: at least one broker is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	retries := cfg.ProducerRetries
	if retries <= 0 {
		retries = 3
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            retries,
		BatchSize:              batchSize,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: cfg.AutoCreateTopics,
	}
	return &Producer{writer: writer, logger: logger.Named("kafka_producer")}, nil
}

// NewProducerWithWriter is the testing seam.
func NewProducerWithWriter(writer Writer, logger logging.Logger) *Producer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Producer{writer: writer, logger: logger.Named("kafka_producer")}
}

// Publish encodes the event and writes it to the topic mapped from the
// event name.
func (p *Producer) Publish(ctx context.Context, eventName string, event common.DomainEvent) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "kafka: encoding event")
	}

	msg := kafka.Message{
		Topic: TopicFor(eventName),
		Key:   []byte(event.AggregateID()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_name", Value: []byte(eventName)},
			{Key: "event_id", Value: []byte(event.EventID())},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "kafka: writing message")
	}

	p.logger.Debug("event published",
		logging.String("event", eventName),
		logging.String("topic", msg.Topic),
		logging.String("aggregate_id", event.AggregateID()))
	return nil
}

// Close flushes and shuts the writer down.
func (p *Producer) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.writer.Close()
}
