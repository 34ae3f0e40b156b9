package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/config"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/logging"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
)

// Message is the consumer-facing view of a kafka record.
type Message struct {
	Topic     string
	Key       []byte
	Value     []byte
	EventName string
}

// Handler processes one message. A returned error leaves the offset
// uncommitted so the message is redelivered.
type Handler func(ctx context.Context, msg Message) error

// Reader abstracts kafka.Reader for testing.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer runs a fetch/handle/commit loop over one topic.
type Consumer struct {
	reader Reader
	logger logging.Logger
}

// NewConsumer builds a group consumer for a topic.
func NewConsumer(cfg config.KafkaConfig, topic string, logger logging.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.CodeInvalidParam, "kafka: at least one broker is required")
	}
	if cfg.GroupID == "" {
		return nil, errors.New(errors.CodeInvalidParam, "kafka: consumer group id is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	startOffset := kafka.LastOffset
	if cfg.AutoOffsetReset == "earliest" {
		startOffset = kafka.FirstOffset
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       topic,
		StartOffset: startOffset,
	})
	return &Consumer{reader: reader, logger: logger.Named("kafka_consumer")}, nil
}

// NewConsumerWithReader is the testing seam.
func NewConsumerWithReader(reader Reader, logger logging.Logger) *Consumer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Consumer{reader: reader, logger: logger.Named("kafka_consumer")}
}

// Run consumes until ctx is cancelled. Handler failures are logged and the
// offset stays uncommitted; fetch failures other than cancellation are
// returned.
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	for {
		raw, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, errors.ErrCodeExternalService, "kafka: fetching message")
		}

		msg := Message{
			Topic: raw.Topic,
			Key:   raw.Key,
			Value: raw.Value,
		}
		for _, h := range raw.Headers {
			if h.Key == "event_name" {
				msg.EventName = string(h.Value)
			}
		}

		if err := handler(ctx, msg); err != nil {
			c.logger.Error("message handling failed",
				logging.String("topic", raw.Topic),
				logging.String("key", string(raw.Key)),
				logging.Err(err))
			continue
		}
		if err := c.reader.CommitMessages(ctx, raw); err != nil {
			c.logger.Error("offset commit failed",
				logging.String("topic", raw.Topic),
				logging.Err(err))
		}
	}
}

// Close shuts the reader down.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
