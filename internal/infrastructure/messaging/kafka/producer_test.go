package kafka

import (
	"context"
	"encoding/json"
	"testing"

	segkafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/config"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/domain/record"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
)

type captureWriter struct {
	messages []segkafka.Message
	err      error
	closed   bool
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...segkafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *captureWriter) Close() error {
	w.closed = true
	return nil
}

func TestTopicFor(t *testing.T) {
	assert.Equal(t, TopicReportSubmitted, TopicFor(record.EventReportSubmitted))
	assert.Equal(t, TopicReportProcessed, TopicFor(record.EventReportProcessed))
	assert.Equal(t, TopicReportSubmitted, TopicFor("something.else"))
}

func TestProducer_PublishSubmittedEvent(t *testing.T) {
	writer := &captureWriter{}
	producer := NewProducerWithWriter(writer, nil)

	event := record.NewReportSubmittedEvent("Patient has pneumonia.", "report.txt")
	err := producer.Publish(context.Background(), record.EventReportSubmitted, event)
	require.NoError(t, err)

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, TopicReportSubmitted, msg.Topic)
	assert.Equal(t, event.AggregateID(), string(msg.Key))

	var decoded record.ReportSubmittedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "Patient has pneumonia.", decoded.Text)
	assert.Equal(t, "report.txt", decoded.Filename)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, record.EventReportSubmitted, headers["event_name"])
	assert.Equal(t, event.EventID(), headers["event_id"])
}

func TestProducer_WriteFailure(t *testing.T) {
	writer := &captureWriter{err: assert.AnError}
	producer := NewProducerWithWriter(writer, nil)

	event := record.NewReportSubmittedEvent("text", "f.txt")
	err := producer.Publish(context.Background(), record.EventReportSubmitted, event)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeExternalService))
}

func TestProducer_PublishAfterClose(t *testing.T) {
	writer := &captureWriter{}
	producer := NewProducerWithWriter(writer, nil)
	require.NoError(t, producer.Close())
	assert.True(t, writer.closed)

	event := record.NewReportSubmittedEvent("text", "f.txt")
	err := producer.Publish(context.Background(), record.EventReportSubmitted, event)
	assert.ErrorIs(t, err, ErrProducerClosed)

	// Closing twice is a no-op.
	assert.NoError(t, producer.Close())
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(config.KafkaConfig{}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}
