package kafka

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/couchcryptid/wx-station/internal/config"
	"github.com/couchcryptid/wx-station/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces relay messages. The topic is taken from each message, so one
// writer serves every relay job.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured brokers.
func NewWriter(cfg *config.RelayConfig, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish writes msgs in a single WriteMessages call.
func (w *Writer) Publish(ctx context.Context, msgs ...domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	out := make([]kafkago.Message, len(msgs))
	for i := range msgs {
		out[i] = toKafkaMessage(msgs[i])
	}
	if err := w.writer.WriteMessages(ctx, out...); err != nil {
		return err
	}
	w.logger.Debug("messages published", "count", len(msgs), "topic", msgs[0].Topic)
	return nil
}

// Close flushes pending writes and closes the producer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

// toKafkaMessage converts a domain message, sorting headers by key so output is
// deterministic.
func toKafkaMessage(m domain.Message) kafkago.Message {
	headers := make([]kafkago.Header, 0, len(m.Headers))
	for _, k := range slices.Sorted(maps.Keys(m.Headers)) {
		headers = append(headers, kafkago.Header{Key: k, Value: []byte(m.Headers[k])})
	}
	return kafkago.Message{
		Topic:   m.Topic,
		Key:     m.Key,
		Value:   m.Value,
		Headers: headers,
	}
}
