// Package kafka carries theme-change signals between instances on a Kafka topic.
package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/weatherwise-service/internal/config"
	"github.com/couchcryptid/weatherwise-service/internal/domain"
)

// Writer publishes theme signals to the theme topic.
// It implements domain.ThemePublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured theme topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaThemeTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishTheme writes sig as a single message keyed by its origin.
func (w *Writer) PublishTheme(ctx context.Context, sig domain.ThemeSignal) error {
	msg, err := serializeSignal(sig)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write theme signal: %w", err)
	}
	w.logger.Debug("theme signal published", "theme", sig.Theme, "origin", sig.Origin)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeSignal marshals a ThemeSignal into a Kafka message.
func serializeSignal(sig domain.ThemeSignal) (kafkago.Message, error) {
	data, err := json.Marshal(sig)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize theme signal: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(sig.Origin),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "theme", Value: []byte(sig.Theme)},
			{Key: "changed_at", Value: []byte(sig.Timestamp.Format(time.RFC3339Nano))},
		},
	}, nil
}
