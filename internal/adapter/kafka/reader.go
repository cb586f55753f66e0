package kafka

import (
	"context"
	"fmt"
	"log/slog"

	json "github.com/goccy/go-json"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/weatherwise-service/internal/config"
	"github.com/couchcryptid/weatherwise-service/internal/domain"
)

// Reader consumes theme signals from the theme topic.
// It implements domain.ThemeSubscriber.
type Reader struct {
	reader *kafkago.Reader
	logger *slog.Logger
}

// NewReader creates a consumer in groupID. Every instance must use its own
// group so that each one sees every signal. A new group starts from the
// newest offset; signals sent before the instance started are not replayed.
func NewReader(cfg *config.Config, groupID string, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaThemeTopic,
		GroupID:     groupID,
		StartOffset: kafkago.LastOffset,
		MinBytes:    1,
		MaxBytes:    1 << 20,
	})
	return &Reader{reader: r, logger: logger}
}

// NextTheme blocks for the next decodable signal. Undecodable messages are
// logged and skipped.
func (r *Reader) NextTheme(ctx context.Context) (domain.ThemeSignal, error) {
	for {
		msg, err := r.reader.ReadMessage(ctx)
		if err != nil {
			return domain.ThemeSignal{}, fmt.Errorf("read theme message: %w", err)
		}
		sig, err := mapMessage(msg)
		if err != nil {
			r.logger.Warn("skipping malformed theme message",
				"error", err,
				"partition", msg.Partition,
				"offset", msg.Offset,
			)
			continue
		}
		return sig, nil
	}
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

// mapMessage decodes a Kafka message into a ThemeSignal. When the payload
// carries no timestamp the broker time is used.
func mapMessage(msg kafkago.Message) (domain.ThemeSignal, error) {
	var sig domain.ThemeSignal
	if err := json.Unmarshal(msg.Value, &sig); err != nil {
		return domain.ThemeSignal{}, fmt.Errorf("decode theme signal: %w", err)
	}
	if !sig.Theme.Valid() {
		return domain.ThemeSignal{}, fmt.Errorf("unknown theme %q", sig.Theme)
	}
	if sig.Origin == "" {
		sig.Origin = string(msg.Key)
	}
	if sig.Timestamp.IsZero() {
		sig.Timestamp = msg.Time
	}
	return sig, nil
}
