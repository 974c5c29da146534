package events

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	sharedBus "github.com/davicafu/notifly/internal/shared/infra/platform/bus"
)

// KafkaPublisher escribe payloads binarios en el topic del writer.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewKafkaPublisher(writer *kafka.Writer, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, log: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, key string, payload []byte) error {
	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("Error publishing to Kafka", zap.Error(err))
		return err
	}

	p.log.Debug("Event published successfully",
		zap.String("topic", p.writer.Topic),
		zap.String("key", key),
		zap.Int("bytes", len(payload)),
	)
	return nil
}

// Verificación estática
var _ sharedBus.Publisher = (*KafkaPublisher)(nil)
