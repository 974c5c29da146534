package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	sharedBus "github.com/davicafu/notifly/internal/shared/infra/platform/bus"
)

// Message es la unidad que circula por el bus en memoria.
type Message struct {
	Key   string
	Value []byte
}

// InMemoryEventBus implementa un bus de eventos para UN solo topic, útil en
// despliegues locales y tests. A diferencia de Kafka no hay reentrega: un
// mensaje rechazado por el handler solo queda en el log.
type InMemoryEventBus struct {
	subscribers []chan Message
	mu          sync.RWMutex
	topic       string
}

// Verificación estática
var _ sharedBus.Publisher = (*InMemoryEventBus)(nil)

// NewInMemoryEventBus crea un bus de eventos para un topic específico.
func NewInMemoryEventBus(topic string) *InMemoryEventBus {
	return &InMemoryEventBus{
		subscribers: make([]chan Message, 0),
		topic:       topic,
	}
}

// Publish envía el payload a todos los suscriptores de este bus.
func (b *InMemoryEventBus) Publish(ctx context.Context, key string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	msg := Message{Key: key, Value: payload}
	for _, subChan := range b.subscribers {
		select {
		case subChan <- msg:
		default:
			// suscriptor saturado, se descarta para no bloquear al productor
		}
	}
	return nil
}

// Subscribe suscribe un nuevo oyente a este bus.
func (b *InMemoryEventBus) Subscribe(bufferSize int) <-chan Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	subChan := make(chan Message, bufferSize)
	b.subscribers = append(b.subscribers, subChan)
	return subChan
}

// BackgroundConsumerChan procesa en una goroutine los mensajes de un canal
// del bus en memoria con el mismo handler que usa el adaptador de Kafka.
func BackgroundConsumerChan(ctx context.Context, ch <-chan Message, handler MessageHandler, log *zap.Logger) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				log.Info("In-memory consumer stopped")
				return
			case msg := <-ch:
				if err := handler.HandleMessage(ctx, msg.Key, msg.Value); err != nil {
					log.Warn("Failed to process in-memory message", zap.Error(err))
				}
			}
		}
	}()
}
