package events

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ErrUnprocessable marca un mensaje que ningún reintento va a arreglar:
// payload malformado, esquema equivocado, rol desconocido. El adaptador lo
// confirma y lo salta en vez de reintentarlo para siempre.
var ErrUnprocessable = errors.New("unprocessable message")

// MessageHandler procesa un mensaje del bus. Un error normal significa
// "reintenta este mismo mensaje"; un error que envuelve ErrUnprocessable
// significa "confírmalo y sáltalo".
type MessageHandler interface {
	HandleMessage(ctx context.Context, key string, payload []byte) error
}

// MessageReader es la parte de kafka.Reader que usa el adaptador.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Config() kafka.ReaderConfig
}

const (
	retryBaseDelay = 100 * time.Millisecond
	retryMaxDelay  = 10 * time.Second
)

// ConsumerAdapter es el "oído" que escucha un topic de Kafka. Separa la
// lectura (fetch) de la confirmación (commit): los commits de Kafka son
// marcas de agua acumulativas, así que un offset solo se confirma cuando su
// mensaje quedó procesado o descartado de forma explícita. Nunca se avanza
// por encima de un mensaje pendiente.
type ConsumerAdapter struct {
	reader  MessageReader
	handler MessageHandler
	log     *zap.Logger
}

func NewConsumerAdapter(reader MessageReader, handler MessageHandler, log *zap.Logger) *ConsumerAdapter {
	return &ConsumerAdapter{
		reader:  reader,
		handler: handler,
		log:     log,
	}
}

// Start inicia el bucle de consumo en una goroutine. Un worker por topic:
// los mensajes de una partición se procesan en orden de llegada.
func (c *ConsumerAdapter) Start(ctx context.Context) {
	c.log.Info("🎧 Iniciando consumidor de Kafka...",
		zap.String("topic", c.reader.Config().Topic),
		zap.Strings("brokers", c.reader.Config().Brokers),
	)

	go func() {
		for {
			// FetchMessage es bloqueante y no confirma el offset.
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					c.log.Info("Consumidor de Kafka detenido.", zap.String("topic", c.reader.Config().Topic))
					return
				}
				c.log.Error("Error al leer mensaje de Kafka", zap.Error(err))
				continue
			}

			if !c.processMessage(ctx, msg) {
				// contexto cancelado a mitad de los reintentos
				return
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.log.Error("Error al confirmar offset", zap.Error(err))
			}
		}
	}()
}

// processMessage entrega el mismo mensaje al handler hasta procesarlo o
// descartarlo, con backoff exponencial acotado entre intentos. Devuelve
// false solo si el contexto se cancela; true significa que el offset puede
// confirmarse.
func (c *ConsumerAdapter) processMessage(ctx context.Context, msg kafka.Message) bool {
	delay := retryBaseDelay
	for {
		err := c.handler.HandleMessage(ctx, string(msg.Key), msg.Value)
		if err == nil {
			return true
		}

		if errors.Is(err, ErrUnprocessable) {
			// Mensaje envenenado: se confirma para no bloquear la partición.
			c.log.Error("Mensaje descartado, imposible de procesar",
				zap.String("topic", c.reader.Config().Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			return true
		}

		c.log.Error("Mensaje no procesado, reintentando",
			zap.String("topic", c.reader.Config().Topic),
			zap.Int64("offset", msg.Offset),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}

		delay *= 2
		if delay > retryMaxDelay {
			delay = retryMaxDelay
		}
	}
}
