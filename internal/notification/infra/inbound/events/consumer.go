package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	infraEvents "github.com/davicafu/notifly/internal/infra/events"
	"github.com/davicafu/notifly/internal/notification/domain"
	"github.com/davicafu/notifly/internal/notification/infra/codec"
)

// NotificationService es lo que el consumidor necesita de la aplicación.
type NotificationService interface {
	SaveNotification(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
}

// Dispatcher lanza la entrega multicanal sin bloquear al consumidor.
type Dispatcher interface {
	Dispatch(n *domain.Notification)
}

// NotificationConsumer procesa los mensajes de UN topic, con el rol fijado
// por la suscripción: el rol viene del topic, nunca del payload. La secuencia
// decodificar → construir → persistir es síncrona. Los fallos de persistencia
// se devuelven tal cual para que el bus reintente el mismo mensaje; los de
// decodificación y construcción son permanentes y se marcan como
// imposibles de procesar para que el bus los descarte. La entrega por
// canales es asíncrona y sus fallos nunca llegan aquí.
type NotificationConsumer struct {
	role       domain.EventRole
	service    NotificationService
	dispatcher Dispatcher
	log        *zap.Logger
}

func NewNotificationConsumer(role domain.EventRole, service NotificationService, dispatcher Dispatcher, log *zap.Logger) *NotificationConsumer {
	return &NotificationConsumer{
		role:       role,
		service:    service,
		dispatcher: dispatcher,
		log:        log,
	}
}

func (c *NotificationConsumer) HandleMessage(ctx context.Context, key string, payload []byte) error {
	start := time.Now()

	evt, err := c.decode(payload)
	if err != nil {
		c.log.Error("Failed to decode event",
			zap.String("role", string(c.role)),
			zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
			zap.Error(err),
		)
		// Un payload malformado no mejora con reintentos.
		return fmt.Errorf("%w: %w", infraEvents.ErrUnprocessable, err)
	}

	c.log.Info("Processing event",
		zap.String("role", string(c.role)),
		zap.String("transaction_id", evt.CorrelationID()),
	)

	notification, err := domain.BuildNotification(evt, c.role, time.Now().UTC())
	if err != nil {
		c.log.Error("Failed to build notification",
			zap.String("role", string(c.role)),
			zap.String("transaction_id", evt.CorrelationID()),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %w", infraEvents.ErrUnprocessable, err)
	}

	saveCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	saved, err := c.service.SaveNotification(saveCtx, notification)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateRecord) {
			// Reentrega del bus: la notificación ya se procesó antes.
			c.log.Info("Duplicate event ignored",
				zap.String("transaction_id", evt.CorrelationID()),
				zap.String("user_id", notification.UserID),
			)
			return nil
		}
		return fmt.Errorf("save notification for tx %s: %w", evt.CorrelationID(), err)
	}

	// Fire-and-forget: la ingesta del siguiente evento no espera a los canales.
	c.dispatcher.Dispatch(saved)

	c.log.Info("Completed processing",
		zap.String("role", string(c.role)),
		zap.String("transaction_id", evt.CorrelationID()),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return nil
}

// decode elige el esquema binario según el rol de la suscripción. Un payload
// del esquema contrario falla siempre, nunca decodifica con campos basura.
func (c *NotificationConsumer) decode(payload []byte) (domain.Event, error) {
	switch c.role {
	case domain.RoleSender, domain.RoleReceiver:
		evt, err := codec.DecodeTransactionEvent(payload)
		if err != nil {
			return nil, err
		}
		return evt, nil
	case domain.RoleReward:
		evt, err := codec.DecodeRewardEvent(payload)
		if err != nil {
			return nil, err
		}
		return evt, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedRole, c.role)
	}
}
