package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ---------- Errores de dominio ----------
var (
	ErrUnsupportedRole = errors.New("unsupported event role")
	ErrDuplicateRecord = errors.New("notification already persisted")
	ErrNoNotifications = errors.New("no notifications for user")
	ErrInvalidUserID   = errors.New("invalid user id")
)

// ---------- Interfaces (Ports) ----------

// NotificationRepository define la persistencia de notificaciones.
type NotificationRepository interface {
	// Save asigna NotificationID y persiste. Debe devolver ErrDuplicateRecord
	// si ya existe una fila con la misma (transaction_id, user_id, type).
	Save(ctx context.Context, n *Notification) (*Notification, error)

	// FindByUser devuelve las notificaciones del usuario ordenadas por
	// sent_at descendente. Lista vacía si no hay ninguna.
	FindByUser(ctx context.Context, userID string, f NotificationFilter) ([]*Notification, error)
}

// DeliveryLogRepository registra los intentos de entrega por canal. Los
// intentos quedan pendientes de envío al sink analítico hasta que el relayer
// los marca.
type DeliveryLogRepository interface {
	AppendAttempt(ctx context.Context, a DeliveryAttempt) error
	FetchUnshipped(ctx context.Context, limit int) ([]DeliveryAttempt, error)
	MarkShipped(ctx context.Context, ids []uuid.UUID) error
}

// DeliverySink recibe lotes de intentos de entrega para analítica.
type DeliverySink interface {
	LogBatch(ctx context.Context, attempts []DeliveryAttempt) error
}

// ChannelSender es el contrato mínimo con el transporte de un canal.
type ChannelSender interface {
	Channel() Channel
	Send(ctx context.Context, destination, subject, body string) error
}

// ContactResolver resuelve las direcciones de contacto de un usuario. La
// implementación por defecto las sintetiza a partir del userId; en producción
// esto es un directorio de contactos externo.
type ContactResolver interface {
	EmailFor(userID string) string
	PhoneFor(userID string) string
	PushTokenFor(userID string) string
}

// ---------- Tipos de filtrado / paginación ----------

// NotificationFilter acota la consulta por usuario.
type NotificationFilter struct {
	Limit  int
	Offset int
}

// ---------- Helpers comunes (cache keys, etc.) ----------

// CacheKeyByUser forma una key consistente para cache usando el userId.
func CacheKeyByUser(userID string) string {
	return fmt.Sprintf("notification:user:%s", userID)
}
