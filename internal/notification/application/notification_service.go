package application

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/davicafu/notifly/internal/notification/domain"
	sharedCache "github.com/davicafu/notifly/internal/shared/infra/platform/cache"
	sharedUtils "github.com/davicafu/notifly/internal/shared/infra/utils"
)

// NotificationService orquesta la persistencia y la consulta de
// notificaciones. La ruta de consulta es independiente de la ingesta y
// solo lee.
type NotificationService struct {
	repo  domain.NotificationRepository
	cache sharedCache.Cache
	log   *zap.Logger
}

func NewNotificationService(repo domain.NotificationRepository, cache sharedCache.Cache, log *zap.Logger) *NotificationService {
	return &NotificationService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// SaveNotification persiste la notificación y devuelve la copia con el
// NotificationID asignado por el repositorio. ErrDuplicateRecord se propaga
// tal cual: el consumidor decide tratarlo como ya-procesado.
func (s *NotificationService) SaveNotification(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	saved, err := s.repo.Save(ctx, n)
	if err != nil {
		return nil, err
	}

	s.log.Info("Notification saved",
		zap.String("user_id", saved.UserID),
		zap.String("transaction_id", saved.TransactionID),
		zap.String("type", string(saved.Type)),
	)

	// La lista cacheada del usuario queda obsoleta; se invalida sin bloquear.
	sharedCache.AsyncDelete(s.cache, domain.CacheKeyByUser(saved.UserID), s.log)

	return saved, nil
}

// GetNotificationsByUser devuelve las notificaciones del usuario. Si no hay
// ninguna devuelve ErrNoNotifications en vez de una lista vacía.
func (s *NotificationService) GetNotificationsByUser(ctx context.Context, userID string, f domain.NotificationFilter) ([]*domain.Notification, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrInvalidUserID
	}

	// 1. Intentar cache (solo la consulta por defecto se cachea)
	cacheable := f == domain.NotificationFilter{}
	if s.cache != nil && cacheable {
		var cached []*domain.Notification
		if ok, _ := s.cache.Get(ctx, domain.CacheKeyByUser(userID), &cached); ok && len(cached) > 0 {
			return cached, nil
		}
	}

	// 2. Ir al repo con reintentos
	var notifications []*domain.Notification
	err := sharedUtils.Retry(ctx, 3, 100*time.Millisecond, func() error {
		var err error
		notifications, err = s.repo.FindByUser(ctx, userID, f)
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(notifications) == 0 {
		s.log.Info("No notifications found", zap.String("user_id", userID))
		return nil, domain.ErrNoNotifications
	}

	// 3. Actualizar cache en background sin bloquear la respuesta
	if cacheable {
		sharedCache.AsyncSet(s.cache, domain.CacheKeyByUser(userID), notifications, 60, s.log)
	}

	return notifications, nil
}
