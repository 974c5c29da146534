package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/davicafu/notifly/internal/notification/domain"
)

// InMemoryNotificationRepo simula NotificationRepository con la misma
// restricción de unicidad que los repos reales.
type InMemoryNotificationRepo struct {
	Notifications []*domain.Notification
	SaveErr       error
	mu            sync.Mutex
}

func NewInMemoryNotificationRepo() *InMemoryNotificationRepo {
	return &InMemoryNotificationRepo{}
}

func (r *InMemoryNotificationRepo) Save(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.SaveErr != nil {
		return nil, r.SaveErr
	}

	for _, existing := range r.Notifications {
		if existing.TransactionID == n.TransactionID &&
			existing.UserID == n.UserID &&
			existing.Type == n.Type {
			return nil, domain.ErrDuplicateRecord
		}
	}

	saved := *n
	if saved.NotificationID == uuid.Nil {
		saved.NotificationID = uuid.New()
	}
	r.Notifications = append(r.Notifications, &saved)
	return &saved, nil
}

func (r *InMemoryNotificationRepo) FindByUser(ctx context.Context, userID string, f domain.NotificationFilter) ([]*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*domain.Notification
	for _, n := range r.Notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].SentAt.After(result[j].SentAt)
	})

	if f.Offset > 0 {
		if f.Offset >= len(result) {
			return nil, nil
		}
		result = result[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(result) {
		result = result[:f.Limit]
	}
	return result, nil
}

// SendCall registra una llamada a un sender.
type SendCall struct {
	Destination string
	Subject     string
	Body        string
}

// RecorderSender simula un ChannelSender y registra cada envío. Con Err
// configurado todos los envíos fallan; con Delay simula latencia.
type RecorderSender struct {
	Ch    domain.Channel
	Err   error
	Delay time.Duration
	Calls []SendCall
	mu    sync.Mutex
}

func NewRecorderSender(ch domain.Channel) *RecorderSender {
	return &RecorderSender{Ch: ch}
}

func (s *RecorderSender) Channel() domain.Channel { return s.Ch }

func (s *RecorderSender) Send(ctx context.Context, destination, subject, body string) error {
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	s.Calls = append(s.Calls, SendCall{Destination: destination, Subject: subject, Body: body})
	s.mu.Unlock()

	return s.Err
}

// CallCount devuelve el número de envíos registrados.
func (s *RecorderSender) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}

// LastCall devuelve el último envío registrado.
func (s *RecorderSender) LastCall() SendCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls[len(s.Calls)-1]
}

// InMemoryDeliveryLog simula DeliveryLogRepository.
type InMemoryDeliveryLog struct {
	Attempts []domain.DeliveryAttempt
	Shipped  map[uuid.UUID]bool
	mu       sync.Mutex
}

func NewInMemoryDeliveryLog() *InMemoryDeliveryLog {
	return &InMemoryDeliveryLog{Shipped: make(map[uuid.UUID]bool)}
}

func (l *InMemoryDeliveryLog) AppendAttempt(ctx context.Context, a domain.DeliveryAttempt) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Attempts = append(l.Attempts, a)
	return nil
}

func (l *InMemoryDeliveryLog) FetchUnshipped(ctx context.Context, limit int) ([]domain.DeliveryAttempt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var pending []domain.DeliveryAttempt
	for _, a := range l.Attempts {
		if !l.Shipped[a.ID] {
			pending = append(pending, a)
		}
		if len(pending) == limit {
			break
		}
	}
	return pending, nil
}

func (l *InMemoryDeliveryLog) MarkShipped(ctx context.Context, ids []uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range ids {
		l.Shipped[id] = true
	}
	return nil
}

// AttemptsFor devuelve los intentos registrados para un canal.
func (l *InMemoryDeliveryLog) AttemptsFor(ch domain.Channel) []domain.DeliveryAttempt {
	l.mu.Lock()
	defer l.mu.Unlock()

	var result []domain.DeliveryAttempt
	for _, a := range l.Attempts {
		if a.Channel == ch {
			result = append(result, a)
		}
	}
	return result
}

// RecorderSink simula DeliverySink acumulando los lotes recibidos.
type RecorderSink struct {
	Batches [][]domain.DeliveryAttempt
	Err     error
	mu      sync.Mutex
}

func (s *RecorderSink) LogBatch(ctx context.Context, attempts []domain.DeliveryAttempt) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Batches = append(s.Batches, attempts)
	return nil
}

// Verificación estática
var (
	_ domain.NotificationRepository = (*InMemoryNotificationRepo)(nil)
	_ domain.ChannelSender          = (*RecorderSender)(nil)
	_ domain.DeliveryLogRepository  = (*InMemoryDeliveryLog)(nil)
	_ domain.DeliverySink           = (*RecorderSink)(nil)
)
