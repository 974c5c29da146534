package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/davicafu/notifly/internal/notification/domain"
	"github.com/davicafu/notifly/tests/mocks"
)

func newTestService() (*NotificationService, *mocks.InMemoryNotificationRepo, *mocks.DummyCache) {
	repo := mocks.NewInMemoryNotificationRepo()
	cache := mocks.NewDummyCache()
	return NewNotificationService(repo, cache, zap.NewNop()), repo, cache
}

func sampleNotification(txID, userID string) *domain.Notification {
	return &domain.Notification{
		TransactionID: txID,
		UserID:        userID,
		Type:          domain.TypeTransactionSuccess,
		Subject:       "Transaction Processed: $50.00 Sent",
		Content:       "Dear Valued Customer,\n...",
		SentAt:        time.Now().UTC(),
	}
}

func TestSaveNotification_AssignsID(t *testing.T) {
	svc, repo, _ := newTestService()

	saved, err := svc.SaveNotification(context.Background(), sampleNotification("TX1", "U1"))
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, saved.NotificationID)
	assert.Len(t, repo.Notifications, 1)
}

func TestSaveNotification_DuplicateIsPropagated(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.SaveNotification(context.Background(), sampleNotification("TX1", "U1"))
	assert.NoError(t, err)

	// Mismo (transactionId, userId, type): el repo rechaza y el error llega tal cual
	_, err = svc.SaveNotification(context.Background(), sampleNotification("TX1", "U1"))
	assert.ErrorIs(t, err, domain.ErrDuplicateRecord)
	assert.Len(t, repo.Notifications, 1)
}

func TestSaveNotification_InvalidatesCachedList(t *testing.T) {
	svc, _, cache := newTestService()

	stale := []*domain.Notification{sampleNotification("TX-OLD", "U1")}
	cache.SetForTest(domain.CacheKeyByUser("U1"), stale)

	_, err := svc.SaveNotification(context.Background(), sampleNotification("TX1", "U1"))
	assert.NoError(t, err)

	// La invalidación es asíncrona
	assert.Eventually(t, func() bool {
		var cached []*domain.Notification
		ok, _ := cache.Get(context.Background(), domain.CacheKeyByUser("U1"), &cached)
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestGetNotificationsByUser_ReturnsSortedDesc(t *testing.T) {
	svc, repo, _ := newTestService()

	older := sampleNotification("TX1", "U1")
	older.SentAt = time.Now().UTC().Add(-time.Hour)
	newer := sampleNotification("TX2", "U1")
	repo.Save(context.Background(), older)
	repo.Save(context.Background(), newer)

	result, err := svc.GetNotificationsByUser(context.Background(), "U1", domain.NotificationFilter{})
	assert.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, "TX2", result[0].TransactionID)
	assert.Equal(t, "TX1", result[1].TransactionID)
}

func TestGetNotificationsByUser_EmptyUserID(t *testing.T) {
	svc, _, _ := newTestService()

	for _, userID := range []string{"", "   "} {
		_, err := svc.GetNotificationsByUser(context.Background(), userID, domain.NotificationFilter{})
		assert.ErrorIs(t, err, domain.ErrInvalidUserID)
	}
}

func TestGetNotificationsByUser_NoResults(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.GetNotificationsByUser(context.Background(), "NOBODY", domain.NotificationFilter{})
	assert.ErrorIs(t, err, domain.ErrNoNotifications)
}

func TestGetNotificationsByUser_CacheHitSkipsRepo(t *testing.T) {
	svc, _, cache := newTestService()

	// El repo está vacío: si la consulta llegara a él devolvería ErrNoNotifications
	cached := []*domain.Notification{sampleNotification("TX1", "U1")}
	cached[0].NotificationID = uuid.New()
	cache.SetForTest(domain.CacheKeyByUser("U1"), cached)

	result, err := svc.GetNotificationsByUser(context.Background(), "U1", domain.NotificationFilter{})
	assert.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, "TX1", result[0].TransactionID)
}

func TestGetNotificationsByUser_FilteredQueryBypassesCache(t *testing.T) {
	svc, repo, cache := newTestService()

	cache.SetForTest(domain.CacheKeyByUser("U1"), []*domain.Notification{sampleNotification("TX-CACHED", "U1")})
	repo.Save(context.Background(), sampleNotification("TX1", "U1"))
	repo.Save(context.Background(), sampleNotification("TX2", "U1"))

	result, err := svc.GetNotificationsByUser(context.Background(), "U1", domain.NotificationFilter{Limit: 1})
	assert.NoError(t, err)
	assert.Len(t, result, 1)
	assert.NotEqual(t, "TX-CACHED", result[0].TransactionID)
}
