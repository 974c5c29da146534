package application

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/davicafu/notifly/internal/notification/domain"
	"github.com/davicafu/notifly/internal/notification/infra/outbound/senders"
	"github.com/davicafu/notifly/tests/mocks"
)

func transactionNotification(content string) *domain.Notification {
	return &domain.Notification{
		NotificationID: uuid.New(),
		TransactionID:  "TX1",
		UserID:         "U1",
		Type:           domain.TypeTransactionSuccess,
		Subject:        "Transaction Processed: $50.00 Sent",
		Content:        content,
		SentAt:         time.Now().UTC(),
	}
}

func newTestDispatcher(t *testing.T, chs ...domain.ChannelSender) (*Dispatcher, *mocks.InMemoryDeliveryLog) {
	t.Helper()
	deliveryLog := mocks.NewInMemoryDeliveryLog()
	d := NewDispatcher(chs, senders.NewStaticResolver("example.com"), deliveryLog, time.Second, 8, zap.NewNop())
	return d, deliveryLog
}

func TestDispatch_TransactionUsesEmailAndSMS(t *testing.T) {
	email := mocks.NewRecorderSender(domain.ChannelEmail)
	sms := mocks.NewRecorderSender(domain.ChannelSMS)
	push := mocks.NewRecorderSender(domain.ChannelPush)
	d, deliveryLog := newTestDispatcher(t, email, sms, push)

	d.Dispatch(transactionNotification("short content"))
	d.Close()

	assert.Equal(t, 1, email.CallCount())
	assert.Equal(t, 1, sms.CallCount())
	assert.Equal(t, 0, push.CallCount())

	// Cada intento queda registrado con sus tiempos
	assert.Len(t, deliveryLog.Attempts, 2)
	for _, a := range deliveryLog.Attempts {
		assert.True(t, a.Success)
		assert.False(t, a.FinishedAt.Before(a.StartedAt))
	}
}

func TestDispatch_RewardUsesOnlyPush(t *testing.T) {
	email := mocks.NewRecorderSender(domain.ChannelEmail)
	sms := mocks.NewRecorderSender(domain.ChannelSMS)
	push := mocks.NewRecorderSender(domain.ChannelPush)
	d, deliveryLog := newTestDispatcher(t, email, sms, push)

	d.Dispatch(&domain.Notification{
		NotificationID: uuid.New(),
		TransactionID:  "TX9",
		UserID:         "U3",
		Type:           domain.TypeRewardGranted,
		Subject:        "Congratulations on Your Reward!",
		Content:        "reward content",
		SentAt:         time.Now().UTC(),
	})
	d.Close()

	assert.Equal(t, 0, email.CallCount())
	assert.Equal(t, 0, sms.CallCount())
	assert.Equal(t, 1, push.CallCount())
	assert.Equal(t, "U3", push.LastCall().Destination)
	assert.Len(t, deliveryLog.Attempts, 1)
	assert.Equal(t, domain.ChannelPush, deliveryLog.Attempts[0].Channel)
}

func TestDispatch_ChannelFailureIsIsolated(t *testing.T) {
	email := mocks.NewRecorderSender(domain.ChannelEmail)
	email.Err = errors.New("smtp unreachable")
	sms := mocks.NewRecorderSender(domain.ChannelSMS)
	d, deliveryLog := newTestDispatcher(t, email, sms)

	d.Dispatch(transactionNotification("short content"))
	d.Close()

	// El fallo del email no impide el intento de SMS
	assert.Equal(t, 1, email.CallCount())
	assert.Equal(t, 1, sms.CallCount())

	emailAttempts := deliveryLog.AttemptsFor(domain.ChannelEmail)
	assert.Len(t, emailAttempts, 1)
	assert.False(t, emailAttempts[0].Success)
	assert.Contains(t, emailAttempts[0].Cause, "smtp unreachable")

	smsAttempts := deliveryLog.AttemptsFor(domain.ChannelSMS)
	assert.Len(t, smsAttempts, 1)
	assert.True(t, smsAttempts[0].Success)
}

func TestDispatch_SMSContentIsTruncated(t *testing.T) {
	email := mocks.NewRecorderSender(domain.ChannelEmail)
	sms := mocks.NewRecorderSender(domain.ChannelSMS)
	d, _ := newTestDispatcher(t, email, sms)

	longContent := strings.Repeat("x", 500)
	d.Dispatch(transactionNotification(longContent))
	d.Close()

	// El email recibe el contenido completo, el SMS la versión recortada
	assert.Equal(t, longContent, email.LastCall().Body)
	smsBody := sms.LastCall().Body
	assert.Len(t, smsBody, domain.SMSMaxLen)
	assert.True(t, strings.HasPrefix(longContent, smsBody))
}

func TestDispatch_SlowChannelHitsDeadline(t *testing.T) {
	slow := mocks.NewRecorderSender(domain.ChannelPush)
	slow.Delay = 200 * time.Millisecond

	deliveryLog := mocks.NewInMemoryDeliveryLog()
	d := NewDispatcher([]domain.ChannelSender{slow},
		senders.NewStaticResolver("example.com"), deliveryLog, 20*time.Millisecond, 8, zap.NewNop())

	d.Dispatch(&domain.Notification{
		NotificationID: uuid.New(),
		TransactionID:  "TX5",
		UserID:         "U5",
		Type:           domain.TypeRewardGranted,
		Subject:        "s",
		Content:        "c",
		SentAt:         time.Now().UTC(),
	})
	d.Close()

	attempts := deliveryLog.AttemptsFor(domain.ChannelPush)
	assert.Len(t, attempts, 1)
	assert.False(t, attempts[0].Success)
	assert.Contains(t, attempts[0].Cause, "context deadline exceeded")
}

func TestDispatch_MissingSenderIsSkipped(t *testing.T) {
	// Sin sender de push configurado: la recompensa no revienta el dispatch
	email := mocks.NewRecorderSender(domain.ChannelEmail)
	d, deliveryLog := newTestDispatcher(t, email)

	d.Dispatch(&domain.Notification{
		NotificationID: uuid.New(),
		TransactionID:  "TX6",
		UserID:         "U6",
		Type:           domain.TypeRewardGranted,
		Subject:        "s",
		Content:        "c",
		SentAt:         time.Now().UTC(),
	})
	d.Close()

	assert.Equal(t, 0, email.CallCount())
	assert.Empty(t, deliveryLog.Attempts)
}
