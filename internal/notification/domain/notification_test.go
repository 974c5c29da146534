package domain

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func testTransactionEvent() TransactionEvent {
	return TransactionEvent{
		TransactionID: "TX1",
		SenderID:      "U1",
		ReceiverID:    "U2",
		Amount:        decimal.NewFromFloat(50.00),
		Status:        TxSuccess,
		CreatedAt:     testNow.Add(-time.Minute),
		UpdatedAt:     testNow.Add(-time.Minute),
	}
}

func TestBuildNotification_SenderSuccess(t *testing.T) {
	n, err := BuildNotification(testTransactionEvent(), RoleSender, testNow)
	assert.NoError(t, err)
	assert.Equal(t, "U1", n.UserID)
	assert.Equal(t, "TX1", n.TransactionID)
	assert.Equal(t, TypeTransactionSuccess, n.Type)
	assert.Contains(t, n.Subject, "50.00")
	assert.Contains(t, n.Content, "U2")
	assert.Contains(t, n.Content, "TX1")
	// SentAt es el reloj de proceso, no el timestamp del evento
	assert.Equal(t, testNow, n.SentAt)
}

func TestBuildNotification_SenderFailed(t *testing.T) {
	evt := testTransactionEvent()
	evt.Status = TxFailed

	n, err := BuildNotification(evt, RoleSender, testNow)
	assert.NoError(t, err)
	assert.Equal(t, TypeTransactionFailed, n.Type)
	assert.Contains(t, n.Subject, "50.00")
}

func TestBuildNotification_Receiver(t *testing.T) {
	n, err := BuildNotification(testTransactionEvent(), RoleReceiver, testNow)
	assert.NoError(t, err)
	assert.Equal(t, "U2", n.UserID)
	assert.Equal(t, TypeTransactionSuccess, n.Type)
	assert.Contains(t, n.Subject, "Payment Received")
	assert.Contains(t, n.Content, "U1") // el receptor ve al emisor
}

func TestBuildNotification_Reward(t *testing.T) {
	evt := RewardEvent{
		TransactionID: "TX9",
		ReceiverID:    "U3",
		Amount:        decimal.NewFromFloat(10.00),
		CreatedAt:     testNow,
	}

	n, err := BuildNotification(evt, RoleReward, testNow)
	assert.NoError(t, err)
	assert.Equal(t, "U3", n.UserID)
	assert.Equal(t, TypeRewardGranted, n.Type)
	assert.Equal(t, "Congratulations on Your Reward!", n.Subject)
	assert.Contains(t, n.Content, "10.00")

	// Las recompensas solo se entregan por push
	assert.Equal(t, []Channel{ChannelPush}, ChannelsFor(n.Type))
}

func TestBuildNotification_UnsupportedRole(t *testing.T) {
	_, err := BuildNotification(testTransactionEvent(), EventRole("AUDITOR"), testNow)
	assert.ErrorIs(t, err, ErrUnsupportedRole)
}

func TestBuildNotification_RoleEventMismatch(t *testing.T) {
	// Un evento de recompensa no puede construirse con rol de emisor...
	_, err := BuildNotification(RewardEvent{TransactionID: "TX9", ReceiverID: "U3"}, RoleSender, testNow)
	assert.ErrorIs(t, err, ErrUnsupportedRole)

	// ...ni uno de transacción con rol de recompensa.
	_, err = BuildNotification(testTransactionEvent(), RoleReward, testNow)
	assert.ErrorIs(t, err, ErrUnsupportedRole)
}

func TestChannelsFor(t *testing.T) {
	assert.Equal(t, []Channel{ChannelEmail, ChannelSMS}, ChannelsFor(TypeTransactionSuccess))
	assert.Equal(t, []Channel{ChannelEmail, ChannelSMS}, ChannelsFor(TypeTransactionFailed))
	assert.Equal(t, []Channel{ChannelPush}, ChannelsFor(TypeRewardGranted))
	assert.Nil(t, ChannelsFor(NotificationType("UNKNOWN")))
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", 250)

	truncated := Truncate(long, SMSMaxLen)
	assert.Len(t, truncated, SMSMaxLen)
	assert.True(t, strings.HasPrefix(long, truncated))

	// Contenido más corto que el límite queda intacto
	assert.Equal(t, "short", Truncate("short", SMSMaxLen))
	assert.Equal(t, "", Truncate("", SMSMaxLen))
	assert.Equal(t, "", Truncate("abc", -1))
}

func TestTruncate_NeverSplitsRunes(t *testing.T) {
	// "€" ocupa 3 bytes: 100 no es múltiplo de 3, el corte ingenuo partiría
	// una runa por la mitad
	multibyte := strings.Repeat("€", 50)

	truncated := Truncate(multibyte, SMSMaxLen)
	assert.LessOrEqual(t, len(truncated), SMSMaxLen)
	assert.True(t, utf8.ValidString(truncated))
	assert.True(t, strings.HasPrefix(multibyte, truncated))

	// Con contenido ASCII el corte sigue siendo exacto
	assert.Len(t, Truncate(strings.Repeat("x", 500), SMSMaxLen), SMSMaxLen)
}
