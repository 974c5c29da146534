package codec

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davicafu/notifly/internal/notification/domain"
)

var codecNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func encodedTransaction(t *testing.T) ([]byte, domain.TransactionEvent) {
	t.Helper()
	evt := domain.TransactionEvent{
		TransactionID: "TX1",
		SenderID:      "U1",
		ReceiverID:    "U2",
		Amount:        decimal.NewFromFloat(50.00),
		Status:        domain.TxSuccess,
		CreatedAt:     codecNow,
		UpdatedAt:     codecNow,
	}
	return AppendTransactionEvent(nil, evt), evt
}

func TestDecodeTransactionEvent_RoundTrip(t *testing.T) {
	raw, original := encodedTransaction(t)

	decoded, err := DecodeTransactionEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, original.TransactionID, decoded.TransactionID)
	assert.Equal(t, original.SenderID, decoded.SenderID)
	assert.Equal(t, original.ReceiverID, decoded.ReceiverID)
	assert.True(t, decoded.Amount.Equal(original.Amount))
	assert.Equal(t, domain.TxSuccess, decoded.Status)
	assert.Equal(t, codecNow, decoded.CreatedAt)
	assert.Equal(t, codecNow, decoded.UpdatedAt)
}

func TestDecodeTransactionEvent_FailedStatus(t *testing.T) {
	evt := domain.TransactionEvent{
		TransactionID: "TX2",
		SenderID:      "U1",
		ReceiverID:    "U2",
		Amount:        decimal.NewFromFloat(12.34),
		Status:        domain.TxFailed,
		CreatedAt:     codecNow,
		UpdatedAt:     codecNow,
	}

	decoded, err := DecodeTransactionEvent(AppendTransactionEvent(nil, evt))
	require.NoError(t, err)
	assert.Equal(t, domain.TxFailed, decoded.Status)
}

func TestDecodeRewardEvent_RoundTrip(t *testing.T) {
	evt := domain.RewardEvent{
		TransactionID: "TX9",
		ReceiverID:    "U3",
		Amount:        decimal.NewFromFloat(10.00),
		CreatedAt:     codecNow,
	}

	decoded, err := DecodeRewardEvent(AppendRewardEvent(nil, evt))
	require.NoError(t, err)
	assert.Equal(t, "TX9", decoded.TransactionID)
	assert.Equal(t, "U3", decoded.ReceiverID)
	assert.True(t, decoded.Amount.Equal(evt.Amount))
}

func TestDecodeTransactionEvent_Truncated(t *testing.T) {
	raw, _ := encodedTransaction(t)

	// Cualquier prefijo estricto debe fallar, nunca devolver un evento a medias
	for cut := 1; cut < len(raw); cut++ {
		_, err := DecodeTransactionEvent(raw[:cut])
		assert.ErrorIs(t, err, ErrMalformedEvent, "cut=%d", cut)
	}
}

func TestDecodeTransactionEvent_Garbage(t *testing.T) {
	payloads := [][]byte{
		{0xff, 0xff, 0xff},
		{0x00, 0x01, 0x02, 0x03},
		[]byte("not a protobuf payload"),
	}
	for _, raw := range payloads {
		_, err := DecodeTransactionEvent(raw)
		assert.ErrorIs(t, err, ErrMalformedEvent)
	}
}

func TestDecodeTransactionEvent_EmptyPayload(t *testing.T) {
	// Payload vacío = todos los campos requeridos ausentes
	_, err := DecodeTransactionEvent(nil)
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestDecode_CrossSchemaAlwaysFails(t *testing.T) {
	txRaw, _ := encodedTransaction(t)
	rwRaw := AppendRewardEvent(nil, domain.RewardEvent{
		TransactionID: "TX9",
		ReceiverID:    "U3",
		Amount:        decimal.NewFromFloat(10.00),
		CreatedAt:     codecNow,
	})

	// Un payload de recompensa con el esquema de transacción y viceversa
	// deben fallar por wire type o por campo desconocido.
	_, err := DecodeTransactionEvent(rwRaw)
	assert.ErrorIs(t, err, ErrMalformedEvent)

	_, err = DecodeRewardEvent(txRaw)
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestDecodeTransactionEvent_NegativeAmount(t *testing.T) {
	evt := domain.TransactionEvent{
		TransactionID: "TX3",
		SenderID:      "U1",
		ReceiverID:    "U2",
		Amount:        decimal.NewFromFloat(-5.00),
		Status:        domain.TxSuccess,
		CreatedAt:     codecNow,
		UpdatedAt:     codecNow,
	}

	_, err := DecodeTransactionEvent(AppendTransactionEvent(nil, evt))
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestDecodeRewardEvent_MissingReceiver(t *testing.T) {
	evt := domain.RewardEvent{
		TransactionID: "TX9",
		Amount:        decimal.NewFromFloat(10.00),
		CreatedAt:     codecNow,
	}

	_, err := DecodeRewardEvent(AppendRewardEvent(nil, evt))
	assert.ErrorIs(t, err, ErrMalformedEvent)
}
