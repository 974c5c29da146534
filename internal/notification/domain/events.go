package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TxStatus es el estado final de una transacción según el servicio emisor.
type TxStatus string

const (
	TxSuccess TxStatus = "SUCCESS"
	TxFailed  TxStatus = "FAILED"
)

// EventRole indica a qué parte de la transacción se notifica. Lo fija el
// topic por el que llegó el evento, nunca el contenido del payload.
type EventRole string

const (
	RoleSender   EventRole = "SENDER"
	RoleReceiver EventRole = "RECEIVER"
	RoleReward   EventRole = "REWARD"
)

// Event es la unión de los dos tipos de evento que llegan por el bus.
// Los eventos son inmutables una vez decodificados.
type Event interface {
	CorrelationID() string
	isEvent()
}

// TransactionEvent representa una transferencia entre dos usuarios.
type TransactionEvent struct {
	TransactionID string
	SenderID      string
	ReceiverID    string
	Amount        decimal.Decimal
	Status        TxStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (e TransactionEvent) CorrelationID() string { return e.TransactionID }
func (TransactionEvent) isEvent()                {}

// RewardEvent representa una recompensa concedida a un usuario.
type RewardEvent struct {
	TransactionID string
	ReceiverID    string
	Amount        decimal.Decimal
	CreatedAt     time.Time
}

func (e RewardEvent) CorrelationID() string { return e.TransactionID }
func (RewardEvent) isEvent()                {}

// Verificación estática de que ambos tipos cierran la unión.
var (
	_ Event = TransactionEvent{}
	_ Event = RewardEvent{}
)
