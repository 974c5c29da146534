package domain

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// NotificationType clasifica el mensaje que recibe el usuario.
type NotificationType string

const (
	TypeTransactionSuccess NotificationType = "TRANSACTION_SUCCESS"
	TypeTransactionFailed  NotificationType = "TRANSACTION_FAILED"
	TypeRewardGranted      NotificationType = "REWARD_GRANTED"
)

// Channel es el medio de entrega de una notificación.
type Channel string

const (
	ChannelEmail Channel = "EMAIL"
	ChannelSMS   Channel = "SMS"
	ChannelPush  Channel = "PUSH"
)

// SMSMaxLen es el máximo de caracteres que admite el canal SMS.
const SMSMaxLen = 100

// Notification es el registro persistido de un mensaje para un usuario.
// Se persiste una fila por notificación lógica; el resultado por canal se
// registra aparte como DeliveryAttempt.
type Notification struct {
	NotificationID uuid.UUID        `json:"notification_id"`
	TransactionID  string           `json:"transaction_id"`
	UserID         string           `json:"user_id"`
	Type           NotificationType `json:"type"`
	Subject        string           `json:"subject"`
	Content        string           `json:"content"`
	SentAt         time.Time        `json:"sent_at"`
}

// DeliveryAttempt registra el resultado y los tiempos de un intento de
// entrega en un canal concreto.
type DeliveryAttempt struct {
	ID             uuid.UUID
	NotificationID uuid.UUID
	TransactionID  string
	UserID         string
	Channel        Channel
	Destination    string
	StartedAt      time.Time
	FinishedAt     time.Time
	Success        bool
	Cause          string
}

func (a DeliveryAttempt) Elapsed() time.Duration {
	return a.FinishedAt.Sub(a.StartedAt)
}

// ChannelsFor devuelve los canales aplicables a cada tipo de notificación.
func ChannelsFor(t NotificationType) []Channel {
	switch t {
	case TypeTransactionSuccess, TypeTransactionFailed:
		return []Channel{ChannelEmail, ChannelSMS}
	case TypeRewardGranted:
		return []Channel{ChannelPush}
	default:
		return nil
	}
}

// Truncate corta s a como mucho max bytes sin salirse nunca de los límites
// del original. El corte retrocede hasta un inicio de runa para no partir
// un carácter multibyte por la mitad.
func Truncate(s string, max int) string {
	if max < 0 {
		max = 0
	}
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

const dateLayout = "2006-01-02T15:04:05"

// BuildNotification construye la notificación para (evento, rol). Es un
// mapeo puro: el reloj de proceso entra como parámetro y sella SentAt, que
// es la hora de envío de la notificación, no la de la transacción.
func BuildNotification(evt Event, role EventRole, now time.Time) (*Notification, error) {
	switch role {
	case RoleSender, RoleReceiver:
		tx, ok := evt.(TransactionEvent)
		if !ok {
			return nil, fmt.Errorf("%w: %s role with %T event", ErrUnsupportedRole, role, evt)
		}
		return buildTransaction(tx, role, now), nil

	case RoleReward:
		rw, ok := evt.(RewardEvent)
		if !ok {
			return nil, fmt.Errorf("%w: REWARD role with %T event", ErrUnsupportedRole, evt)
		}
		return buildReward(rw, now), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedRole, role)
	}
}

func buildTransaction(evt TransactionEvent, role EventRole, now time.Time) *Notification {
	amount := evt.Amount.StringFixed(2)
	nType := TypeTransactionSuccess
	if evt.Status == TxFailed {
		nType = TypeTransactionFailed
	}

	var userID, subject, content string
	switch role {
	case RoleSender:
		userID = evt.SenderID
		if nType == TypeTransactionFailed {
			subject = fmt.Sprintf("Transaction Failed: $%s Not Sent", amount)
			content = fmt.Sprintf(
				"Dear Valued Customer, "+
					"unfortunately we could not process your transaction. "+
					"Transaction Details: "+
					"- Amount: $%s "+
					"- Recipient: %s "+
					"- Transaction ID: %s "+
					"- Date: %s "+
					"No funds have left your account. "+
					"Best regards, The Payment Team",
				amount, evt.ReceiverID, evt.TransactionID, now.Format(dateLayout),
			)
		} else {
			subject = fmt.Sprintf("Transaction Processed: $%s Sent", amount)
			content = fmt.Sprintf(
				"Dear Valued Customer, "+
					"we have successfully processed your transaction. "+
					"Transaction Details: "+
					"- Amount: $%s "+
					"- Recipient: %s "+
					"- Transaction ID: %s "+
					"- Date: %s "+
					"Your current account balance is $%s. "+
					"Thank you for choosing our service. "+
					"Best regards, The Payment Team",
				amount, evt.ReceiverID, evt.TransactionID, now.Format(dateLayout),
				"1250.00", // saldo de demostración, sin consulta de cuentas
			)
		}

	case RoleReceiver:
		userID = evt.ReceiverID
		if nType == TypeTransactionFailed {
			subject = fmt.Sprintf("Payment Failed: $%s Not Credited", amount)
			content = fmt.Sprintf(
				"Dear Valued Customer, "+
					"a payment addressed to you could not be completed. "+
					"Transaction Details: "+
					"- Amount: $%s "+
					"- Sender: %s "+
					"- Transaction ID: %s "+
					"- Date: %s "+
					"Best regards, The Payment Team",
				amount, evt.SenderID, evt.TransactionID, now.Format(dateLayout),
			)
		} else {
			subject = fmt.Sprintf("Payment Received: $%s Credited", amount)
			content = fmt.Sprintf(
				"Dear Valued Customer, "+
					"we are pleased to inform you that a payment has been credited to your account. "+
					"Transaction Details: "+
					"- Amount: $%s "+
					"- Sender: %s "+
					"- Transaction ID: %s "+
					"- Date: %s "+
					"Your current account balance is $%s. "+
					"Thank you for being a valued customer. "+
					"Best regards, The Payment Team",
				amount, evt.SenderID, evt.TransactionID, now.Format(dateLayout),
				"1750.00", // saldo de demostración, sin consulta de cuentas
			)
		}
	}

	return &Notification{
		TransactionID: evt.TransactionID,
		UserID:        userID,
		Type:          nType,
		Subject:       subject,
		Content:       content,
		SentAt:        now,
	}
}

func buildReward(evt RewardEvent, now time.Time) *Notification {
	amount := evt.Amount.StringFixed(2)
	content := fmt.Sprintf(
		"Dear Valued Customer, "+
			"we are delighted to inform you that you have been awarded a special reward! "+
			"Reward Details: "+
			"- Amount: $%s "+
			"- Transaction ID: %s "+
			"- Date: %s "+
			"The reward has been credited to your account. "+
			"Thank you for being a valued customer. "+
			"Best regards, The Rewards Team",
		amount, evt.TransactionID, now.Format(dateLayout),
	)

	return &Notification{
		TransactionID: evt.TransactionID,
		UserID:        evt.ReceiverID,
		Type:          TypeRewardGranted,
		Subject:       "Congratulations on Your Reward!",
		Content:       content,
		SentAt:        now,
	}
}
