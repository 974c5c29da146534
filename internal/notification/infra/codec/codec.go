// Package codec habla el formato binario (protobuf wire format) de los
// eventos de transacción y recompensa, sin código generado. Cada esquema se
// decodifica de forma estricta: número de campo desconocido, wire type
// incorrecto o payload truncado fallan siempre, nunca producen un evento a
// medias.
package codec

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/davicafu/notifly/internal/notification/domain"
)

// ErrMalformedEvent indica que los bytes no cumplen el esquema esperado.
var ErrMalformedEvent = errors.New("malformed event payload")

// Esquema TransactionEvent:
//
//	1 transaction_id (string)   2 sender_id (string)   3 receiver_id (string)
//	4 amount (double)           5 status (varint: 0 SUCCESS, 1 FAILED)
//	6 created_at (varint, ms)   7 updated_at (varint, ms)
//
// Esquema RewardEvent:
//
//	1 transaction_id (string)   2 receiver_id (string)
//	3 amount (double)           4 created_at (varint, ms)

// DecodeTransactionEvent decodifica un payload de transacción.
func DecodeTransactionEvent(raw []byte) (domain.TransactionEvent, error) {
	var evt domain.TransactionEvent
	var seen [8]bool
	for len(raw) > 0 {
		num, typ, n := protowire.ConsumeTag(raw)
		if n < 0 {
			return domain.TransactionEvent{}, tagErr(n)
		}
		raw = raw[n:]

		switch num {
		case 1, 2, 3:
			s, rest, err := consumeString(raw, num, typ)
			if err != nil {
				return domain.TransactionEvent{}, err
			}
			raw = rest
			switch num {
			case 1:
				evt.TransactionID = s
			case 2:
				evt.SenderID = s
			case 3:
				evt.ReceiverID = s
			}

		case 4:
			amount, rest, err := consumeAmount(raw, num, typ)
			if err != nil {
				return domain.TransactionEvent{}, err
			}
			raw = rest
			evt.Amount = amount

		case 5:
			if typ != protowire.VarintType {
				return domain.TransactionEvent{}, wireTypeErr(num, typ)
			}
			v, n := protowire.ConsumeVarint(raw)
			if n < 0 {
				return domain.TransactionEvent{}, tagErr(n)
			}
			raw = raw[n:]
			switch v {
			case 0:
				evt.Status = domain.TxSuccess
			case 1:
				evt.Status = domain.TxFailed
			default:
				return domain.TransactionEvent{}, fmt.Errorf("%w: unknown status %d", ErrMalformedEvent, v)
			}

		case 6, 7:
			ts, rest, err := consumeTimestamp(raw, num, typ)
			if err != nil {
				return domain.TransactionEvent{}, err
			}
			raw = rest
			if num == 6 {
				evt.CreatedAt = ts
			} else {
				evt.UpdatedAt = ts
			}

		default:
			return domain.TransactionEvent{}, fieldErr(num)
		}
		seen[num] = true
	}

	// Todos los campos del esquema son obligatorios: un payload truncado en
	// un límite de campo tampoco pasa.
	for num := 1; num <= 7; num++ {
		if !seen[num] {
			return domain.TransactionEvent{}, fmt.Errorf("%w: missing field %d", ErrMalformedEvent, num)
		}
	}
	if evt.TransactionID == "" || evt.SenderID == "" || evt.ReceiverID == "" {
		return domain.TransactionEvent{}, fmt.Errorf("%w: empty required field", ErrMalformedEvent)
	}
	return evt, nil
}

// DecodeRewardEvent decodifica un payload de recompensa.
func DecodeRewardEvent(raw []byte) (domain.RewardEvent, error) {
	var evt domain.RewardEvent
	var seen [5]bool
	for len(raw) > 0 {
		num, typ, n := protowire.ConsumeTag(raw)
		if n < 0 {
			return domain.RewardEvent{}, tagErr(n)
		}
		raw = raw[n:]

		switch num {
		case 1, 2:
			s, rest, err := consumeString(raw, num, typ)
			if err != nil {
				return domain.RewardEvent{}, err
			}
			raw = rest
			if num == 1 {
				evt.TransactionID = s
			} else {
				evt.ReceiverID = s
			}

		case 3:
			amount, rest, err := consumeAmount(raw, num, typ)
			if err != nil {
				return domain.RewardEvent{}, err
			}
			raw = rest
			evt.Amount = amount

		case 4:
			ts, rest, err := consumeTimestamp(raw, num, typ)
			if err != nil {
				return domain.RewardEvent{}, err
			}
			raw = rest
			evt.CreatedAt = ts

		default:
			return domain.RewardEvent{}, fieldErr(num)
		}
		seen[num] = true
	}

	for num := 1; num <= 4; num++ {
		if !seen[num] {
			return domain.RewardEvent{}, fmt.Errorf("%w: missing field %d", ErrMalformedEvent, num)
		}
	}
	if evt.TransactionID == "" || evt.ReceiverID == "" {
		return domain.RewardEvent{}, fmt.Errorf("%w: empty required field", ErrMalformedEvent)
	}
	return evt, nil
}

// ---------- Encoders (herramienta de publicación y tests) ----------

// AppendTransactionEvent serializa un evento de transacción.
func AppendTransactionEvent(b []byte, evt domain.TransactionEvent) []byte {
	b = appendString(b, 1, evt.TransactionID)
	b = appendString(b, 2, evt.SenderID)
	b = appendString(b, 3, evt.ReceiverID)
	b = appendAmount(b, 4, evt.Amount)
	b = protowire.AppendTag(b, 5, protowire.VarintType)
	if evt.Status == domain.TxFailed {
		b = protowire.AppendVarint(b, 1)
	} else {
		b = protowire.AppendVarint(b, 0)
	}
	b = appendTimestamp(b, 6, evt.CreatedAt)
	b = appendTimestamp(b, 7, evt.UpdatedAt)
	return b
}

// AppendRewardEvent serializa un evento de recompensa.
func AppendRewardEvent(b []byte, evt domain.RewardEvent) []byte {
	b = appendString(b, 1, evt.TransactionID)
	b = appendString(b, 2, evt.ReceiverID)
	b = appendAmount(b, 3, evt.Amount)
	b = appendTimestamp(b, 4, evt.CreatedAt)
	return b
}

// ---------- Helpers ----------

func consumeString(raw []byte, num protowire.Number, typ protowire.Type) (string, []byte, error) {
	if typ != protowire.BytesType {
		return "", nil, wireTypeErr(num, typ)
	}
	v, n := protowire.ConsumeBytes(raw)
	if n < 0 {
		return "", nil, tagErr(n)
	}
	return string(v), raw[n:], nil
}

func consumeAmount(raw []byte, num protowire.Number, typ protowire.Type) (decimal.Decimal, []byte, error) {
	if typ != protowire.Fixed64Type {
		return decimal.Decimal{}, nil, wireTypeErr(num, typ)
	}
	v, n := protowire.ConsumeFixed64(raw)
	if n < 0 {
		return decimal.Decimal{}, nil, tagErr(n)
	}
	f := math.Float64frombits(v)
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return decimal.Decimal{}, nil, fmt.Errorf("%w: invalid amount %v", ErrMalformedEvent, f)
	}
	return decimal.NewFromFloat(f), raw[n:], nil
}

func consumeTimestamp(raw []byte, num protowire.Number, typ protowire.Type) (time.Time, []byte, error) {
	if typ != protowire.VarintType {
		return time.Time{}, nil, wireTypeErr(num, typ)
	}
	v, n := protowire.ConsumeVarint(raw)
	if n < 0 {
		return time.Time{}, nil, tagErr(n)
	}
	return time.UnixMilli(int64(v)).UTC(), raw[n:], nil
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendAmount(b []byte, num protowire.Number, d decimal.Decimal) []byte {
	f, _ := d.Float64()
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(f))
}

func appendTimestamp(b []byte, num protowire.Number, t time.Time) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(t.UnixMilli()))
}

func tagErr(n int) error {
	return fmt.Errorf("%w: %v", ErrMalformedEvent, protowire.ParseError(n))
}

func wireTypeErr(num protowire.Number, typ protowire.Type) error {
	return fmt.Errorf("%w: field %d has wire type %d", ErrMalformedEvent, num, typ)
}

func fieldErr(num protowire.Number) error {
	return fmt.Errorf("%w: unknown field %d", ErrMalformedEvent, num)
}
