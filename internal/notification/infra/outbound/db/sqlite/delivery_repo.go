package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/davicafu/notifly/internal/notification/domain"
)

// DeliveryLogRepoSQLite persiste los intentos de entrega pendientes de
// envío al sink analítico.
type DeliveryLogRepoSQLite struct {
	db *sql.DB
}

func NewDeliveryLogRepoSQLite(db *sql.DB) *DeliveryLogRepoSQLite {
	return &DeliveryLogRepoSQLite{db: db}
}

func (r *DeliveryLogRepoSQLite) AppendAttempt(ctx context.Context, a domain.DeliveryAttempt) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO delivery_log (id,notification_id,transaction_id,user_id,channel,destination,started_at,finished_at,success,cause,shipped)
		 VALUES (?,?,?,?,?,?,?,?,?,?,0)`,
		a.ID.String(), a.NotificationID.String(), a.TransactionID, a.UserID,
		string(a.Channel), a.Destination, a.StartedAt, a.FinishedAt, a.Success, a.Cause,
	)
	if err != nil {
		return fmt.Errorf("failed to insert delivery attempt: %w", err)
	}
	return nil
}

func (r *DeliveryLogRepoSQLite) FetchUnshipped(ctx context.Context, limit int) ([]domain.DeliveryAttempt, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, notification_id, transaction_id, user_id, channel, destination, started_at, finished_at, success, cause
		 FROM delivery_log
		 WHERE shipped = 0
		 ORDER BY started_at
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []domain.DeliveryAttempt
	for rows.Next() {
		var a domain.DeliveryAttempt
		var idStr, notifIDStr, channelStr string
		var started, finished time.Time

		if err := rows.Scan(&idStr, &notifIDStr, &a.TransactionID, &a.UserID, &channelStr,
			&a.Destination, &started, &finished, &a.Success, &a.Cause); err != nil {
			return nil, err
		}

		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid UUID in delivery_log row: %w", err)
		}
		notifID, err := uuid.Parse(notifIDStr)
		if err != nil {
			return nil, fmt.Errorf("invalid notification UUID in delivery_log row: %w", err)
		}

		a.ID = id
		a.NotificationID = notifID
		a.Channel = domain.Channel(channelStr)
		a.StartedAt = started
		a.FinishedAt = finished
		attempts = append(attempts, a)
	}

	return attempts, rows.Err()
}

func (r *DeliveryLogRepoSQLite) MarkShipped(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id.String()
	}

	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE delivery_log SET shipped = 1 WHERE id IN (%s)`, strings.Join(placeholders, ",")),
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to mark delivery attempts as shipped: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get RowsAffected for delivery_log update: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("no delivery attempts matched the given ids")
	}

	return nil
}

// Verificación estática
var _ domain.DeliveryLogRepository = (*DeliveryLogRepoSQLite)(nil)
