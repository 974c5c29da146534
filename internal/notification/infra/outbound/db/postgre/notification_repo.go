package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/davicafu/notifly/internal/notification/domain"
)

// uniqueViolation es el código SQLSTATE de Postgres para restricciones UNIQUE.
const uniqueViolation = "23505"

type NotificationRepoPostgres struct {
	db *sql.DB
}

func NewNotificationRepoPostgres(db *sql.DB) *NotificationRepoPostgres {
	return &NotificationRepoPostgres{db: db}
}

func (r *NotificationRepoPostgres) Save(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	saved := *n
	if saved.NotificationID == uuid.Nil {
		saved.NotificationID = uuid.New()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (id,transaction_id,user_id,type,subject,content,sent_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		saved.NotificationID.String(), saved.TransactionID, saved.UserID,
		string(saved.Type), saved.Subject, saved.Content, saved.SentAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrDuplicateRecord
		}
		return nil, err
	}

	return &saved, nil
}

func (r *NotificationRepoPostgres) FindByUser(ctx context.Context, userID string, f domain.NotificationFilter) ([]*domain.Notification, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, transaction_id, user_id, type, subject, content, sent_at
		 FROM notifications
		 WHERE user_id = $1
		 ORDER BY sent_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, f.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		var idStr, typeStr string
		if err := rows.Scan(&idStr, &n.TransactionID, &n.UserID, &typeStr, &n.Subject, &n.Content, &n.SentAt); err != nil {
			return nil, err
		}

		parsedID, err := uuid.Parse(idStr)
		if err != nil {
			return nil, err
		}
		n.NotificationID = parsedID
		n.Type = domain.NotificationType(typeStr)

		notifications = append(notifications, &n)
	}

	return notifications, rows.Err()
}

// InitPostgres crea las tablas si no existen.
func InitPostgres(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS notifications (
            id TEXT PRIMARY KEY,
            transaction_id TEXT NOT NULL,
            user_id TEXT NOT NULL,
            type TEXT NOT NULL,
            subject TEXT NOT NULL,
            content TEXT NOT NULL,
            sent_at TIMESTAMPTZ NOT NULL,
            UNIQUE (transaction_id, user_id, type)
        )
    `)
	return err
}

// Verificación estática
var _ domain.NotificationRepository = (*NotificationRepoPostgres)(nil)
