package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	// _ "github.com/mattn/go-sqlite3" // better performance but requires gcc
	_ "modernc.org/sqlite"

	"github.com/davicafu/notifly/internal/notification/domain"
)

type NotificationRepoSQLite struct {
	db *sql.DB
}

func NewNotificationRepoSQLite(db *sql.DB) *NotificationRepoSQLite {
	return &NotificationRepoSQLite{db: db}
}

// Save asigna el NotificationID e inserta. La restricción UNIQUE sobre
// (transaction_id, user_id, type) convierte la reentrega del mismo evento
// en ErrDuplicateRecord en vez de una fila repetida.
func (r *NotificationRepoSQLite) Save(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	saved := *n
	if saved.NotificationID == uuid.Nil {
		saved.NotificationID = uuid.New()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (id,transaction_id,user_id,type,subject,content,sent_at)
		 VALUES (?,?,?,?,?,?,?)`,
		saved.NotificationID.String(), saved.TransactionID, saved.UserID,
		string(saved.Type), saved.Subject, saved.Content, saved.SentAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, domain.ErrDuplicateRecord
		}
		return nil, err
	}

	return &saved, nil
}

// FindByUser devuelve las notificaciones del usuario, más recientes primero.
func (r *NotificationRepoSQLite) FindByUser(ctx context.Context, userID string, f domain.NotificationFilter) ([]*domain.Notification, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, transaction_id, user_id, type, subject, content, sent_at
		 FROM notifications
		 WHERE user_id = ?
		 ORDER BY sent_at DESC
		 LIMIT ? OFFSET ?`,
		userID, limit, f.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanNotifications(rows)
}

func scanNotifications(rows *sql.Rows) ([]*domain.Notification, error) {
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

// ------------------ Inicialización de DB ------------------

// InitSQLite crea las tablas si no existen.
func InitSQLite(db *sql.DB) error {
	// Tabla de notificaciones: una fila por notificación lógica.
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS notifications (
            id TEXT PRIMARY KEY,
            transaction_id TEXT NOT NULL,
            user_id TEXT NOT NULL,
            type TEXT NOT NULL,
            subject TEXT NOT NULL,
            content TEXT NOT NULL,
            sent_at DATETIME NOT NULL,
            UNIQUE (transaction_id, user_id, type)
        )
    `)
	if err != nil {
		return err
	}

	// Tabla de intentos de entrega: el resultado por canal se registra aquí,
	// no duplicando filas de notificación.
	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS delivery_log (
            id TEXT PRIMARY KEY,
            notification_id TEXT NOT NULL,
            transaction_id TEXT NOT NULL,
            user_id TEXT NOT NULL,
            channel TEXT NOT NULL,
            destination TEXT NOT NULL,
            started_at DATETIME NOT NULL,
            finished_at DATETIME NOT NULL,
            success BOOLEAN NOT NULL,
            cause TEXT NOT NULL DEFAULT '',
            shipped BOOLEAN NOT NULL DEFAULT 0
        )
    `)
	return err
}

// Verificación estática
var _ domain.NotificationRepository = (*NotificationRepoSQLite)(nil)
