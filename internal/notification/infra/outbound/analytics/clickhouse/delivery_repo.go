package clickhouse

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/davicafu/notifly/internal/notification/domain"
)

// DeliveryAnalyticsRepo implementa DeliverySink sobre ClickHouse: recibe
// lotes de intentos de entrega para su explotación analítica (latencias por
// canal, tasas de fallo).
type DeliveryAnalyticsRepo struct {
	db *sql.DB
}

// NewDeliveryAnalyticsRepo es el constructor.
func NewDeliveryAnalyticsRepo(addr string, dbName string) (*DeliveryAnalyticsRepo, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: dbName,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	})

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping clickhouse: %w", err)
	}

	repo := &DeliveryAnalyticsRepo{db: conn}
	if err := repo.InitSchema(); err != nil {
		return nil, fmt.Errorf("could not init clickhouse schema: %w", err)
	}

	return repo, nil
}

// InitSchema crea la tabla en ClickHouse si no existe.
func (r *DeliveryAnalyticsRepo) InitSchema() error {
	// Esta tabla está optimizada para analítica.
	// Se particiona por mes y se ordena por campos comunes de consulta.
	query := `
		CREATE TABLE IF NOT EXISTS delivery_attempts (
			id              UUID,
			notification_id UUID,
			transaction_id  String,
			user_id         String,
			channel         String,
			destination     String,
			started_at      DateTime64(3),
			finished_at     DateTime64(3),
			elapsed_ms      Int64,
			success         UInt8,
			cause           String
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(started_at)
		ORDER BY (channel, success, started_at);
	`
	_, err := r.db.Exec(query)
	return err
}

// LogBatch inserta un lote de intentos. ClickHouse funciona mejor con
// inserciones en lotes; el relayer se encarga de agruparlas.
func (r *DeliveryAnalyticsRepo) LogBatch(ctx context.Context, attempts []domain.DeliveryAttempt) error {
	if len(attempts) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO delivery_attempts (id, notification_id, transaction_id, user_id, channel, destination, started_at, finished_at, elapsed_ms, success, cause)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range attempts {
		if _, err := stmt.ExecContext(
			ctx,
			a.ID.String(),
			a.NotificationID.String(),
			a.TransactionID,
			a.UserID,
			string(a.Channel),
			a.Destination,
			a.StartedAt,
			a.FinishedAt,
			a.Elapsed().Milliseconds(),
			a.Success,
			a.Cause,
		); err != nil {
			// Si un registro falla, hacemos rollback de todo el lote.
			tx.Rollback()
			return fmt.Errorf("failed to exec statement for attempt %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

// FailureRateByChannel devuelve la fracción de intentos fallidos por canal
// en una ventana de tiempo.
func (r *DeliveryAnalyticsRepo) FailureRateByChannel(ctx context.Context) (map[domain.Channel]float64, error) {
	query := `
		SELECT
			channel,
			countIf(success = 0) / count() AS failure_rate
		FROM delivery_attempts
		GROUP BY channel
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rates := make(map[domain.Channel]float64)
	for rows.Next() {
		var channel string
		var rate float64
		if err := rows.Scan(&channel, &rate); err != nil {
			return nil, err
		}
		rates[domain.Channel(channel)] = rate
	}

	return rates, rows.Err()
}

// Verificación estática
var _ domain.DeliverySink = (*DeliveryAnalyticsRepo)(nil)
