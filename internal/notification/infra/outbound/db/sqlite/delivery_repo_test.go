package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davicafu/notifly/internal/notification/domain"
)

func storedAttempt(ch domain.Channel, startedAt time.Time) domain.DeliveryAttempt {
	return domain.DeliveryAttempt{
		ID:             uuid.New(),
		NotificationID: uuid.New(),
		TransactionID:  "TX1",
		UserID:         "U1",
		Channel:        ch,
		Destination:    "U1@example.com",
		StartedAt:      startedAt,
		FinishedAt:     startedAt.Add(5 * time.Millisecond),
		Success:        true,
	}
}

func TestDeliveryLogRepoSQLite_AppendFetchMark(t *testing.T) {
	repo := NewDeliveryLogRepoSQLite(newTestDB(t))
	base := time.Now().UTC().Truncate(time.Second)

	first := storedAttempt(domain.ChannelEmail, base)
	second := storedAttempt(domain.ChannelSMS, base.Add(time.Minute))
	require.NoError(t, repo.AppendAttempt(context.Background(), first))
	require.NoError(t, repo.AppendAttempt(context.Background(), second))

	// Pendientes en orden de inicio
	pending, err := repo.FetchUnshipped(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Equal(t, domain.ChannelEmail, pending[0].Channel)
	assert.Equal(t, second.ID, pending[1].ID)

	// Marcados como enviados dejan de aparecer
	require.NoError(t, repo.MarkShipped(context.Background(), []uuid.UUID{first.ID}))
	pending, err = repo.FetchUnshipped(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)
}

func TestDeliveryLogRepoSQLite_FetchRespectsLimit(t *testing.T) {
	repo := NewDeliveryLogRepoSQLite(newTestDB(t))
	base := time.Now().UTC()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.AppendAttempt(context.Background(),
			storedAttempt(domain.ChannelPush, base.Add(time.Duration(i)*time.Second))))
	}

	pending, err := repo.FetchUnshipped(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestDeliveryLogRepoSQLite_MarkShippedUnknownID(t *testing.T) {
	repo := NewDeliveryLogRepoSQLite(newTestDB(t))

	err := repo.MarkShipped(context.Background(), []uuid.UUID{uuid.New()})
	assert.Error(t, err)

	assert.NoError(t, repo.MarkShipped(context.Background(), nil))
}
