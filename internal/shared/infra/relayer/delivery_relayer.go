package relayer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davicafu/notifly/internal/notification/domain"
)

// Worker envía periódicamente los intentos de entrega pendientes al sink
// analítico, en lotes. Si el envío falla los intentos quedan sin marcar y
// se reintentan en el siguiente ciclo.
type Worker struct {
	repo      domain.DeliveryLogRepository
	sink      domain.DeliverySink
	interval  time.Duration
	batchSize int
	log       *zap.Logger
}

func NewDeliveryRelayer(
	repo domain.DeliveryLogRepository,
	sink domain.DeliverySink,
	interval time.Duration,
	batchSize int,
	log *zap.Logger,
) *Worker {
	return &Worker{
		repo:      repo,
		sink:      sink,
		interval:  interval,
		batchSize: batchSize,
		log:       log,
	}
}

// Start inicia el bucle de polling del worker en una goroutine.
func (w *Worker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.log.Info("🚀 Delivery relayer iniciado", zap.Duration("interval", w.interval))

		for {
			select {
			case <-ctx.Done():
				w.log.Info("🛑 Delivery relayer detenido.")
				return
			case <-ticker.C:
				w.ProcessBatch(ctx)
			}
		}
	}()
}

// ProcessBatch publica un lote de intentos pendientes y los marca como
// enviados solo si el sink los aceptó.
func (w *Worker) ProcessBatch(ctx context.Context) {
	attempts, err := w.repo.FetchUnshipped(ctx, w.batchSize)
	if err != nil {
		w.log.Warn("⚠️ Error al obtener intentos pendientes", zap.Error(err))
		return
	}
	if len(attempts) == 0 {
		return
	}

	if err := w.sink.LogBatch(ctx, attempts); err != nil {
		// No se marcan: el siguiente ciclo reintenta el lote completo.
		w.log.Warn("⚠️ No se pudo enviar el lote al sink", zap.Int("attempts", len(attempts)), zap.Error(err))
		return
	}

	ids := make([]uuid.UUID, len(attempts))
	for i, a := range attempts {
		ids[i] = a.ID
	}

	if err := w.repo.MarkShipped(ctx, ids); err != nil {
		w.log.Warn("⚠️ No se pudieron marcar los intentos como enviados", zap.Error(err))
		return
	}

	w.log.Info("✅ Lote de intentos enviado al sink", zap.Int("attempts", len(attempts)))
}
