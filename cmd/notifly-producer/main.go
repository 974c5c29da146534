// notifly-producer publica eventos de ejemplo codificados en binario en los
// topics del servicio. Es una herramienta de desarrollo para probar el
// pipeline de extremo a extremo sin los servicios emisores reales.
package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	config "github.com/davicafu/notifly/internal/config"
	infraEvents "github.com/davicafu/notifly/internal/infra/events"
	"github.com/davicafu/notifly/internal/notification/domain"
	"github.com/davicafu/notifly/internal/notification/infra/codec"
	"github.com/davicafu/notifly/pkg/logger"
)

func main() {
	brokers := flag.String("brokers", "localhost:9092", "lista de brokers separados por comas")
	kind := flag.String("kind", "transaction", "tipo de evento: transaction | reward")
	failed := flag.Bool("failed", false, "marca la transacción como FAILED")
	count := flag.Int("count", 1, "número de eventos a publicar")
	amount := flag.Float64("amount", 50.00, "importe del evento")
	flag.Parse()

	logger.Init("notifly-producer")
	log := logger.Logger()
	defer log.Sync()

	ctx := context.Background()
	brokerList := strings.Split(*brokers, ",")

	switch *kind {
	case "transaction":
		publishTransactions(ctx, brokerList, *count, *amount, *failed, log)
	case "reward":
		publishRewards(ctx, brokerList, *count, *amount, log)
	default:
		log.Fatal("unknown event kind", zap.String("kind", *kind))
	}
}

func publishTransactions(ctx context.Context, brokers []string, count int, amount float64, failed bool, log *zap.Logger) {
	// Los eventos de transacción van a los dos topics: el de emisor y el de
	// receptor, como hacen los servicios de pago reales.
	for _, topic := range []string{config.SenderTopic, config.ReceiverTopic} {
		writer := kafka.NewWriter(kafka.WriterConfig{
			Brokers: brokers,
			Topic:   topic,
		})
		publisher := infraEvents.NewKafkaPublisher(writer, log)

		for i := 0; i < count; i++ {
			now := time.Now().UTC()
			evt := domain.TransactionEvent{
				TransactionID: fmt.Sprintf("TX-%d-%d", now.UnixMilli(), i),
				SenderID:      fmt.Sprintf("user-%d", i+1),
				ReceiverID:    fmt.Sprintf("user-%d", i+2),
				Amount:        decimal.NewFromFloat(amount),
				Status:        domain.TxSuccess,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if failed {
				evt.Status = domain.TxFailed
			}

			payload := codec.AppendTransactionEvent(nil, evt)
			if err := publisher.Publish(ctx, evt.TransactionID, payload); err != nil {
				log.Error("failed to publish transaction event",
					zap.String("topic", topic),
					zap.Error(err),
				)
				continue
			}
			log.Info("transaction event published",
				zap.String("topic", topic),
				zap.String("transaction_id", evt.TransactionID),
			)
		}

		writer.Close()
	}
}

func publishRewards(ctx context.Context, brokers []string, count int, amount float64, log *zap.Logger) {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   config.RewardTopic,
	})
	defer writer.Close()
	publisher := infraEvents.NewKafkaPublisher(writer, log)

	for i := 0; i < count; i++ {
		now := time.Now().UTC()
		evt := domain.RewardEvent{
			TransactionID: fmt.Sprintf("RW-%d-%d", now.UnixMilli(), i),
			ReceiverID:    fmt.Sprintf("user-%d", i+1),
			Amount:        decimal.NewFromFloat(amount),
			CreatedAt:     now,
		}

		payload := codec.AppendRewardEvent(nil, evt)
		if err := publisher.Publish(ctx, evt.TransactionID, payload); err != nil {
			log.Error("failed to publish reward event", zap.Error(err))
			continue
		}
		log.Info("reward event published", zap.String("transaction_id", evt.TransactionID))
	}
}
