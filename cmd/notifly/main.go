package main

import (
	"context"
	"database/sql"
	"time"

	config "github.com/davicafu/notifly/internal/config"
	infraEvents "github.com/davicafu/notifly/internal/infra/events"
	notifApp "github.com/davicafu/notifly/internal/notification/application"
	notifDomain "github.com/davicafu/notifly/internal/notification/domain"
	"github.com/davicafu/notifly/internal/notification/infra/codec"
	notifEvents "github.com/davicafu/notifly/internal/notification/infra/inbound/events"
	notifHttp "github.com/davicafu/notifly/internal/notification/infra/inbound/http"
	chRepo "github.com/davicafu/notifly/internal/notification/infra/outbound/analytics/clickhouse"
	notifCache "github.com/davicafu/notifly/internal/notification/infra/outbound/cache"
	mongoRepo "github.com/davicafu/notifly/internal/notification/infra/outbound/db/mongodb"
	pgRepo "github.com/davicafu/notifly/internal/notification/infra/outbound/db/postgre"
	sqliteRepo "github.com/davicafu/notifly/internal/notification/infra/outbound/db/sqlite"
	"github.com/davicafu/notifly/internal/notification/infra/outbound/senders"
	infraRelayer "github.com/davicafu/notifly/internal/shared/infra/relayer"

	"github.com/davicafu/notifly/pkg/logger"
	sharedCache "github.com/davicafu/notifly/internal/shared/infra/platform/cache"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
	// _ "github.com/mattn/go-sqlite3" // requires gcc
	_ "modernc.org/sqlite"
)

// ---------------- Main ----------------
func main() {
	logger.Init("notifly")
	log := logger.Logger()
	defer log.Sync()

	ctx := context.Background()
	cfg := config.LoadConfig()

	// ---------------- DB ----------------
	// El buffer local de intentos de entrega vive siempre en SQLite; el
	// almacén de notificaciones se elige por configuración.
	db, err := sql.Open("sqlite", cfg.SQLitePath)
	if err != nil {
		log.Fatal("failed to open SQLite", zap.Error(err))
	}
	defer db.Close()

	if err := sqliteRepo.InitSQLite(db); err != nil {
		log.Fatal("failed to initialize SQLite", zap.Error(err))
	}
	if err := db.PingContext(ctx); err != nil {
		log.Fatal("failed to ping SQLite", zap.Error(err))
	}

	deliveryLog := sqliteRepo.NewDeliveryLogRepoSQLite(db)

	var notifRepo notifDomain.NotificationRepository
	switch cfg.StorageBackend {
	case "postgres":
		pgDB, err := sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			log.Fatal("failed to open Postgres", zap.Error(err))
		}
		defer pgDB.Close()
		if err := pgRepo.InitPostgres(pgDB); err != nil {
			log.Fatal("failed to initialize Postgres", zap.Error(err))
		}
		notifRepo = pgRepo.NewNotificationRepoPostgres(pgDB)

	case "mongodb":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		defer client.Disconnect(ctx)
		repo, err := mongoRepo.NewNotificationRepoMongoDB(ctx, client, cfg.MongoDB)
		if err != nil {
			log.Fatal("failed to initialize MongoDB repo", zap.Error(err))
		}
		notifRepo = repo

	default:
		notifRepo = sqliteRepo.NewNotificationRepoSQLite(db)
	}

	// ---------------- Cache ----------------
	var cacheInstance sharedCache.Cache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("⚠️ Redis no disponible, cache en memoria:", zap.Error(err))
		cacheInstance = notifCache.NewInMemoryCache(cfg.CacheTTL, 3*cfg.CacheTTL)
	} else {
		cacheInstance = notifCache.NewRedisCache(rdb, cfg.CacheTTL)
		log.Info("✅ Redis conectado, cache habilitado")
	}

	// --------------- Servicio --------------
	notifService := notifApp.NewNotificationService(notifRepo, cacheInstance, log)

	resolver := senders.NewStaticResolver(cfg.EmailDomain)
	channelSenders := []notifDomain.ChannelSender{
		senders.NewEmailSender(log),
		senders.NewSMSSender(log),
		senders.NewPushSender(log),
	}
	dispatcher := notifApp.NewDispatcher(channelSenders, resolver, deliveryLog, cfg.DispatchTimeout, cfg.DispatchMaxInFlight, log)
	defer dispatcher.Close()

	// ------------ Delivery Relayer ------------
	if cfg.ClickHouseAddr != "" {
		sink, err := chRepo.NewDeliveryAnalyticsRepo(cfg.ClickHouseAddr, cfg.ClickHouseDB)
		if err != nil {
			log.Warn("⚠️ ClickHouse no disponible, sin analítica de entregas", zap.Error(err))
		} else {
			relayWorker := infraRelayer.NewDeliveryRelayer(deliveryLog, sink, cfg.RelayPeriod, cfg.RelayLimit, log)
			relayWorker.Start(ctx)
		}
	}

	// ---------------- Events ---------------
	// Tres suscripciones, cada una con su rol fijo: el topic decide a quién
	// se notifica, no el contenido del evento.
	subscriptions := []struct {
		topic string
		role  notifDomain.EventRole
	}{
		{config.SenderTopic, notifDomain.RoleSender},
		{config.ReceiverTopic, notifDomain.RoleReceiver},
		{config.RewardTopic, notifDomain.RoleReward},
	}

	if cfg.UseKafka {
		log.Info("🚀 Usando Kafka como bus de eventos")

		for _, sub := range subscriptions {
			consumer := notifEvents.NewNotificationConsumer(sub.role, notifService, dispatcher, log)

			reader := kafka.NewReader(kafka.ReaderConfig{
				Brokers:  cfg.KafkaBrokers,
				Topic:    sub.topic,
				GroupID:  config.ConsumerGroup,
				MinBytes: 10e3, // 10KB
				MaxBytes: 10e6, // 10MB
			})
			defer reader.Close()

			adapter := infraEvents.NewConsumerAdapter(reader, consumer, log)
			adapter.Start(ctx)
		}
	} else {
		log.Info("⚡️Usando bus de eventos en memoria (canales de Go)")

		senderBus := infraEvents.NewInMemoryEventBus(config.SenderTopic)

		for _, sub := range subscriptions {
			bus := senderBus
			if sub.topic != config.SenderTopic {
				bus = infraEvents.NewInMemoryEventBus(sub.topic)
			}
			consumer := notifEvents.NewNotificationConsumer(sub.role, notifService, dispatcher, log)
			infraEvents.BackgroundConsumerChan(ctx, bus.Subscribe(10), consumer, log)
		}

		// Simulamos la llegada de un evento de transacción
		simulated := notifDomain.TransactionEvent{
			TransactionID: "TX-SIMULATED-1",
			SenderID:      "user-1",
			ReceiverID:    "user-2",
			Amount:        decimal.NewFromFloat(50.00),
			Status:        notifDomain.TxSuccess,
			CreatedAt:     time.Now().UTC(),
			UpdatedAt:     time.Now().UTC(),
		}
		payload := codec.AppendTransactionEvent(nil, simulated)
		if err := senderBus.Publish(ctx, simulated.TransactionID, payload); err != nil {
			log.Error("Fallo al publicar el evento simulado", zap.Error(err))
		} else {
			log.Info("✅ Evento de transacción simulado y publicado correctamente")
		}
	}

	// ---------------- HTTP ----------------
	notifHandler := notifHttp.NewNotificationHandler(notifService)
	router := gin.Default()
	notifHttp.RegisterNotificationRoutes(router, notifHandler)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	log.Info("🚀 Server running",
		zap.String("url", "http://localhost:"+cfg.HTTPPort),
	)
	if err := router.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
