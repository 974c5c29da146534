package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/davicafu/notifly/internal/notification/domain"
)

// NotificationRepoMongoDB implementa NotificationRepository para MongoDB.
type NotificationRepoMongoDB struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewNotificationRepoMongoDB es el constructor del repositorio. Crea el
// índice único que da la semántica de deduplicación.
func NewNotificationRepoMongoDB(ctx context.Context, client *mongo.Client, dbName string) (*NotificationRepoMongoDB, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}

	coll := client.Database(dbName).Collection("notifications")

	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "transactionId", Value: 1},
			{Key: "userId", Value: 1},
			{Key: "type", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create unique index: %w", err)
	}

	return &NotificationRepoMongoDB{client: client, coll: coll}, nil
}

// --- Structs de BSON para el mapeo ---
// Se definen localmente para no "contaminar" el dominio con tags de BSON.

type mongoNotification struct {
	ID            string    `bson:"_id"`
	TransactionID string    `bson:"transactionId"`
	UserID        string    `bson:"userId"`
	Type          string    `bson:"type"`
	Subject       string    `bson:"subject"`
	Content       string    `bson:"content"`
	SentAt        time.Time `bson:"sentAt"`
}

func toMongoNotification(n *domain.Notification) mongoNotification {
	return mongoNotification{
		ID:            n.NotificationID.String(),
		TransactionID: n.TransactionID,
		UserID:        n.UserID,
		Type:          string(n.Type),
		Subject:       n.Subject,
		Content:       n.Content,
		SentAt:        n.SentAt,
	}
}

func fromMongoNotification(m mongoNotification) (*domain.Notification, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID in notifications document: %w", err)
	}
	return &domain.Notification{
		NotificationID: id,
		TransactionID:  m.TransactionID,
		UserID:         m.UserID,
		Type:           domain.NotificationType(m.Type),
		Subject:        m.Subject,
		Content:        m.Content,
		SentAt:         m.SentAt,
	}, nil
}

func (r *NotificationRepoMongoDB) Save(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	saved := *n
	if saved.NotificationID == uuid.Nil {
		saved.NotificationID = uuid.New()
	}

	if _, err := r.coll.InsertOne(ctx, toMongoNotification(&saved)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateRecord
		}
		return nil, err
	}

	return &saved, nil
}

func (r *NotificationRepoMongoDB) FindByUser(ctx context.Context, userID string, f domain.NotificationFilter) ([]*domain.Notification, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "sentAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(f.Offset))

	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []*domain.Notification
	for cursor.Next(ctx) {
		var m mongoNotification
		if err := cursor.Decode(&m); err != nil {
			return nil, err
		}
		n, err := fromMongoNotification(m)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, cursor.Err()
}

// Verificación estática
var _ domain.NotificationRepository = (*NotificationRepoMongoDB)(nil)
