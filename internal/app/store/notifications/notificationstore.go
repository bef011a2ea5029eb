// internal/app/store/notifications/notificationstore.go
package notificationstore

import (
	"context"
	"time"

	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the notification dispatch log.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("notifications")}
}

// Create inserts n as queued.
func (s *Store) Create(ctx context.Context, n models.Notification) (models.Notification, error) {
	now := time.Now().UTC()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.Status = models.NotificationQueued
	n.CreatedAt = now
	n.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return models.Notification{}, err
	}
	return n, nil
}

// MarkSent records the provider's message id.
func (s *Store) MarkSent(ctx context.Context, id, providerMessageID string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":              models.NotificationSent,
		"provider_message_id": providerMessageID,
		"updated_at":          time.Now().UTC(),
	}})
	return err
}

// MarkFailed records why delivery failed.
func (s *Store) MarkFailed(ctx context.Context, id, reason string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":     models.NotificationFailed,
		"error":      reason,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

// ListRecent returns the church's newest notifications.
func (s *Store) ListRecent(ctx context.Context, churchID int64, limit int64) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 100
	}
	cur, err := s.c.Find(ctx, bson.M{"church_id": churchID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
