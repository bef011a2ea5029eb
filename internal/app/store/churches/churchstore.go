// internal/app/store/churches/churchstore.go
package churchstore

import (
	"context"
	"fmt"
	"time"

	counterstore "github.com/dalemusser/iglesiahub/internal/app/store/counters"
	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/status"
	"github.com/dalemusser/iglesiahub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c   *mongo.Collection
	ids *counterstore.Store
}

var ErrDuplicateSlug = fmt.Errorf("%w: a church with this slug already exists", apperr.ErrConflict)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("churches"), ids: counterstore.New(db)}
}

// Create inserts a new church.
func (s *Store) Create(ctx context.Context, c models.Church) (models.Church, error) {
	id, err := s.ids.Next(ctx, "churches")
	if err != nil {
		return models.Church{}, err
	}
	now := time.Now().UTC()
	c.ID = id
	c.NameCI = text.Fold(c.Name)
	if c.Status == "" {
		c.Status = status.Active
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Church{}, ErrDuplicateSlug
		}
		return models.Church{}, err
	}
	return c, nil
}

// GetByID retrieves a church by its ID.
func (s *Store) GetByID(ctx context.Context, id int64) (models.Church, error) {
	var c models.Church
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.Church{}, apperr.FromMongo(err)
	}
	return c, nil
}

// GetBySlug retrieves a church by its slug.
func (s *Store) GetBySlug(ctx context.Context, slug string) (models.Church, error) {
	var c models.Church
	if err := s.c.FindOne(ctx, bson.M{"slug": slug}).Decode(&c); err != nil {
		return models.Church{}, apperr.FromMongo(err)
	}
	return c, nil
}

// Update modifies a church's mutable fields. Sender identities may be cleared.
func (s *Store) Update(ctx context.Context, c models.Church) error {
	set := bson.M{
		"updated_at":    time.Now().UTC(),
		"time_zone":     c.TimeZone,
		"sms_from":      c.SMSFrom,
		"whatsapp_from": c.WhatsAppFrom,
		"email_from":    c.EmailFrom,
	}
	if c.Name != "" {
		set["name"] = c.Name
		set["name_ci"] = text.Fold(c.Name)
	}
	if c.Status != "" {
		set["status"] = c.Status
	}
	res, err := s.c.UpdateByID(ctx, c.ID, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ListActiveIDs returns the ids of active churches in ascending order.
func (s *Store) ListActiveIDs(ctx context.Context) ([]int64, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.M{"_id": 1})
	cur, err := s.c.Find(ctx, bson.M{"status": status.Active}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []int64
	for cur.Next(ctx) {
		var row struct {
			ID int64 `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	return ids, cur.Err()
}
