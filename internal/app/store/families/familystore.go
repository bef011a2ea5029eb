// internal/app/store/families/familystore.go
package familystore

import (
	"context"
	"time"

	counterstore "github.com/dalemusser/iglesiahub/internal/app/store/counters"
	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c   *mongo.Collection
	ids *counterstore.Store
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("families"), ids: counterstore.New(db)}
}

func (s *Store) Create(ctx context.Context, f models.Family) (models.Family, error) {
	id, err := s.ids.Next(ctx, "families")
	if err != nil {
		return models.Family{}, err
	}
	now := time.Now().UTC()
	f.ID = id
	f.NameCI = text.Fold(f.Name)
	f.CreatedAt = now
	f.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, f); err != nil {
		return models.Family{}, err
	}
	return f, nil
}

func (s *Store) Get(ctx context.Context, churchID, id int64) (models.Family, error) {
	var f models.Family
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "church_id": churchID}).Decode(&f); err != nil {
		return models.Family{}, apperr.FromMongo(err)
	}
	return f, nil
}

// List returns the church's families sorted by folded name.
func (s *Store) List(ctx context.Context, churchID int64) ([]models.Family, error) {
	cur, err := s.c.Find(ctx, bson.M{"church_id": churchID},
		options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Family{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, f models.Family) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": f.ID, "church_id": f.ChurchID},
		bson.M{"$set": bson.M{
			"name":       f.Name,
			"name_ci":    text.Fold(f.Name),
			"address":    f.Address,
			"notes":      f.Notes,
			"updated_at": time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, churchID, id int64) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "church_id": churchID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
