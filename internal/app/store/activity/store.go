// internal/app/store/activity/store.go
package activity

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

// Store manages scheduled church activities and their attendance.
type Store struct {
	c   *mongo.Collection
	ids *counterstore.Store
}

// New creates a new activity Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("activities"), ids: counterstore.New(db)}
}

// Range narrows List to activities starting inside [From, To). Nil bounds are open.
type Range struct {
	From       *time.Time
	To         *time.Time
	MinistryID *int64
}

// Create records a new activity.
func (s *Store) Create(ctx context.Context, a models.Activity) (models.Activity, error) {
	id, err := s.ids.Next(ctx, "activities")
	if err != nil {
		return models.Activity{}, err
	}
	now := time.Now().UTC()
	a.ID = id
	a.TitleCI = text.Fold(a.Title)
	if a.AttendeeIDs == nil {
		a.AttendeeIDs = []int64{}
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Activity{}, err
	}
	return a, nil
}

func (s *Store) Get(ctx context.Context, churchID, id int64) (models.Activity, error) {
	var a models.Activity
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "church_id": churchID}).Decode(&a); err != nil {
		return models.Activity{}, apperr.FromMongo(err)
	}
	return a, nil
}

// List returns the church's activities, most recent first.
func (s *Store) List(ctx context.Context, churchID int64, r Range) ([]models.Activity, error) {
	filter := bson.M{"church_id": churchID}
	when := bson.M{}
	if r.From != nil {
		when["$gte"] = *r.From
	}
	if r.To != nil {
		when["$lt"] = *r.To
	}
	if len(when) > 0 {
		filter["starts_at"] = when
	}
	if r.MinistryID != nil {
		filter["ministry_id"] = *r.MinistryID
	}

	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "starts_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Activity{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, a models.Activity) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": a.ID, "church_id": a.ChurchID},
		bson.M{"$set": bson.M{
			"ministry_id": a.MinistryID,
			"title":       a.Title,
			"title_ci":    text.Fold(a.Title),
			"description": a.Description,
			"location":    a.Location,
			"starts_at":   a.StartsAt,
			"ends_at":     a.EndsAt,
			"updated_at":  time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// SetAttendance replaces the attendee list.
func (s *Store) SetAttendance(ctx context.Context, churchID, id int64, personIDs []int64) error {
	if personIDs == nil {
		personIDs = []int64{}
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "church_id": churchID},
		bson.M{"$set": bson.M{"attendee_ids": personIDs, "updated_at": time.Now().UTC()}})
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
