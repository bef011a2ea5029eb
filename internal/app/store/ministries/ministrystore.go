// internal/app/store/ministries/ministrystore.go
package ministrystore

import (
	"context"
	"errors"
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

var ErrDuplicateName = fmt.Errorf("%w: a ministry with this name already exists in the church", apperr.ErrConflict)

// Defaults seeded into every church by UpsertDefaults.
var Defaults = []models.Ministry{
	{Name: "Alabanza", Description: "Worship and music"},
	{Name: "Jóvenes", Description: "Youth ministry"},
	{Name: "Niños", Description: "Children's ministry"},
	{Name: "Damas", Description: "Women's ministry"},
	{Name: "Caballeros", Description: "Men's ministry"},
	{Name: "Ujieres", Description: "Ushers and hospitality"},
	{Name: "Intercesión", Description: "Prayer ministry"},
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("ministries"), ids: counterstore.New(db)}
}

func (s *Store) Create(ctx context.Context, m models.Ministry) (models.Ministry, error) {
	id, err := s.ids.Next(ctx, "ministries")
	if err != nil {
		return models.Ministry{}, err
	}
	now := time.Now().UTC()
	m.ID = id
	m.NameCI = text.Fold(m.Name)
	if m.Status == "" {
		m.Status = status.Active
	}
	if m.MemberIDs == nil {
		m.MemberIDs = []int64{}
	}
	m.CreatedAt = now
	m.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Ministry{}, ErrDuplicateName
		}
		return models.Ministry{}, err
	}
	return m, nil
}

func (s *Store) Get(ctx context.Context, churchID, id int64) (models.Ministry, error) {
	var m models.Ministry
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "church_id": churchID}).Decode(&m); err != nil {
		return models.Ministry{}, apperr.FromMongo(err)
	}
	return m, nil
}

func (s *Store) List(ctx context.Context, churchID int64) ([]models.Ministry, error) {
	cur, err := s.c.Find(ctx, bson.M{"church_id": churchID},
		options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Ministry{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update changes name, description, leader and status.
func (s *Store) Update(ctx context.Context, m models.Ministry) error {
	set := bson.M{
		"description": m.Description,
		"leader_id":   m.LeaderID,
		"updated_at":  time.Now().UTC(),
	}
	if m.Name != "" {
		set["name"] = m.Name
		set["name_ci"] = text.Fold(m.Name)
	}
	if m.Status != "" {
		set["status"] = m.Status
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": m.ID, "church_id": m.ChurchID}, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateName
		}
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// SetMembers replaces the member list.
func (s *Store) SetMembers(ctx context.Context, churchID, id int64, memberIDs []int64) error {
	if memberIDs == nil {
		memberIDs = []int64{}
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "church_id": churchID},
		bson.M{"$set": bson.M{"member_ids": memberIDs, "updated_at": time.Now().UTC()}})
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

// UpsertDefaults creates any of Defaults the church does not have yet (by
// folded name) and returns how many were created. Repeated calls create nothing.
func (s *Store) UpsertDefaults(ctx context.Context, churchID int64) (int, error) {
	created := 0
	for _, d := range Defaults {
		nameCI := text.Fold(d.Name)
		n, err := s.c.CountDocuments(ctx, bson.M{"church_id": churchID, "name_ci": nameCI})
		if err != nil {
			return created, err
		}
		if n > 0 {
			continue
		}
		m := d
		m.ChurchID = churchID
		if _, err := s.Create(ctx, m); err != nil {
			if errors.Is(err, ErrDuplicateName) {
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}
