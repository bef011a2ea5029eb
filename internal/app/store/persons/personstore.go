// internal/app/store/persons/personstore.go
package personstore

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	counterstore "github.com/dalemusser/iglesiahub/internal/app/store/counters"
	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/membership"
	"github.com/dalemusser/iglesiahub/internal/app/system/txn"
	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const collection = "persons"

// ErrAlreadyConverted is returned by MarkConverted when the source already
// carries a forward pointer.
var ErrAlreadyConverted = fmt.Errorf("%w: person was already converted", apperr.ErrInvalidState)

// Store persists persons. It satisfies automation.Store.
type Store struct {
	c   *mongo.Collection
	ids *counterstore.Store
	tx  *txn.Runner
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:   db.Collection(collection),
		ids: counterstore.New(db),
		tx:  txn.NewRunner(db.Client(), zap.L()),
	}
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	Role     models.Role
	Status   models.Status
	Type     models.PersonType
	FamilyID *int64
	Query    string // prefix of the folded full name
	Limit    int64
	Offset   int64
}

func scoped(churchID, id int64) bson.M {
	return bson.M{"_id": id, "church_id": churchID}
}

func (s *Store) Get(ctx context.Context, churchID, id int64) (models.Person, error) {
	var p models.Person
	if err := s.c.FindOne(ctx, scoped(churchID, id)).Decode(&p); err != nil {
		return models.Person{}, apperr.FromMongo(err)
	}
	return p, nil
}

// ByIDs returns the persons of churchID among ids; unknown ids are skipped.
func (s *Store) ByIDs(ctx context.Context, churchID int64, ids []int64) ([]models.Person, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.find(ctx, bson.M{"church_id": churchID, "_id": bson.M{"$in": ids}}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

// RequireIDs fails with a validation error unless every id is a person of churchID.
func (s *Store) RequireIDs(ctx context.Context, churchID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	n, err := s.c.CountDocuments(ctx, bson.M{"church_id": churchID, "_id": bson.M{"$in": ids}})
	if err != nil {
		return err
	}
	if missing := int64(len(ids)) - n; missing > 0 {
		return apperr.Validation("%d of %d persons do not belong to this church", missing, len(ids))
	}
	return nil
}

// ListByChurch returns every person in the church in id order.
func (s *Store) ListByChurch(ctx context.Context, churchID int64) ([]models.Person, error) {
	return s.find(ctx, bson.M{"church_id": churchID}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

// List returns persons matching f sorted by folded name.
func (s *Store) List(ctx context.Context, churchID int64, f Filter) ([]models.Person, error) {
	q := bson.M{"church_id": churchID}
	if f.Role != "" {
		q["role"] = f.Role
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.Type != "" {
		q["type"] = f.Type
	}
	if f.FamilyID != nil {
		q["family_id"] = *f.FamilyID
	}
	if term := strings.TrimSpace(f.Query); term != "" {
		q["full_name_ci"] = bson.M{"$regex": "^" + regexp.QuoteMeta(text.Fold(term))}
	}

	opts := options.Find().SetSort(bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	if f.Offset > 0 {
		opts.SetSkip(f.Offset)
	}
	return s.find(ctx, q, opts)
}

func (s *Store) find(ctx context.Context, q bson.M, opts *options.FindOptions) ([]models.Person, error) {
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Person{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create allocates an id, stamps timestamps and the folded name, and inserts p.
func (s *Store) Create(ctx context.Context, p models.Person) (models.Person, error) {
	id, err := s.ids.Next(ctx, collection)
	if err != nil {
		return models.Person{}, err
	}
	now := time.Now().UTC()
	p.ID = id
	p.FullNameCI = text.Fold(p.FullName())
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Person{}, err
	}
	return p, nil
}

// UpdateProfile overwrites the editable profile, dates and relations of p.
// Derived fields (type, role, status) and conversion links are untouched.
func (s *Store) UpdateProfile(ctx context.Context, p models.Person) error {
	set := bson.M{
		"first_name":          p.FirstName,
		"last_name":           p.LastName,
		"full_name_ci":        text.Fold(p.FullName()),
		"email":               p.Email,
		"phone":               p.Phone,
		"whatsapp":            p.WhatsApp,
		"address":             p.Address,
		"birth_date":          p.BirthDate,
		"sex":                 p.Sex,
		"marital_status":      p.MaritalStatus,
		"occupation":          p.Occupation,
		"notes":               p.Notes,
		"intake_date":         p.IntakeDate,
		"baptism_date":        p.BaptismDate,
		"family_id":           p.FamilyID,
		"family_relationship": p.FamilyRelationship,
		"invited_by_id":       p.InvitedByID,
		"updated_at":          time.Now().UTC(),
	}
	return s.updateOne(ctx, scoped(p.ChurchID, p.ID), bson.M{"$set": set})
}

// UpdateDerived writes the classification fields computed by the automation rules.
func (s *Store) UpdateDerived(ctx context.Context, churchID, id int64, d membership.Derived) error {
	return s.updateOne(ctx, scoped(churchID, id), bson.M{"$set": bson.M{
		"type":       d.Type,
		"role":       d.Role,
		"status":     d.Status,
		"updated_at": time.Now().UTC(),
	}})
}

// MarkConverted retires the source visitor: forward pointer, conversion date
// and INACTIVE status. Role is left as is.
func (s *Store) MarkConverted(ctx context.Context, churchID, sourceID, newID int64, at time.Time) error {
	filter := scoped(churchID, sourceID)
	filter["converted_to_id"] = nil
	res, err := s.c.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"converted_to_id": newID,
		"converted_at":    at,
		"status":          models.StatusInactive,
		"updated_at":      time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := s.Get(ctx, churchID, sourceID); err != nil {
			return err
		}
		return ErrAlreadyConverted
	}
	return nil
}

// SetPhoto records the stored photo reference.
func (s *Store) SetPhoto(ctx context.Context, churchID, id int64, url string) error {
	return s.updateOne(ctx, scoped(churchID, id), bson.M{"$set": bson.M{
		"photo_url":  url,
		"updated_at": time.Now().UTC(),
	}})
}

// SetFamily links ids to familyID. It returns how many persons matched.
func (s *Store) SetFamily(ctx context.Context, churchID, familyID int64, ids []int64, relationship string) (int64, error) {
	set := bson.M{"family_id": familyID, "updated_at": time.Now().UTC()}
	if relationship != "" {
		set["family_relationship"] = relationship
	}
	res, err := s.c.UpdateMany(ctx,
		bson.M{"church_id": churchID, "_id": bson.M{"$in": ids}},
		bson.M{"$set": set})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// RelinkFamily moves every person of family from to family to.
func (s *Store) RelinkFamily(ctx context.Context, churchID, from, to int64) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"church_id": churchID, "family_id": from},
		bson.M{"$set": bson.M{"family_id": to, "updated_at": time.Now().UTC()}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// ClearFamily unlinks every person of familyID.
func (s *Store) ClearFamily(ctx context.Context, churchID, familyID int64) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"church_id": churchID, "family_id": familyID},
		bson.M{
			"$unset": bson.M{"family_id": "", "family_relationship": ""},
			"$set":   bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// Delete removes a person.
func (s *Store) Delete(ctx context.Context, churchID, id int64) error {
	res, err := s.c.DeleteOne(ctx, scoped(churchID, id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// CountByChurch returns the number of persons in a church.
func (s *Store) CountByChurch(ctx context.Context, churchID int64) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"church_id": churchID})
}

// WithTx runs fn in a transaction, or directly on deployments without one.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.tx.Run(ctx, fn)
}

func (s *Store) updateOne(ctx context.Context, filter bson.M, update bson.M) error {
	res, err := s.c.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
