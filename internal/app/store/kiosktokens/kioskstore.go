// internal/app/store/kiosktokens/kioskstore.go
package kioskstore

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidToken covers malformed, unknown, revoked and mismatched tokens alike.
var ErrInvalidToken = fmt.Errorf("%w: invalid kiosk token", apperr.ErrUnauthorized)

type Store struct {
	c    *mongo.Collection
	cost int
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("kiosk_tokens"), cost: bcrypt.DefaultCost}
}

// NewWithCost lets tests use bcrypt.MinCost.
func NewWithCost(db *mongo.Database, cost int) *Store {
	return &Store{c: db.Collection("kiosk_tokens"), cost: cost}
}

// Create issues a token for a kiosk. The returned raw value ("<id>.<secret>")
// is shown once; only the secret's hash is stored.
func (s *Store) Create(ctx context.Context, churchID int64, label string) (models.KioskToken, string, error) {
	secret := base64.RawURLEncoding.EncodeToString(securecookie.GenerateRandomKey(24))
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), s.cost)
	if err != nil {
		return models.KioskToken{}, "", err
	}
	tok := models.KioskToken{
		ID:         uuid.NewString(),
		ChurchID:   churchID,
		Label:      label,
		SecretHash: string(hash),
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, tok); err != nil {
		return models.KioskToken{}, "", err
	}
	return tok, tok.ID + "." + secret, nil
}

// Verify resolves a raw token to its record and stamps last_used_at.
func (s *Store) Verify(ctx context.Context, raw string) (models.KioskToken, error) {
	id, secret, ok := strings.Cut(strings.TrimSpace(raw), ".")
	if !ok || id == "" || secret == "" {
		return models.KioskToken{}, ErrInvalidToken
	}
	var tok models.KioskToken
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&tok); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.KioskToken{}, ErrInvalidToken
		}
		return models.KioskToken{}, err
	}
	if tok.Revoked {
		return models.KioskToken{}, ErrInvalidToken
	}
	if bcrypt.CompareHashAndPassword([]byte(tok.SecretHash), []byte(secret)) != nil {
		return models.KioskToken{}, ErrInvalidToken
	}

	now := time.Now().UTC()
	tok.LastUsedAt = &now
	if _, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"last_used_at": now}}); err != nil {
		return models.KioskToken{}, err
	}
	return tok, nil
}

// Revoke disables a token of churchID.
func (s *Store) Revoke(ctx context.Context, churchID int64, id string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "church_id": churchID},
		bson.M{"$set": bson.M{"revoked": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// List returns the church's tokens, newest first.
func (s *Store) List(ctx context.Context, churchID int64) ([]models.KioskToken, error) {
	cur, err := s.c.Find(ctx, bson.M{"church_id": churchID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.KioskToken{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
