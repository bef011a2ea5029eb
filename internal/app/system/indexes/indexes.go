// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called from the EnsureSchema hook. Each ensure* function is
idempotent; problems are aggregated so a bad index surfaces every failure at
once and startup fails fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	sets := []struct {
		name string
		fn   func(context.Context, *mongo.Database) error
	}{
		{"churches", ensureChurches},
		{"persons", ensurePersons},
		{"families", ensureFamilies},
		{"ministries", ensureMinistries},
		{"activities", ensureActivities},
		{"notifications", ensureNotifications},
		{"kiosk_tokens", ensureKioskTokens},
		{"audit_events", ensureAuditEvents},
	}

	var problems []string
	for _, s := range sets {
		if err := s.fn(ctx, db); err != nil {
			problems = append(problems, s.name+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Reconcile helper                                                           */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolVal(b *bool) bool { return b != nil && *b }

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

func listIndexes(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()), zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

// ensureIndexSet makes coll carry every index in models. An existing index
// with the same keys is reused when its uniqueness and name match, otherwise
// it is dropped and recreated.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing, err := listIndexes(ctx, coll)
	if err != nil {
		// A collection that does not exist yet has no indexes to reconcile.
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range models {
		var name string
		var unique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		fields := []zap.Field{
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", boolVal(unique)),
		}

		if ex, ok := existing[sig]; ok {
			if boolVal(ex.Unique) == boolVal(unique) && (name == "" || ex.Name == name) {
				zap.L().Debug("reusing existing index", fields...)
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				zap.L().Warn("drop existing index failed", append(fields, zap.Error(err))...)
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) && boolVal(unique) {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present on %s)", coll.Name(), name, sig))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			}
			zap.L().Warn("index ensure failed", append(fields, zap.Error(err))...)
			continue
		}
		zap.L().Info("index ensured", append(fields, zap.Duration("took", time.Since(start)))...)
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                             */
/* -------------------------------------------------------------------------- */

func ensureChurches(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("churches"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_churches_slug"),
		},
		// RunAll enumerates active churches in id order.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_churches_status__id"),
		},
	})
}

func ensurePersons(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("persons"), []mongo.IndexModel{
		// Roll listing, sorted by folded name.
		{
			Keys: bson.D{
				{Key: "church_id", Value: 1},
				{Key: "full_name_ci", Value: 1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_persons_church_fullnameci__id"),
		},
		{
			Keys: bson.D{
				{Key: "church_id", Value: 1},
				{Key: "role", Value: 1},
				{Key: "status", Value: 1},
			},
			Options: options.Index().SetName("idx_persons_church_role_status"),
		},
		{
			Keys:    bson.D{{Key: "church_id", Value: 1}, {Key: "type", Value: 1}},
			Options: options.Index().SetName("idx_persons_church_type"),
		},
		// Family roster and consolidation relink.
		{
			Keys:    bson.D{{Key: "church_id", Value: 1}, {Key: "family_id", Value: 1}},
			Options: options.Index().SetName("idx_persons_church_family"),
		},
		{
			Keys:    bson.D{{Key: "converted_from_id", Value: 1}},
			Options: options.Index().SetName("idx_persons_converted_from").SetSparse(true),
		},
	})
}

func ensureFamilies(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("families"), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "church_id", Value: 1},
				{Key: "name_ci", Value: 1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_families_church_nameci__id"),
		},
	})
}

func ensureMinistries(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("ministries"), []mongo.IndexModel{
		// Default-ministry upsert relies on this being unique.
		{
			Keys:    bson.D{{Key: "church_id", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_ministries_church_nameci"),
		},
		{
			Keys:    bson.D{{Key: "church_id", Value: 1}, {Key: "member_ids", Value: 1}},
			Options: options.Index().SetName("idx_ministries_church_members"),
		},
	})
}

func ensureActivities(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("activities"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "church_id", Value: 1}, {Key: "starts_at", Value: -1}},
			Options: options.Index().SetName("idx_activities_church_startsat"),
		},
		{
			Keys:    bson.D{{Key: "church_id", Value: 1}, {Key: "ministry_id", Value: 1}},
			Options: options.Index().SetName("idx_activities_church_ministry"),
		},
	})
}

func ensureNotifications(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("notifications"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "church_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_notifications_church_createdat"),
		},
		{
			Keys:    bson.D{{Key: "church_id", Value: 1}, {Key: "person_id", Value: 1}},
			Options: options.Index().SetName("idx_notifications_church_person"),
		},
	})
}

func ensureKioskTokens(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("kiosk_tokens"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "church_id", Value: 1}, {Key: "revoked", Value: 1}},
			Options: options.Index().SetName("idx_kiosk_tokens_church_revoked"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("audit_events"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "church_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_church_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_category_timestamp"),
		},
	})
}
