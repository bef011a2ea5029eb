// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/iglesiahub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	// helper: ensure collection exists (with truthful logging) and then validator (if provided)
	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			// DocumentDB or other deployments may not support collMod/validators.
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	// Tenant and person records
	ensure("churches", churchesSchema())
	ensure("persons", personsSchema())
	ensure("families", familiesSchema())

	// Church life
	ensure("ministries", ministriesSchema())
	ensure("activities", activitiesSchema())
	ensure("kiosk_tokens", kioskTokensSchema())

	// These don't strictly need validators; we still ensure the collections exist.
	ensure("notifications", nil)
	ensure("audit_events", nil)
	ensure("counters", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var (
	nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	intID    = bson.M{"bsonType": bson.A{"long", "int"}}
	optID    = bson.M{"bsonType": bson.A{"long", "int", "null"}}
	date     = bson.M{"bsonType": "date"}
	optDate  = bson.M{"bsonType": bson.A{"date", "null"}}
)

func churchesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "name_ci", "slug", "status"},
			"properties": bson.M{
				"name":      nonBlank,
				"name_ci":   nonBlank,
				"slug":      nonBlank,
				"time_zone": bson.M{"bsonType": "string"},
				"status":    bson.M{"enum": bson.A{"active", "disabled"}},
			},
		},
	}
}

func personsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"church_id", "first_name", "last_name", "full_name_ci", "role", "status"},
			"properties": bson.M{
				"church_id":    intID,
				"first_name":   bson.M{"bsonType": "string"},
				"last_name":    bson.M{"bsonType": "string"},
				"full_name_ci": nonBlank,
				"role":         bson.M{"enum": bson.A{string(models.RoleMember), string(models.RoleVisitor)}},
				"status": bson.M{"enum": bson.A{
					string(models.StatusActive),
					string(models.StatusNew),
					string(models.StatusRecurring),
					string(models.StatusInactive),
				}},
				"type": bson.M{"enum": bson.A{
					string(models.TypeChild),
					string(models.TypeAdolescent),
					string(models.TypeYoungAdult),
					string(models.TypeAdult),
					string(models.TypeMiddleAged),
					string(models.TypeSenior),
				}},
				"birth_date":        optDate,
				"intake_date":       optDate,
				"baptism_date":      optDate,
				"converted_at":      optDate,
				"family_id":         optID,
				"converted_from_id": optID,
				"converted_to_id":   optID,
			},
		},
	}
}

func familiesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"church_id", "name", "name_ci"},
			"properties": bson.M{
				"church_id": intID,
				"name":      nonBlank,
				"name_ci":   nonBlank,
			},
		},
	}
}

func ministriesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"church_id", "name", "name_ci", "status", "member_ids"},
			"properties": bson.M{
				"church_id":  intID,
				"name":       nonBlank,
				"name_ci":    nonBlank,
				"leader_id":  optID,
				"member_ids": bson.M{"bsonType": "array", "items": intID},
				"status":     bson.M{"enum": bson.A{"active", "disabled"}},
			},
		},
	}
}

func activitiesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"church_id", "title", "title_ci", "starts_at", "attendee_ids"},
			"properties": bson.M{
				"church_id":    intID,
				"ministry_id":  optID,
				"title":        nonBlank,
				"title_ci":     nonBlank,
				"starts_at":    date,
				"ends_at":      optDate,
				"attendee_ids": bson.M{"bsonType": "array", "items": intID},
			},
		},
	}
}

func kioskTokensSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"church_id", "label", "secret_hash", "revoked", "created_at"},
			"properties": bson.M{
				"church_id":   intID,
				"label":       nonBlank,
				"secret_hash": nonBlank,
				"revoked":     bson.M{"bsonType": "bool"},
				"created_at":  date,
			},
		},
	}
}
