package validators_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/iglesiahub/internal/app/system/validators"
	"github.com/dalemusser/iglesiahub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func setup(t *testing.T) (*mongo.Database, context.Context) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	t.Cleanup(cancel)

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return db, ctx
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db, ctx := setup(t)

	// Second call should also succeed
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db, ctx := setup(t)

	expectedCollections := []string{
		"churches",
		"persons",
		"families",
		"ministries",
		"activities",
		"kiosk_tokens",
		"notifications",
		"audit_events",
		"counters",
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}

	collMap := make(map[string]bool)
	for _, name := range names {
		collMap[name] = true
	}

	for _, expected := range expectedCollections {
		if !collMap[expected] {
			t.Errorf("expected collection %q to exist", expected)
		}
	}
}

func validPerson() bson.M {
	return bson.M{
		"_id":          int64(1),
		"church_id":    int64(7),
		"first_name":   "Ana",
		"last_name":    "Ruiz",
		"full_name_ci": "ana ruiz",
		"role":         "VISITOR",
		"status":       "NEW",
		"type":         "ADULT",
	}
}

func TestPersonsValidator(t *testing.T) {
	db, ctx := setup(t)
	coll := db.Collection("persons")

	if _, err := coll.InsertOne(ctx, validPerson()); err != nil {
		t.Fatalf("Insert valid person failed: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(bson.M)
	}{
		{"missing church", func(p bson.M) { delete(p, "church_id") }},
		{"blank folded name", func(p bson.M) { p["full_name_ci"] = "  " }},
		{"lowercase role", func(p bson.M) { p["role"] = "member" }},
		{"unknown status", func(p bson.M) { p["status"] = "ARCHIVED" }},
		{"unknown type", func(p bson.M) { p["type"] = "TODDLER" }},
		{"string birth date", func(p bson.M) { p["birth_date"] = "2000-01-01" }},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPerson()
			p["_id"] = int64(100 + i)
			tt.mutate(p)
			if _, err := coll.InsertOne(ctx, p); err == nil {
				t.Errorf("expected validation error for %s", tt.name)
			}
		})
	}
}

func TestChurchesValidator(t *testing.T) {
	db, ctx := setup(t)
	coll := db.Collection("churches")

	_, err := coll.InsertOne(ctx, bson.M{
		"_id": int64(1), "name": "Iglesia Central", "name_ci": "iglesia central",
		"slug": "iglesia-central", "status": "active",
	})
	if err != nil {
		t.Fatalf("Insert valid church failed: %v", err)
	}

	_, err = coll.InsertOne(ctx, bson.M{
		"_id": int64(2), "name": "Iglesia Norte", "name_ci": "iglesia norte",
		"slug": "iglesia-norte", "status": "closed",
	})
	if err == nil {
		t.Error("expected validation error when inserting church with invalid status")
	}
}

func TestActivitiesValidator(t *testing.T) {
	db, ctx := setup(t)
	coll := db.Collection("activities")

	_, err := coll.InsertOne(ctx, bson.M{
		"_id": int64(1), "church_id": int64(7), "title": "Culto", "title_ci": "culto",
		"starts_at": time.Now().UTC(), "attendee_ids": bson.A{int64(3), int64(4)},
	})
	if err != nil {
		t.Fatalf("Insert valid activity failed: %v", err)
	}

	_, err = coll.InsertOne(ctx, bson.M{
		"_id": int64(2), "church_id": int64(7), "title": "Culto", "title_ci": "culto",
		"starts_at": time.Now().UTC(), "attendee_ids": bson.A{"3"},
	})
	if err == nil {
		t.Error("expected validation error when attendee ids are strings")
	}
}

func TestNotifications_NoValidator(t *testing.T) {
	db, ctx := setup(t)

	// Any shape is accepted
	if _, err := db.Collection("notifications").InsertOne(ctx, bson.M{"anything": true}); err != nil {
		t.Errorf("Insert into notifications failed: %v", err)
	}
}
