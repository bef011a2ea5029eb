package metricsstore_test

import (
	"testing"
	"time"

	metricsstore "github.com/dalemusser/iglesiahub/internal/app/store/metrics"
	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"github.com/dalemusser/iglesiahub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestFetchChurchCounts_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	counts := metricsstore.FetchChurchCounts(ctx, db, 1, time.Now())

	if counts.Persons != 0 || counts.Members != 0 || counts.Visitors != 0 {
		t.Errorf("persons: got %+v, want zeros", counts)
	}
	if counts.Families != 0 {
		t.Errorf("Families: got %d, want 0", counts.Families)
	}
	if len(counts.ByStatus) != 0 || len(counts.ByType) != 0 {
		t.Errorf("expected empty breakdowns, got %v %v", counts.ByStatus, counts.ByType)
	}
}

func TestFetchChurchCounts_WithData(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	church := fixtures.CreateChurch(ctx, "Central")
	other := fixtures.CreateChurch(ctx, "Other")
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	// Create persons (2 members, 2 visitors, 1 elsewhere)
	fixtures.CreatePerson(ctx, church.ID, models.Person{FirstName: "Ana", Type: models.TypeAdult, Role: models.RoleMember, Status: models.StatusActive})
	fixtures.CreatePerson(ctx, church.ID, models.Person{FirstName: "Beto", Type: models.TypeChild, Role: models.RoleMember, Status: models.StatusActive})
	fixtures.CreatePerson(ctx, church.ID, models.Person{FirstName: "Caro", Type: models.TypeAdolescent, Role: models.RoleVisitor, Status: models.StatusRecurring})
	fixtures.CreatePerson(ctx, church.ID, models.Person{FirstName: "Dani"})
	fixtures.CreatePerson(ctx, other.ID, models.Person{FirstName: "Eva", Role: models.RoleMember, Status: models.StatusActive})

	// Create families (1)
	fixtures.CreateFamily(ctx, church.ID, "Familia Ruiz")

	// Create ministries (1 active, 1 disabled)
	_, err := db.Collection("ministries").InsertMany(ctx, []interface{}{
		bson.M{"_id": int64(9001), "church_id": church.ID, "name": "Alabanza", "status": "active"},
		bson.M{"_id": int64(9002), "church_id": church.ID, "name": "Jóvenes", "status": "disabled"},
	})
	if err != nil {
		t.Fatalf("insert ministries: %v", err)
	}

	// Create activities (1 past, 2 upcoming)
	_, err = db.Collection("activities").InsertMany(ctx, []interface{}{
		bson.M{"_id": int64(9101), "church_id": church.ID, "title": "Pasada", "starts_at": now.Add(-48 * time.Hour)},
		bson.M{"_id": int64(9102), "church_id": church.ID, "title": "Culto", "starts_at": now.Add(24 * time.Hour)},
		bson.M{"_id": int64(9103), "church_id": church.ID, "title": "Retiro", "starts_at": now.Add(30 * 24 * time.Hour)},
	})
	if err != nil {
		t.Fatalf("insert activities: %v", err)
	}

	counts := metricsstore.FetchChurchCounts(ctx, db, church.ID, now)

	if counts.Persons != 4 {
		t.Errorf("Persons: got %d, want 4", counts.Persons)
	}
	if counts.Members != 2 {
		t.Errorf("Members: got %d, want 2", counts.Members)
	}
	if counts.Visitors != 2 {
		t.Errorf("Visitors: got %d, want 2", counts.Visitors)
	}
	if counts.ByStatus["ACTIVE"] != 2 || counts.ByStatus["RECURRING"] != 1 || counts.ByStatus["NEW"] != 1 {
		t.Errorf("ByStatus: got %v", counts.ByStatus)
	}
	if counts.ByType["ADULT"] != 1 || counts.ByType["CHILD"] != 1 || counts.ByType["UNKNOWN"] != 1 {
		t.Errorf("ByType: got %v", counts.ByType)
	}
	if counts.Families != 1 {
		t.Errorf("Families: got %d, want 1", counts.Families)
	}
	if counts.ActiveMinistries != 1 {
		t.Errorf("ActiveMinistries: got %d, want 1", counts.ActiveMinistries)
	}
	if counts.UpcomingActivities != 2 {
		t.Errorf("UpcomingActivities: got %d, want 2", counts.UpcomingActivities)
	}
}
