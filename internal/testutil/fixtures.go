package testutil

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixture ids start high so they never collide with ids allocated from the
// counters collection during a test.
var fixtureID int64 = 1_000_000

func nextID() int64 { return atomic.AddInt64(&fixtureID, 1) }

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateChurch inserts an active church.
func (f *Fixtures) CreateChurch(ctx context.Context, name string) models.Church {
	f.t.Helper()
	return f.insertChurch(ctx, name, "active")
}

// CreateDisabledChurch inserts a church the periodic job must skip.
func (f *Fixtures) CreateDisabledChurch(ctx context.Context, name string) models.Church {
	f.t.Helper()
	return f.insertChurch(ctx, name, "disabled")
}

func (f *Fixtures) insertChurch(ctx context.Context, name, status string) models.Church {
	f.t.Helper()
	now := time.Now().UTC()
	id := nextID()
	c := models.Church{
		ID:        id,
		Name:      name,
		NameCI:    text.Fold(name),
		Slug:      strings.ReplaceAll(text.Fold(name), " ", "-") + "-" + time.Now().Format("150405.000000"),
		TimeZone:  "America/Mexico_City",
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("churches").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test church: %v", err)
	}
	return c
}

// CreatePerson inserts p after filling id, timestamps and the folded name.
// Zero Role/Status default to VISITOR/NEW.
func (f *Fixtures) CreatePerson(ctx context.Context, churchID int64, p models.Person) models.Person {
	f.t.Helper()
	now := time.Now().UTC()
	if p.ID == 0 {
		p.ID = nextID()
	}
	p.ChurchID = churchID
	p.FullNameCI = text.Fold(p.FullName())
	if p.Role == "" {
		p.Role = models.RoleVisitor
	}
	if p.Status == "" {
		p.Status = models.StatusNew
	}
	p.CreatedAt, p.UpdatedAt = now, now
	if _, err := f.db.Collection("persons").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test person: %v", err)
	}
	return p
}

// CreateVisitor inserts a visitor with the given birth date (may be nil).
func (f *Fixtures) CreateVisitor(ctx context.Context, churchID int64, first, last string, birth *time.Time) models.Person {
	f.t.Helper()
	return f.CreatePerson(ctx, churchID, models.Person{
		FirstName: first,
		LastName:  last,
		BirthDate: birth,
		Phone:     "+5215550000000",
		Role:      models.RoleVisitor,
		Status:    models.StatusNew,
	})
}

// CreateFamily inserts a family.
func (f *Fixtures) CreateFamily(ctx context.Context, churchID int64, name string) models.Family {
	f.t.Helper()
	now := time.Now().UTC()
	fam := models.Family{
		ID:        nextID(),
		ChurchID:  churchID,
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("families").InsertOne(ctx, fam); err != nil {
		f.t.Fatalf("failed to create test family: %v", err)
	}
	return fam
}

// Date returns midnight UTC on the given day.
func Date(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}
