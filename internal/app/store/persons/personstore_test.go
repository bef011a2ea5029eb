package personstore_test

import (
	"errors"
	"testing"
	"time"

	personstore "github.com/dalemusser/iglesiahub/internal/app/store/persons"
	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/automation"
	"github.com/dalemusser/iglesiahub/internal/app/system/membership"
	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"github.com/dalemusser/iglesiahub/internal/testutil"
	"go.uber.org/zap"
)

// compile-time check
var _ automation.Store = (*personstore.Store)(nil)

func TestStore_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := personstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	church := fixtures.CreateChurch(ctx, "Iglesia Central")

	created, err := store.Create(ctx, models.Person{
		ChurchID:  church.ID,
		FirstName: "José",
		LastName:  "Pérez",
		Role:      models.RoleVisitor,
		Status:    models.StatusNew,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected ID to be assigned")
	}
	if created.FullNameCI != "jose perez" {
		t.Errorf("FullNameCI: got %q", created.FullNameCI)
	}

	got, err := store.Get(ctx, church.ID, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.FirstName != "José" {
		t.Errorf("FirstName: got %q", got.FirstName)
	}

	// Another church cannot see it.
	if _, err := store.Get(ctx, church.ID+1, created.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("cross-church Get: got %v, want ErrNotFound", err)
	}
}

func TestStore_List_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := personstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	church := fixtures.CreateChurch(ctx, "Iglesia Filtros")
	fam := fixtures.CreateFamily(ctx, church.ID, "Familia Ruiz")
	fixtures.CreatePerson(ctx, church.ID, models.Person{FirstName: "Ana", LastName: "Ruiz", Role: models.RoleMember, Status: models.StatusActive, FamilyID: &fam.ID})
	fixtures.CreatePerson(ctx, church.ID, models.Person{FirstName: "Álvaro", LastName: "Ruiz", Role: models.RoleVisitor, Status: models.StatusNew, FamilyID: &fam.ID})
	fixtures.CreatePerson(ctx, church.ID, models.Person{FirstName: "Berta", LastName: "Gómez", Role: models.RoleVisitor, Status: models.StatusRecurring})

	tests := []struct {
		name string
		f    personstore.Filter
		want int
	}{
		{"all", personstore.Filter{}, 3},
		{"visitors", personstore.Filter{Role: models.RoleVisitor}, 2},
		{"recurring", personstore.Filter{Status: models.StatusRecurring}, 1},
		{"family", personstore.Filter{FamilyID: &fam.ID}, 2},
		{"prefix folds accents", personstore.Filter{Query: "alva"}, 1},
		{"limit", personstore.Filter{Limit: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.List(ctx, church.ID, tt.f)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d persons, want %d", len(got), tt.want)
			}
		})
	}
}

func TestStore_UpdateDerived_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := personstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.UpdateDerived(ctx, 1, 999, membership.Derived{Type: models.TypeAdult})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestStore_MarkConverted_Once(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := personstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	church := fixtures.CreateChurch(ctx, "Iglesia Conversión")
	v := fixtures.CreateVisitor(ctx, church.ID, "Luis", "Mora", nil)
	at := time.Now().UTC().Truncate(time.Millisecond)

	if err := store.MarkConverted(ctx, church.ID, v.ID, 42, at); err != nil {
		t.Fatalf("MarkConverted failed: %v", err)
	}
	got, _ := store.Get(ctx, church.ID, v.ID)
	if got.Status != models.StatusInactive || got.ConvertedToID == nil || *got.ConvertedToID != 42 {
		t.Errorf("unexpected source after conversion: %+v", got)
	}
	if got.Role != models.RoleVisitor {
		t.Errorf("role changed to %s", got.Role)
	}

	if err := store.MarkConverted(ctx, church.ID, v.ID, 43, at); !errors.Is(err, personstore.ErrAlreadyConverted) {
		t.Errorf("second MarkConverted: got %v, want ErrAlreadyConverted", err)
	}
	if err := store.MarkConverted(ctx, church.ID, 12345, 43, at); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing source: got %v, want ErrNotFound", err)
	}
}

func TestStore_Families(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := personstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	church := fixtures.CreateChurch(ctx, "Iglesia Familias")
	a := fixtures.CreateFamily(ctx, church.ID, "A")
	b := fixtures.CreateFamily(ctx, church.ID, "B")
	p1 := fixtures.CreateVisitor(ctx, church.ID, "Uno", "B", nil)
	p2 := fixtures.CreateVisitor(ctx, church.ID, "Dos", "B", nil)

	n, err := store.SetFamily(ctx, church.ID, b.ID, []int64{p1.ID, p2.ID, 777}, "hijo")
	if err != nil || n != 2 {
		t.Fatalf("SetFamily: n=%d err=%v", n, err)
	}
	moved, err := store.RelinkFamily(ctx, church.ID, b.ID, a.ID)
	if err != nil || moved != 2 {
		t.Fatalf("RelinkFamily: moved=%d err=%v", moved, err)
	}
	got, _ := store.List(ctx, church.ID, personstore.Filter{FamilyID: &a.ID})
	if len(got) != 2 {
		t.Errorf("family A members: got %d", len(got))
	}
	cleared, err := store.ClearFamily(ctx, church.ID, a.ID)
	if err != nil || cleared != 2 {
		t.Errorf("ClearFamily: cleared=%d err=%v", cleared, err)
	}
}

// Runs the conversion against the real store. On a standalone server the
// transaction falls back to sequential writes.
func TestStore_ConvertEndToEnd(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := personstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	church := fixtures.CreateChurch(ctx, "Iglesia E2E")
	v := fixtures.CreateVisitor(ctx, church.ID, "Marta", "Lima", testutil.Date(1990, time.May, 4))

	svc := automation.New(store, nil, nil, zap.NewNop())
	member, err := svc.Convert(ctx, church.ID, v.ID, automation.ConvertInput{BaptismDate: testutil.Date(2024, time.March, 1)})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if member.Role != models.RoleMember || member.Status != models.StatusActive {
		t.Errorf("member role/status: %s/%s", member.Role, member.Status)
	}
	if member.ConvertedFromID == nil || *member.ConvertedFromID != v.ID {
		t.Errorf("ConvertedFromID: %v", member.ConvertedFromID)
	}
	src, _ := store.Get(ctx, church.ID, v.ID)
	if src.ConvertedToID == nil || *src.ConvertedToID != member.ID {
		t.Errorf("ConvertedToID: %v", src.ConvertedToID)
	}
}

func TestStore_RequireIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := personstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateChurch(ctx, "Iglesia A")
	b := fixtures.CreateChurch(ctx, "Iglesia B")
	p1 := fixtures.CreateVisitor(ctx, a.ID, "Uno", "A", nil)
	p2 := fixtures.CreateVisitor(ctx, a.ID, "Dos", "A", nil)
	other := fixtures.CreateVisitor(ctx, b.ID, "Tres", "B", nil)

	if err := store.RequireIDs(ctx, a.ID, []int64{p1.ID, p2.ID}); err != nil {
		t.Errorf("own persons: %v", err)
	}
	if err := store.RequireIDs(ctx, a.ID, nil); err != nil {
		t.Errorf("empty list: %v", err)
	}
	if err := store.RequireIDs(ctx, a.ID, []int64{p1.ID, other.ID}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("foreign person: got %v, want validation error", err)
	}
}
