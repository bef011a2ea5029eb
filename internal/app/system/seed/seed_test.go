package seed

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
churches:
  - name: Iglesia Central
    slug: central
    time_zone: America/Mexico_City
    families:
      - key: lopez
        name: Familia López
    persons:
      - first_name: Ana
        last_name: López
        birth_date: "1990-03-01"
        baptism_date: "2010-06-01"
        family: lopez
        relationship: madre
      - first_name: Tomás
        last_name: López
        birth_date: "2020-01-15"
        family: lopez
        relationship: hijo
      - first_name: Luis
        birth_date: "1985-07-20"
`

type fakeStores struct {
	churches map[string]models.Church
	families []models.Family
	persons  []models.Person
	nextID   int64
}

func newFakes() *fakeStores { return &fakeStores{churches: map[string]models.Church{}} }

func (f *fakeStores) id() int64 { f.nextID++; return f.nextID }

type fakeChurches struct{ *fakeStores }
type fakeFamilies struct{ *fakeStores }
type fakePersons struct{ *fakeStores }

func (f fakeChurches) Create(_ context.Context, c models.Church) (models.Church, error) {
	c.ID = f.id()
	f.churches[c.Slug] = c
	return c, nil
}

func (f fakeChurches) GetBySlug(_ context.Context, slug string) (models.Church, error) {
	c, ok := f.churches[slug]
	if !ok {
		return models.Church{}, apperr.ErrNotFound
	}
	return c, nil
}

func (f fakeFamilies) Create(_ context.Context, fam models.Family) (models.Family, error) {
	fam.ID = f.id()
	f.families = append(f.families, fam)
	return fam, nil
}

func (f fakePersons) Create(_ context.Context, p models.Person) (models.Person, error) {
	p.ID = f.id()
	f.persons = append(f.persons, p)
	return p, nil
}

func loaderFor(f *fakeStores) *Loader {
	return &Loader{
		Churches: fakeChurches{f},
		Families: fakeFamilies{f},
		Persons:  fakePersons{f},
		Now:      func() time.Time { return time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC) },
	}
}

func TestParse_Sample(t *testing.T) {
	f, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, f.Churches, 1)
	assert.Equal(t, "central", f.Churches[0].Slug)
	assert.Len(t, f.Churches[0].Persons, 3)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", "", "empty"},
		{"no churches", "churches: []\n", "no churches"},
		{"unknown field", "churches:\n  - name: A\n    slug: a\n    colour: red\n", "colour"},
		{"missing slug", "churches:\n  - name: A\n", "name and slug"},
		{"duplicate slug", "churches:\n  - {name: A, slug: a}\n  - {name: B, slug: a}\n", "duplicate slug"},
		{"unknown family", "churches:\n  - name: A\n    slug: a\n    persons:\n      - {first_name: X, family: nope}\n", "unknown family"},
		{"bad date", "churches:\n  - name: A\n    slug: a\n    persons:\n      - {first_name: X, birth_date: 01/02/2000}\n", "birth_date"},
		{"missing first name", "churches:\n  - name: A\n    slug: a\n    persons:\n      - {last_name: X}\n", "first_name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrValidation), "want validation error, got %v", err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_DerivesMembership(t *testing.T) {
	f, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	fakes := newFakes()
	sum, err := loaderFor(fakes).Load(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Churches)
	assert.Equal(t, 1, sum.Families)
	assert.Equal(t, 3, sum.Persons)

	require.Len(t, fakes.persons, 3)
	ana, tomas, luis := fakes.persons[0], fakes.persons[1], fakes.persons[2]

	assert.Equal(t, models.TypeAdult, ana.Type)
	assert.Equal(t, models.RoleMember, ana.Role)
	assert.Equal(t, models.StatusActive, ana.Status)
	require.NotNil(t, ana.FamilyID)
	assert.Equal(t, fakes.families[0].ID, *ana.FamilyID)
	assert.Equal(t, "madre", ana.FamilyRelationship)

	assert.Equal(t, models.TypeChild, tomas.Type)
	assert.Equal(t, models.RoleMember, tomas.Role)

	assert.Equal(t, models.TypeMiddleAged, luis.Type)
	assert.Equal(t, models.RoleVisitor, luis.Role)
	assert.Equal(t, models.StatusNew, luis.Status)
	assert.Nil(t, luis.FamilyID)
}

func TestLoad_SkipsExistingSlug(t *testing.T) {
	f, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	fakes := newFakes()
	l := loaderFor(fakes)
	_, err = l.Load(context.Background(), f)
	require.NoError(t, err)

	sum, err := l.Load(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Churches)
	assert.Equal(t, []string{"central"}, sum.Skipped)
	assert.Len(t, fakes.persons, 3)
}
