// Package seed loads churches, families and persons from a YAML file.
// It backs `iglesiactl seed` and is used to stand up demo and test tenants.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/limits"
	"github.com/dalemusser/iglesiahub/internal/app/system/membership"
	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// File is the top-level YAML document.
type File struct {
	Churches []Church `yaml:"churches"`
}

type Church struct {
	Name     string   `yaml:"name"`
	Slug     string   `yaml:"slug"`
	TimeZone string   `yaml:"time_zone"`
	Families []Family `yaml:"families"`
	Persons  []Person `yaml:"persons"`
}

// Family.Key is local to the file; persons refer to it by key.
type Family struct {
	Key     string `yaml:"key"`
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
}

type Person struct {
	FirstName    string `yaml:"first_name"`
	LastName     string `yaml:"last_name"`
	Email        string `yaml:"email"`
	Phone        string `yaml:"phone"`
	WhatsApp     string `yaml:"whatsapp"`
	BirthDate    string `yaml:"birth_date"`
	IntakeDate   string `yaml:"intake_date"`
	BaptismDate  string `yaml:"baptism_date"`
	Family       string `yaml:"family"`
	Relationship string `yaml:"relationship"`
}

// Parse decodes and checks a seed document. Unknown keys are rejected so a
// typo in a field name does not silently drop data.
func Parse(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(io.LimitReader(r, limits.MaxSeedFile))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return f, apperr.Validation("seed file is empty")
		}
		return f, apperr.Validation("seed file: %v", err)
	}
	if err := f.check(); err != nil {
		return f, err
	}
	return f, nil
}

func (f File) check() error {
	if len(f.Churches) == 0 {
		return apperr.Validation("seed file has no churches")
	}
	slugs := map[string]bool{}
	for i, c := range f.Churches {
		where := fmt.Sprintf("churches[%d]", i)
		if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Slug) == "" {
			return apperr.Validation("%s: name and slug are required", where)
		}
		if slugs[c.Slug] {
			return apperr.Validation("%s: duplicate slug %q", where, c.Slug)
		}
		slugs[c.Slug] = true

		keys := map[string]bool{}
		for j, fam := range c.Families {
			if fam.Key == "" || strings.TrimSpace(fam.Name) == "" {
				return apperr.Validation("%s.families[%d]: key and name are required", where, j)
			}
			if keys[fam.Key] {
				return apperr.Validation("%s.families[%d]: duplicate key %q", where, j, fam.Key)
			}
			keys[fam.Key] = true
		}
		for j, p := range c.Persons {
			pw := fmt.Sprintf("%s.persons[%d]", where, j)
			if strings.TrimSpace(p.FirstName) == "" {
				return apperr.Validation("%s: first_name is required", pw)
			}
			if p.Family != "" && !keys[p.Family] {
				return apperr.Validation("%s: unknown family %q", pw, p.Family)
			}
			for name, v := range map[string]string{
				"birth_date":   p.BirthDate,
				"intake_date":  p.IntakeDate,
				"baptism_date": p.BaptismDate,
			} {
				if _, err := parseDate(v); err != nil {
					return apperr.Validation("%s: %s: %v", pw, name, err)
				}
			}
		}
	}
	return nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("want YYYY-MM-DD, got %q", s)
	}
	return &t, nil
}

// Churches, Families and Persons are the store operations the loader needs.
type Churches interface {
	Create(ctx context.Context, c models.Church) (models.Church, error)
	GetBySlug(ctx context.Context, slug string) (models.Church, error)
}

type Families interface {
	Create(ctx context.Context, f models.Family) (models.Family, error)
}

type Persons interface {
	Create(ctx context.Context, p models.Person) (models.Person, error)
}

// Summary counts what Load created.
type Summary struct {
	Churches int
	Skipped  []string // slugs that already existed
	Families int
	Persons  int
}

// Loader writes a parsed File through the stores.
type Loader struct {
	Churches Churches
	Families Families
	Persons  Persons
	Log      *zap.Logger
	Now      func() time.Time
}

// Load creates every church in f. A church whose slug already exists is
// skipped whole, so re-running the same file is harmless. Each person's
// type, role and status are derived from the dates before insert.
func (l *Loader) Load(ctx context.Context, f File) (Summary, error) {
	var sum Summary
	now := time.Now().UTC()
	if l.Now != nil {
		now = l.Now()
	}
	log := l.Log
	if log == nil {
		log = zap.NewNop()
	}

	for _, c := range f.Churches {
		if _, err := l.Churches.GetBySlug(ctx, c.Slug); err == nil {
			log.Info("church exists; skipping", zap.String("slug", c.Slug))
			sum.Skipped = append(sum.Skipped, c.Slug)
			continue
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return sum, fmt.Errorf("look up church %q: %w", c.Slug, err)
		}

		church, err := l.Churches.Create(ctx, models.Church{Name: c.Name, Slug: c.Slug, TimeZone: c.TimeZone})
		if err != nil {
			return sum, fmt.Errorf("create church %q: %w", c.Slug, err)
		}
		sum.Churches++

		famIDs := make(map[string]int64, len(c.Families))
		for _, fam := range c.Families {
			created, err := l.Families.Create(ctx, models.Family{
				ChurchID: church.ID,
				Name:     fam.Name,
				Address:  fam.Address,
			})
			if err != nil {
				return sum, fmt.Errorf("create family %q: %w", fam.Key, err)
			}
			famIDs[fam.Key] = created.ID
			sum.Families++
		}

		for _, sp := range c.Persons {
			p := toPerson(sp, church.ID, famIDs)
			d := membership.Derive(p, now)
			p.Type, p.Role, p.Status = d.Type, d.Role, d.Status
			if _, err := l.Persons.Create(ctx, p); err != nil {
				return sum, fmt.Errorf("create person %s %s: %w", sp.FirstName, sp.LastName, err)
			}
			sum.Persons++
		}
		log.Info("church seeded",
			zap.Int64("church_id", church.ID),
			zap.String("slug", church.Slug),
			zap.Int("families", len(c.Families)),
			zap.Int("persons", len(c.Persons)))
	}
	return sum, nil
}

func toPerson(sp Person, churchID int64, famIDs map[string]int64) models.Person {
	birth, _ := parseDate(sp.BirthDate)
	intake, _ := parseDate(sp.IntakeDate)
	baptism, _ := parseDate(sp.BaptismDate)
	p := models.Person{
		ChurchID:    churchID,
		FirstName:   strings.TrimSpace(sp.FirstName),
		LastName:    strings.TrimSpace(sp.LastName),
		Email:       strings.TrimSpace(sp.Email),
		Phone:       strings.TrimSpace(sp.Phone),
		WhatsApp:    strings.TrimSpace(sp.WhatsApp),
		BirthDate:   birth,
		IntakeDate:  intake,
		BaptismDate: baptism,
		Role:        models.RoleVisitor,
		Status:      models.StatusNew,
	}
	if id, ok := famIDs[sp.Family]; ok && sp.Family != "" {
		p.FamilyID = &id
		p.FamilyRelationship = sp.Relationship
	}
	return p
}
