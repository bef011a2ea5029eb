// Package automation keeps each person's type, role and status consistent
// with their stored dates, and performs the one-way visitor→member conversion.
//
// The service is storage-agnostic: it consumes a Store, a Clock and an
// optional Locker, all injected so tests can substitute doubles.
package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/membership"
	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when a person or church id does not resolve.
	ErrNotFound = apperr.ErrNotFound
	// ErrInvalidState is returned when an operation's precondition does not hold.
	ErrInvalidState = apperr.ErrInvalidState
	// ErrNotVisitor is the InvalidState raised by Convert on a non-visitor.
	ErrNotVisitor = fmt.Errorf("%w: person is not a visitor", ErrInvalidState)
	// ErrRunInProgress is returned when another bulk run holds the church's lock.
	ErrRunInProgress = fmt.Errorf("%w: automation run already in progress for this church", apperr.ErrConflict)
)

// Store is the person reader/writer the service works against.
// Every call is scoped by church id.
type Store interface {
	// Get returns ErrNotFound when the id does not exist in the church.
	Get(ctx context.Context, churchID, id int64) (models.Person, error)
	ListByChurch(ctx context.Context, churchID int64) ([]models.Person, error)
	UpdateDerived(ctx context.Context, churchID, id int64, d membership.Derived) error
	Create(ctx context.Context, p models.Person) (models.Person, error)
	MarkConverted(ctx context.Context, churchID, sourceID, newID int64, at time.Time) error
	// WithTx runs fn inside one atomic write boundary when the backend supports it.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Locker serializes bulk runs per church.
type Locker interface {
	// Acquire returns ErrRunInProgress when the key is already held.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Service applies membership rules to stored persons.
type Service struct {
	store Store
	clock Clock
	lock  Locker
	log   *zap.Logger
}

// New builds a Service. A nil clock means SystemClock; a nil locker disables
// per-church serialization.
func New(store Store, clock Clock, lock Locker, logger *zap.Logger) *Service {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, clock: clock, lock: lock, log: logger}
}

// Change captures one person's derived fields before and after an apply.
type Change struct {
	PersonID int64              `json:"person_id"`
	Before   membership.Derived `json:"before"`
	After    membership.Derived `json:"after"`
}

// Result is the outcome of a single-person apply.
type Result struct {
	Updated bool    `json:"updated"`
	Change  *Change `json:"change,omitempty"`
}

// Apply recomputes one person's type/role/status and persists them only if
// at least one differs from what is stored.
func (s *Service) Apply(ctx context.Context, churchID, personID int64) (Result, error) {
	p, err := s.store.Get(ctx, churchID, personID)
	if err != nil {
		return Result{}, err
	}
	return s.applyTo(ctx, p)
}

func (s *Service) applyTo(ctx context.Context, p models.Person) (Result, error) {
	before := membership.Derived{Type: p.Type, Role: p.Role, Status: p.Status}
	after := membership.Derive(p, s.clock.Now())
	if p.ConvertedToID != nil {
		// A converted visitor's row is history: only its age bucket moves.
		after.Role, after.Status = p.Role, p.Status
	}
	if after == before {
		return Result{}, nil
	}
	if err := s.store.UpdateDerived(ctx, p.ChurchID, p.ID, after); err != nil {
		return Result{}, fmt.Errorf("update person %d: %w", p.ID, err)
	}
	return Result{
		Updated: true,
		Change:  &Change{PersonID: p.ID, Before: before, After: after},
	}, nil
}

// ItemError records a per-person failure inside a bulk run.
type ItemError struct {
	PersonID int64  `json:"person_id"`
	Reason   string `json:"reason"`
}

// BulkResult summarizes a church-wide run.
type BulkResult struct {
	ChurchID   int64       `json:"church_id"`
	Total      int         `json:"total"`
	Updated    int         `json:"updated"`
	Errors     int         `json:"errors"`
	Changes    []Change    `json:"changes"`
	ItemErrors []ItemError `json:"item_errors,omitempty"`
}

// ApplyChurch applies the rules to every person of a church, sequentially.
// A failure on one person is counted and logged; the loop always continues.
// The returned error is non-nil only when the run could not start (lock held
// or the person list could not be loaded).
func (s *Service) ApplyChurch(ctx context.Context, churchID int64) (BulkResult, error) {
	res := BulkResult{ChurchID: churchID, Changes: []Change{}}

	if s.lock != nil {
		release, err := s.lock.Acquire(ctx, fmt.Sprintf("automation:church:%d", churchID))
		if err != nil {
			return res, err
		}
		defer release()
	}

	people, err := s.store.ListByChurch(ctx, churchID)
	if err != nil {
		return res, fmt.Errorf("list persons for church %d: %w", churchID, err)
	}

	res.Total = len(people)
	for _, p := range people {
		r, err := s.applyTo(ctx, p)
		if err != nil {
			res.Errors++
			res.ItemErrors = append(res.ItemErrors, ItemError{PersonID: p.ID, Reason: err.Error()})
			s.log.Warn("automation apply failed",
				zap.Int64("church_id", churchID),
				zap.Int64("person_id", p.ID),
				zap.Error(err))
			continue
		}
		if r.Updated {
			res.Updated++
			res.Changes = append(res.Changes, *r.Change)
		}
	}
	return res, nil
}
