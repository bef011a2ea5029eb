package automation

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dalemusser/iglesiahub/internal/app/system/membership"
	"github.com/dalemusser/iglesiahub/internal/domain/models"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// memStore is an in-memory Store that counts writes and can inject failures.
type memStore struct {
	mu      sync.Mutex
	people  map[int64]models.Person
	nextID  int64
	writes  int
	txCalls int

	failUpdate map[int64]error
	failMark   error
	failList   error
}

func newMemStore(people ...models.Person) *memStore {
	s := &memStore{people: map[int64]models.Person{}, nextID: 1000, failUpdate: map[int64]error{}}
	for _, p := range people {
		s.people[p.ID] = p
	}
	return s
}

func (s *memStore) Get(_ context.Context, churchID, id int64) (models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.people[id]
	if !ok || p.ChurchID != churchID {
		return models.Person{}, ErrNotFound
	}
	return p, nil
}

func (s *memStore) ListByChurch(_ context.Context, churchID int64) ([]models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failList != nil {
		return nil, s.failList
	}
	var out []models.Person
	for _, p := range s.people {
		if p.ChurchID == churchID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) UpdateDerived(_ context.Context, churchID, id int64, d membership.Derived) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failUpdate[id]; err != nil {
		return err
	}
	p, ok := s.people[id]
	if !ok || p.ChurchID != churchID {
		return ErrNotFound
	}
	p.Type, p.Role, p.Status = d.Type, d.Role, d.Status
	s.people[id] = p
	s.writes++
	return nil
}

func (s *memStore) Create(_ context.Context, p models.Person) (models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p.ID = s.nextID
	s.people[p.ID] = p
	s.writes++
	return p, nil
}

func (s *memStore) MarkConverted(_ context.Context, churchID, sourceID, newID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failMark != nil {
		return s.failMark
	}
	p, ok := s.people[sourceID]
	if !ok || p.ChurchID != churchID {
		return ErrNotFound
	}
	p.ConvertedToID = &newID
	p.ConvertedAt = &at
	p.Status = models.StatusInactive
	s.people[sourceID] = p
	s.writes++
	return nil
}

// WithTx snapshots the people map and restores it when fn fails,
// standing in for a transaction rollback.
func (s *memStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	s.txCalls++
	snap := make(map[int64]models.Person, len(s.people))
	for k, v := range s.people {
		snap[k] = v
	}
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.people = snap
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

type staticChurches struct {
	ids []int64
	err error
}

func (c staticChurches) ListActiveIDs(context.Context) ([]int64, error) { return c.ids, c.err }

type busyLock struct{ busy map[string]bool }

func (l busyLock) Acquire(_ context.Context, key string) (func(), error) {
	if l.busy[key] {
		return nil, ErrRunInProgress
	}
	return func() {}, nil
}

var errBoom = errors.New("write failed")
