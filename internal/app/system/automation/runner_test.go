package automation

import (
	"context"
	"testing"

	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAll_AccumulatesAcrossChurches(t *testing.T) {
	store := newMemStore(
		models.Person{ID: 1, ChurchID: 1, BirthDate: born(30)},
		models.Person{ID: 2, ChurchID: 1, BirthDate: born(8)},
		models.Person{ID: 3, ChurchID: 2, BirthDate: born(65)},
	)
	svc := newSvc(store)
	r := NewRunner(svc, staticChurches{ids: []int64{1, 2}}, nil)

	sum, err := r.RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 3, sum.Updated)
	assert.Equal(t, 0, sum.Errors)
	assert.Len(t, sum.Churches, 2)
}

func TestRunAll_ChurchFailureDoesNotStopOthers(t *testing.T) {
	store := newMemStore(
		models.Person{ID: 1, ChurchID: 1, BirthDate: born(30)},
		models.Person{ID: 3, ChurchID: 2, BirthDate: born(65)},
	)
	svc := New(store, fixedClock{now}, busyLock{busy: map[string]bool{"automation:church:1": true}}, nil)
	r := NewRunner(svc, staticChurches{ids: []int64{1, 2}}, nil)

	sum, err := r.RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Failed)
	require.Len(t, sum.Churches, 2)
	assert.NotEmpty(t, sum.Churches[0].Failed)
	assert.Equal(t, 1, sum.Churches[1].Updated)
	assert.Equal(t, 1, sum.Updated)
}

func TestRunAll_ListError(t *testing.T) {
	r := NewRunner(newSvc(newMemStore()), staticChurches{err: errBoom}, nil)
	_, err := r.RunAll(context.Background())
	assert.ErrorIs(t, err, errBoom)
}
