package activity_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/iglesiahub/internal/app/store/activity"
	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"github.com/dalemusser/iglesiahub/internal/testutil"
)

func TestStore_CreateListAttendance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := activity.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Date(2026, time.March, 1, 18, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := store.Create(ctx, models.Activity{
			ChurchID: 1,
			Title:    "Culto dominical",
			StartsAt: base.AddDate(0, 0, 7*i),
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	from := base.AddDate(0, 0, 1)
	list, err := store.List(ctx, 1, activity.Range{From: &from})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List from %v: got %d, want 2", from, len(list))
	}
	if !list[0].StartsAt.After(list[1].StartsAt) {
		t.Error("expected most recent first")
	}

	if err := store.SetAttendance(ctx, 1, list[0].ID, []int64{10, 11}); err != nil {
		t.Fatalf("SetAttendance failed: %v", err)
	}
	got, _ := store.Get(ctx, 1, list[0].ID)
	if len(got.AttendeeIDs) != 2 {
		t.Errorf("AttendeeIDs: %v", got.AttendeeIDs)
	}

	if err := store.SetAttendance(ctx, 2, list[0].ID, nil); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("cross-church SetAttendance: %v", err)
	}
}
