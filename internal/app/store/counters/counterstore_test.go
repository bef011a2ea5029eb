package counterstore_test

import (
	"testing"

	counterstore "github.com/dalemusser/iglesiahub/internal/app/store/counters"
	"github.com/dalemusser/iglesiahub/internal/testutil"
)

func TestStore_Next(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := counterstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for want := int64(1); want <= 3; want++ {
		got, err := store.Next(ctx, "persons")
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if got != want {
			t.Errorf("Next: got %d, want %d", got, want)
		}
	}

	// Sequences are independent.
	got, err := store.Next(ctx, "families")
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if got != 1 {
		t.Errorf("families first id: got %d, want 1", got)
	}
}
