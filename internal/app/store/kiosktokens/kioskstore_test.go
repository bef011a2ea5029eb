package kioskstore_test

import (
	"errors"
	"strings"
	"testing"

	kioskstore "github.com/dalemusser/iglesiahub/internal/app/store/kiosktokens"
	"github.com/dalemusser/iglesiahub/internal/testutil"
	"golang.org/x/crypto/bcrypt"
)

func TestStore_IssueVerifyRevoke(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := kioskstore.NewWithCost(db, bcrypt.MinCost)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tok, raw, err := store.Create(ctx, 7, "Lobby tablet")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !strings.HasPrefix(raw, tok.ID+".") {
		t.Fatalf("raw token %q does not start with id", raw)
	}
	if strings.Contains(tok.SecretHash, raw[len(tok.ID)+1:]) {
		t.Fatal("secret stored in clear")
	}

	got, err := store.Verify(ctx, raw)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if got.ChurchID != 7 || got.LastUsedAt == nil {
		t.Errorf("unexpected token: %+v", got)
	}

	for _, bad := range []string{"", "nodot", tok.ID + ".wrong", "missing.secret"} {
		if _, err := store.Verify(ctx, bad); !errors.Is(err, kioskstore.ErrInvalidToken) {
			t.Errorf("Verify(%q): got %v, want ErrInvalidToken", bad, err)
		}
	}

	if err := store.Revoke(ctx, 7, tok.ID); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if _, err := store.Verify(ctx, raw); !errors.Is(err, kioskstore.ErrInvalidToken) {
		t.Errorf("revoked token verified: %v", err)
	}
}
