package notificationstore_test

import (
	"testing"

	notificationstore "github.com/dalemusser/iglesiahub/internal/app/store/notifications"
	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"github.com/dalemusser/iglesiahub/internal/testutil"
)

func TestStore_Lifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sent, err := store.Create(ctx, models.Notification{ChurchID: 1, Channel: models.ChannelSMS, PersonID: 3, Destination: "+5215550001", Body: "hola"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if sent.ID == "" || sent.Status != models.NotificationQueued {
		t.Errorf("unexpected notification: %+v", sent)
	}
	failed, _ := store.Create(ctx, models.Notification{ChurchID: 1, Channel: models.ChannelEmail, PersonID: 4, Destination: "a@b.test", Body: "hola"})

	if err := store.MarkSent(ctx, sent.ID, "SM123"); err != nil {
		t.Fatalf("MarkSent failed: %v", err)
	}
	if err := store.MarkFailed(ctx, failed.ID, "mailbox full"); err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}

	list, err := store.ListRecent(ctx, 1, 10)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	byID := map[string]models.Notification{}
	for _, n := range list {
		byID[n.ID] = n
	}
	if byID[sent.ID].Status != models.NotificationSent || byID[sent.ID].ProviderMessageID != "SM123" {
		t.Errorf("sent: %+v", byID[sent.ID])
	}
	if byID[failed.ID].Status != models.NotificationFailed || byID[failed.ID].Error != "mailbox full" {
		t.Errorf("failed: %+v", byID[failed.ID])
	}
}
