package notifications_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dalemusser/iglesiahub/internal/app/features/notifications"
	churchstore "github.com/dalemusser/iglesiahub/internal/app/store/churches"
	familystore "github.com/dalemusser/iglesiahub/internal/app/store/families"
	ministrystore "github.com/dalemusser/iglesiahub/internal/app/store/ministries"
	notificationstore "github.com/dalemusser/iglesiahub/internal/app/store/notifications"
	personstore "github.com/dalemusser/iglesiahub/internal/app/store/persons"
	"github.com/dalemusser/iglesiahub/internal/app/system/notify"
	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"github.com/dalemusser/iglesiahub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (f *fakeSender) Send(_ context.Context, m notify.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, m)
	return fmt.Sprintf("msg-%d", len(f.sent)), nil
}

func newHandler(db *mongo.Database, sms notify.Sender) *notifications.Handler {
	log := notificationstore.New(db)
	return notifications.NewHandler(notifications.Stores{
		Churches:      churchstore.New(db),
		Persons:       personstore.New(db),
		Families:      familystore.New(db),
		Ministries:    ministrystore.New(db),
		Notifications: log,
	}, notify.NewDispatcher(sms, nil, nil, log, zap.NewNop()), nil, zap.NewNop())
}

func TestHandleSend_Validation(t *testing.T) {
	h := notifications.NewHandler(notifications.Stores{}, nil, nil, zap.NewNop())
	tests := []struct {
		name string
		body string
	}{
		{"unknown channel", `{"channel":"fax","body":"hola","person_ids":[1]}`},
		{"empty body", `{"channel":"sms","body":"  ","person_ids":[1]}`},
		{"email needs subject", `{"channel":"email","body":"hola","person_ids":[1]}`},
		{"no targets", `{"channel":"sms","body":"hola"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.AsUser(httptest.NewRequest("POST", "/", bytes.NewBufferString(tt.body)), testutil.StaffUser(1))
			rec := httptest.NewRecorder()
			h.HandleSend(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestServeRecent_BadLimit(t *testing.T) {
	h := notifications.NewHandler(notifications.Stores{}, nil, nil, zap.NewNop())
	req := testutil.AsUser(httptest.NewRequest("GET", "/?limit=0", nil), testutil.StaffUser(1))
	rec := httptest.NewRecorder()
	h.ServeRecent(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSend_FansOutToTargets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	church := fx.CreateChurch(ctx, "Iglesia Avisos")
	fam := fx.CreateFamily(ctx, church.ID, "Pérez")
	mom := fx.CreatePerson(ctx, church.ID, models.Person{FirstName: "Rosa", LastName: "Pérez", Phone: "+5215551111111", FamilyID: &fam.ID})
	kid := fx.CreatePerson(ctx, church.ID, models.Person{FirstName: "Tito", LastName: "Pérez", FamilyID: &fam.ID})
	solo := fx.CreateVisitor(ctx, church.ID, "Juan", "Solo", nil)

	sender := &fakeSender{}
	router := notifications.Routes(newHandler(db, sender))

	body := fmt.Sprintf(`{"channel":"sms","body":"<b>Culto</b> a las 10","person_ids":[%d,%d],"family_id":%d}`, solo.ID, mom.ID, fam.ID)
	req := testutil.AsUser(httptest.NewRequest("POST", "/", bytes.NewBufferString(body)), testutil.StaffUser(church.ID))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var sum notify.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, 2, sum.Sent, "mom is targeted twice but messaged once")
	assert.Equal(t, 0, sum.Failed)
	require.Len(t, sum.Skipped, 1)
	assert.Equal(t, kid.ID, sum.Skipped[0].PersonID)
	require.Len(t, sender.sent, 2)
	assert.Equal(t, "Culto a las 10", sender.sent[0].Body)

	req = testutil.AsUser(httptest.NewRequest("GET", "/", nil), testutil.StaffUser(church.ID))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var recent []models.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recent))
	assert.Len(t, recent, 2)
	for _, n := range recent {
		assert.Equal(t, models.NotificationSent, n.Status)
	}
}

func TestHandleSend_ForeignPerson(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	church := fx.CreateChurch(ctx, "Iglesia Uno")
	other := fx.CreateChurch(ctx, "Iglesia Dos")
	stranger := fx.CreateVisitor(ctx, other.ID, "Eva", "Fuera", nil)

	router := notifications.Routes(newHandler(db, &fakeSender{}))
	body := fmt.Sprintf(`{"channel":"sms","body":"hola","person_ids":[%d]}`, stranger.ID)
	req := testutil.AsUser(httptest.NewRequest("POST", "/", bytes.NewBufferString(body)), testutil.StaffUser(church.ID))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
