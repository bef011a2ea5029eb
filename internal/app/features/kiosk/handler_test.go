package kiosk_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/iglesiahub/internal/app/features/kiosk"
	auditstore "github.com/dalemusser/iglesiahub/internal/app/store/audit"
	churchstore "github.com/dalemusser/iglesiahub/internal/app/store/churches"
	kioskstore "github.com/dalemusser/iglesiahub/internal/app/store/kiosktokens"
	personstore "github.com/dalemusser/iglesiahub/internal/app/store/persons"
	"github.com/dalemusser/iglesiahub/internal/app/system/auditlog"
	"github.com/dalemusser/iglesiahub/internal/app/system/automation"
	"github.com/dalemusser/iglesiahub/internal/app/system/runlock"
	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"github.com/dalemusser/iglesiahub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
	"go.uber.org/zap"
)

func newHandler(db *mongo.Database) *kiosk.Handler {
	persons := personstore.New(db)
	svc := automation.New(persons, nil, runlock.NewLocal(), zap.NewNop())
	audit := auditlog.New(auditstore.New(db), zap.NewNop(), auditlog.Config{Auth: auditlog.DB, Admin: auditlog.DB})
	return kiosk.NewHandler(kioskstore.NewWithCost(db, bcrypt.MinCost), churchstore.New(db), persons, svc, audit, zap.NewNop())
}

func register(router http.Handler, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/visitors", bytes.NewBufferString(body))
	if token != "" {
		req.Header.Set(kiosk.TokenHeader, token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleRegister_MissingToken(t *testing.T) {
	router := kiosk.PublicRoutes(kiosk.NewHandler(nil, nil, nil, nil, nil, zap.NewNop()), nil)
	rec := register(router, "", `{"first_name":"Ana","last_name":"Ruiz"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutes_StaffForbidden(t *testing.T) {
	router := kiosk.AdminRoutes(kiosk.NewHandler(nil, nil, nil, nil, nil, zap.NewNop()))
	req := testutil.AsUser(httptest.NewRequest("POST", "/tokens", bytes.NewBufferString(`{"label":"Lobby"}`)), testutil.StaffUser(1))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestKioskRegistrationFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	church := fx.CreateChurch(ctx, "Iglesia Kiosco")

	h := newHandler(db)
	admin := kiosk.AdminRoutes(h)
	public := kiosk.PublicRoutes(h, nil)

	req := testutil.AsUser(httptest.NewRequest("POST", "/tokens", bytes.NewBufferString(`{"label":"Entrada"}`)), testutil.AdminUser(church.ID))
	rec := httptest.NewRecorder()
	admin.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var issued struct {
		ID    string `json:"id"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &issued))
	require.NotEmpty(t, issued.Token)

	rec = register(public, issued.Token, `{"first_name":"Ana","last_name":"Ruiz","phone":"+52 55 1234 5678","birth_date":"2014-02-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p models.Person
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, church.ID, p.ChurchID)
	assert.Equal(t, models.RoleVisitor, p.Role)
	assert.NotEmpty(t, p.Type, "classification ran")

	rec = register(public, issued.Token, `{"first_name":"","last_name":"Ruiz"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = register(public, issued.ID+".wrong", `{"first_name":"Eva","last_name":"Ruiz"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	n, err := db.Collection("audit_events").CountDocuments(ctx, bson.M{"event_type": auditstore.EventKioskTokenRejected})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	req = testutil.AsUser(httptest.NewRequest("DELETE", "/tokens/"+issued.ID, nil), testutil.AdminUser(church.ID))
	rec = httptest.NewRecorder()
	admin.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = register(public, issued.Token, `{"first_name":"Eva","last_name":"Ruiz"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	n, err = db.Collection("audit_events").CountDocuments(ctx, bson.M{"event_type": auditstore.EventVisitorRegistered})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestKioskRegistration_DisabledChurch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	church := fx.CreateDisabledChurch(ctx, "Iglesia Cerrada")

	_, raw, err := kioskstore.NewWithCost(db, bcrypt.MinCost).Create(ctx, church.ID, "Entrada")
	require.NoError(t, err)

	rec := register(kiosk.PublicRoutes(newHandler(db), nil), raw, `{"first_name":"Ana","last_name":"Ruiz"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
