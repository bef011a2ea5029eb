package automation_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/iglesiahub/internal/app/features/automation"
	personstore "github.com/dalemusser/iglesiahub/internal/app/store/persons"
	automationsvc "github.com/dalemusser/iglesiahub/internal/app/system/automation"
	"github.com/dalemusser/iglesiahub/internal/app/system/runlock"
	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"github.com/dalemusser/iglesiahub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRoutes_StaffForbidden(t *testing.T) {
	h := automation.NewHandler(nil, nil, zap.NewNop())
	req := testutil.AsUser(httptest.NewRequest("POST", "/run", nil), testutil.StaffUser(1))
	rec := httptest.NewRecorder()
	automation.Routes(h).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleRun(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	church := fx.CreateChurch(ctx, "Iglesia Bulk")
	fx.CreateVisitor(ctx, church.ID, "Niño", "Uno", testutil.Date(2022, time.January, 1))
	fx.CreateVisitor(ctx, church.ID, "Adulto", "Dos", testutil.Date(1980, time.January, 1))
	fx.CreatePerson(ctx, church.ID, models.Person{
		FirstName: "Miembro", LastName: "Tres",
		BaptismDate: testutil.Date(2010, time.March, 3),
		Type:        models.TypeSenior, Role: models.RoleMember, Status: models.StatusActive,
		BirthDate: testutil.Date(1950, time.March, 3),
	})

	svc := automationsvc.New(personstore.New(db), nil, runlock.NewLocal(), zap.NewNop())
	h := automation.NewHandler(svc, nil, zap.NewNop())

	req := testutil.AsUser(httptest.NewRequest("POST", "/run", nil), testutil.AdminUser(church.ID))
	rec := httptest.NewRecorder()
	automation.Routes(h).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res automationsvc.BulkResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Updated) // the child becomes a member; the adult gains a type
	assert.Equal(t, 0, res.Errors)
}

type heldLock struct{}

func (heldLock) Acquire(context.Context, string) (func(), error) {
	return nil, automationsvc.ErrRunInProgress
}

func TestHandleRun_LockHeld(t *testing.T) {
	svc := automationsvc.New(nil, nil, heldLock{}, zap.NewNop())
	h := automation.NewHandler(svc, nil, zap.NewNop())
	req := testutil.AsUser(httptest.NewRequest("POST", "/run", nil), testutil.AdminUser(1))
	rec := httptest.NewRecorder()
	h.HandleRun(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already in progress")
}
