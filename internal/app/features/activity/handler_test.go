package activity_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/iglesiahub/internal/app/features/activity"
	activitystore "github.com/dalemusser/iglesiahub/internal/app/store/activity"
	ministrystore "github.com/dalemusser/iglesiahub/internal/app/store/ministries"
	personstore "github.com/dalemusser/iglesiahub/internal/app/store/persons"
	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"github.com/dalemusser/iglesiahub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleCreate_Validation(t *testing.T) {
	h := activity.NewHandler(nil, nil, nil, zap.NewNop())
	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"starts_at":"2026-03-01T10:00:00Z"}`},
		{"missing start", `{"title":"Culto"}`},
		{"ends before start", `{"title":"Culto","starts_at":"2026-03-01T10:00:00Z","ends_at":"2026-03-01T09:00:00Z"}`},
		{"unknown field", `{"title":"Culto","starts_at":"2026-03-01T10:00:00Z","room":"A"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.AsUser(httptest.NewRequest("POST", "/", bytes.NewBufferString(tt.body)), testutil.AdminUser(1))
			rec := httptest.NewRecorder()
			h.HandleCreate(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestServeList_BadRange(t *testing.T) {
	h := activity.NewHandler(nil, nil, nil, zap.NewNop())
	for _, q := range []string{"from=03-01-2026", "to=nope", "from=2026-03-05&to=2026-03-01", "ministry_id=-4"} {
		req := testutil.AsUser(httptest.NewRequest("GET", "/?"+q, nil), testutil.StaffUser(1))
		rec := httptest.NewRecorder()
		h.ServeList(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestActivityAttendanceFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	church := fx.CreateChurch(ctx, "Iglesia Calendario")
	other := fx.CreateChurch(ctx, "Iglesia Vecina")
	ana := fx.CreateVisitor(ctx, church.ID, "Ana", "Ruiz", nil)
	luis := fx.CreateVisitor(ctx, church.ID, "=Luis", "Gómez", nil)
	outsider := fx.CreateVisitor(ctx, other.ID, "Eva", "Fuera", nil)

	min, err := ministrystore.New(db).Create(ctx, models.Ministry{ChurchID: church.ID, Name: "Jóvenes"})
	require.NoError(t, err)

	router := activity.Routes(activity.NewHandler(activitystore.New(db), ministrystore.New(db), personstore.New(db), zap.NewNop()))
	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := testutil.AsUser(httptest.NewRequest(method, path, bytes.NewBufferString(body)), testutil.AdminUser(church.ID))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := do("POST", "/", `{"title":"Retiro","starts_at":"2026-04-10T18:00:00Z","ministry_id":999999}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "ministry must belong to the church")

	rec = do("POST", "/", fmt.Sprintf(`{"title":"Retiro","starts_at":"2026-04-10T18:00:00Z","ministry_id":%d}`, min.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var a models.Activity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))

	rec = do("POST", "/", `{"title":"Culto","starts_at":"2026-05-03T10:00:00Z"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do("GET", "/?from=2026-04-01&to=2026-04-30", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Activity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	rec = do("GET", fmt.Sprintf("/?ministry_id=%d", min.ID), "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = do("PUT", fmt.Sprintf("/%d/attendance", a.ID), fmt.Sprintf(`{"person_ids":[%d]}`, outsider.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do("PUT", fmt.Sprintf("/%d/attendance", a.ID), fmt.Sprintf(`{"person_ids":[%d,%d]}`, ana.ID, luis.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	assert.Equal(t, []int64{ana.ID, luis.ID}, a.AttendeeIDs)

	rec = do("GET", fmt.Sprintf("/%d/attendance.csv", a.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "asistencia_")
	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(rec.Body.String(), "\ufeff"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "person_id", rows[0][0])
	assert.Equal(t, "Ana Ruiz", rows[1][1])
	assert.Equal(t, "'=Luis Gómez", rows[2][1])
}

func TestRoutes_StaffCannotSchedule(t *testing.T) {
	router := activity.Routes(activity.NewHandler(nil, nil, nil, zap.NewNop()))
	req := testutil.AsUser(httptest.NewRequest("DELETE", "/5", nil), testutil.StaffUser(1))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
