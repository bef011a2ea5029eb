package church_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/iglesiahub/internal/app/features/church"
	churchstore "github.com/dalemusser/iglesiahub/internal/app/store/churches"
	ministrystore "github.com/dalemusser/iglesiahub/internal/app/store/ministries"
	"github.com/dalemusser/iglesiahub/internal/domain/models"
	"github.com/dalemusser/iglesiahub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRoutes_StaffCannotEdit(t *testing.T) {
	h := church.NewHandler(nil, nil, nil, zap.NewNop())
	router := church.Routes(h)

	for _, tc := range []struct{ method, path string }{{"PUT", "/"}, {"POST", "/defaults"}} {
		req := testutil.AsUser(httptest.NewRequest(tc.method, tc.path, bytes.NewBufferString("{}")), testutil.StaffUser(1))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, tc.path)
	}
}

func TestHandleUpdate_Validation(t *testing.T) {
	h := church.NewHandler(nil, nil, nil, zap.NewNop())
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing name", `{"time_zone":"UTC"}`, "Name is required."},
		{"bad zone", `{"name":"Iglesia","time_zone":"Mars/Olympus"}`, "unknown time zone"},
		{"bad sender", `{"name":"Iglesia","time_zone":"UTC","sms_from":"abc"}`, "SMS sender must be a valid phone number."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.AsUser(httptest.NewRequest("PUT", "/", bytes.NewBufferString(tt.body)), testutil.AdminUser(1))
			rec := httptest.NewRecorder()
			h.HandleUpdate(rec, req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestUpdateAndDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	c := fx.CreateChurch(ctx, "Iglesia Vieja")
	h := church.NewHandler(churchstore.New(db), ministrystore.New(db), nil, zap.NewNop())

	body := `{"name":"Iglesia Nueva","time_zone":"America/Bogota","whatsapp_from":"+5715550000"}`
	req := testutil.AsUser(httptest.NewRequest("PUT", "/", bytes.NewBufferString(body)), testutil.AdminUser(c.ID))
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got models.Church
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Iglesia Nueva", got.Name)
	assert.Equal(t, "America/Bogota", got.TimeZone)
	assert.Equal(t, "active", got.Status)
	assert.Equal(t, c.Slug, got.Slug)

	defaults := func() int {
		req := testutil.AsUser(httptest.NewRequest("POST", "/defaults", nil), testutil.AdminUser(c.ID))
		rec := httptest.NewRecorder()
		h.HandleDefaults(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var out map[string]int
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		return out["created"]
	}
	assert.Equal(t, len(ministrystore.Defaults), defaults())
	assert.Equal(t, 0, defaults())
}
