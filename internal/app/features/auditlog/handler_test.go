package auditlog_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/iglesiahub/internal/app/features/auditlog"
	"github.com/dalemusser/iglesiahub/internal/app/store/audit"
	"github.com/dalemusser/iglesiahub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type listResponse struct {
	Events []audit.Event `json:"events"`
	Total  int64         `json:"total"`
	Limit  int64         `json:"limit"`
	Offset int64         `json:"offset"`
}

func TestServeList_BadFilters(t *testing.T) {
	h := auditlog.NewHandler(nil, zap.NewNop())
	for _, q := range []string{"category=billing", "person_id=abc", "start_date=yesterday", "end_date=2026/01/01"} {
		req := testutil.AsUser(httptest.NewRequest("GET", "/?"+q, nil), testutil.AdminUser(1))
		rec := httptest.NewRecorder()
		h.ServeList(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestRoutes_AdminOnly(t *testing.T) {
	router := auditlog.Routes(auditlog.NewHandler(nil, zap.NewNop()))
	req := testutil.AsUser(httptest.NewRequest("GET", "/", nil), testutil.StaffUser(1))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServeList_ScopedToChurch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := audit.New(db)

	jan := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)
	pid := int64(42)
	events := []audit.Event{
		{ChurchID: 1, Timestamp: jan, Category: audit.CategoryAdmin, EventType: audit.EventPersonCreated, PersonID: &pid, Success: true},
		{ChurchID: 1, Timestamp: feb, Category: audit.CategoryAdmin, EventType: audit.EventPersonUpdated, PersonID: &pid, Success: true},
		{ChurchID: 1, Timestamp: feb, Category: audit.CategoryAuth, EventType: audit.EventSessionStarted, Success: true},
		{ChurchID: 2, Timestamp: feb, Category: audit.CategoryAdmin, EventType: audit.EventPersonCreated, Success: true},
	}
	for _, e := range events {
		require.NoError(t, store.Log(ctx, e))
	}

	router := auditlog.Routes(auditlog.NewHandler(store, zap.NewNop()))
	get := func(q string) listResponse {
		req := testutil.AsUser(httptest.NewRequest("GET", "/"+q, nil), testutil.AdminUser(1))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var out listResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		return out
	}

	all := get("")
	assert.Equal(t, int64(3), all.Total)
	require.Len(t, all.Events, 3)
	assert.False(t, all.Events[0].Timestamp.Before(all.Events[2].Timestamp), "newest first")

	admin := get("?category=admin")
	assert.Equal(t, int64(2), admin.Total)

	person := get("?person_id=42&start_date=2026-02-01&end_date=2026-02-15")
	require.Len(t, person.Events, 1)
	assert.Equal(t, audit.EventPersonUpdated, person.Events[0].EventType)

	paged := get("?limit=1&offset=1")
	assert.Equal(t, int64(3), paged.Total)
	assert.Len(t, paged.Events, 1)
	assert.Equal(t, int64(1), paged.Limit)
	assert.Equal(t, int64(1), paged.Offset)
}
