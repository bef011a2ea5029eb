package testutil

import (
	"context"
	"net/http"

	"github.com/dalemusser/iglesiahub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// AdminUser returns an admin scoped to churchID.
func AdminUser(churchID int64) *auth.SessionUser {
	return &auth.SessionUser{
		ID:       "test-admin",
		Name:     "Test Admin",
		Email:    "admin@test.com",
		Role:     auth.RoleAdmin,
		ChurchID: churchID,
	}
}

// StaffUser returns a staff user scoped to churchID.
func StaffUser(churchID int64) *auth.SessionUser {
	return &auth.SessionUser{
		ID:       "test-staff",
		Name:     "Test Staff",
		Email:    "staff@test.com",
		Role:     auth.RoleStaff,
		ChurchID: churchID,
	}
}

// AsUser attaches u to the request the way the auth middleware would.
func AsUser(r *http.Request, u *auth.SessionUser) *http.Request {
	return auth.WithTestUser(r, u)
}
