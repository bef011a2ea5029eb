// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"
	"time"

	metricsstore "github.com/dalemusser/iglesiahub/internal/app/store/metrics"
	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/authz"
	"github.com/dalemusser/iglesiahub/internal/app/system/respond"
	"github.com/dalemusser/iglesiahub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
	Now func() time.Time
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:  db,
		Log: logger,
		Now: func() time.Time { return time.Now().UTC() },
	}
}

type dashboardResponse struct {
	ChurchID int64     `json:"church_id"`
	AsOf     time.Time `json:"as_of"`
	metricsstore.Counts
}

// ServeDashboard handles GET /api/dashboard: headline totals for the
// caller's church.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	_, churchID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "dashboard counts")
	defer cancel()

	now := h.Now()
	respond.JSON(w, http.StatusOK, dashboardResponse{
		ChurchID: churchID,
		AsOf:     now,
		Counts:   metricsstore.FetchChurchCounts(ctx, h.DB, churchID, now),
	})
}
