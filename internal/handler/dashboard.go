package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/forgo/manifestor/api/internal/model"
	"github.com/forgo/manifestor/api/internal/service"
)

// Summaries builds the dashboard and manifest log views
type Summaries interface {
	Dashboard(ctx context.Context, principal *model.Principal, now time.Time) (*service.Dashboard, error)
	ManifestLog(ctx context.Context, principal *model.Principal, term string, selector model.TypeSelector, now time.Time) (*service.ManifestLog, error)
}

// DashboardHandler handles the read-only summary endpoints
type DashboardHandler struct {
	summaries Summaries
	now       func() time.Time
}

// NewDashboardHandler creates a new dashboard handler. now may be nil.
func NewDashboardHandler(summaries Summaries, now func() time.Time) *DashboardHandler {
	if now == nil {
		now = time.Now
	}
	return &DashboardHandler{summaries: summaries, now: now}
}

// Dashboard handles GET /v1/dashboard
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	dashboard, err := h.summaries.Dashboard(r.Context(), principal, h.now())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteData(w, http.StatusOK, dashboard, map[string]string{
		"self":         "/v1/dashboard",
		"manifest_log": "/v1/manifest-log",
	})
}

// ManifestLog handles GET /v1/manifest-log?q=&type=
func (h *DashboardHandler) ManifestLog(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	selector, ok := typeSelector(w, r)
	if !ok {
		return
	}

	log, err := h.summaries.ManifestLog(r.Context(), principal, r.URL.Query().Get("q"), selector, h.now())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteData(w, http.StatusOK, log, map[string]string{"self": "/v1/manifest-log"})
}
