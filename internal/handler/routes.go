package handler

import (
	"net/http"

	"github.com/forgo/manifestor/api/internal/middleware"
)

// Routes groups the handlers and per-route middleware of the API
type Routes struct {
	Health     *HealthHandler
	Auth       *AuthHandler
	Dreams     *DreamHandler
	Profile    *ProfileHandler
	Preference *PreferenceHandler
	Dashboard  *DashboardHandler
	Account    *AccountHandler
	Events     *EventsHandler

	// RequireAuth resolves the principal; required
	RequireAuth middleware.Middleware
	// AuthLimit throttles the credential endpoints; optional
	AuthLimit middleware.Middleware
	// Idempotent guards dream creation against retried POSTs; optional
	Idempotent middleware.Middleware
}

// Register adds every route to mux
func (rt *Routes) Register(mux *http.ServeMux) {
	limited := orPassThrough(rt.AuthLimit)
	idempotent := orPassThrough(rt.Idempotent)
	authed := func(h http.HandlerFunc, extra ...middleware.Middleware) http.Handler {
		return middleware.Chain(h, append([]middleware.Middleware{rt.RequireAuth}, extra...)...)
	}

	mux.HandleFunc("GET /health", rt.Health.Health)

	// Public auth endpoints
	mux.Handle("POST /v1/auth/register", limited(http.HandlerFunc(rt.Auth.Register)))
	mux.Handle("POST /v1/auth/login", limited(http.HandlerFunc(rt.Auth.Login)))

	// Protected auth endpoints
	mux.Handle("POST /v1/auth/reauthenticate", authed(rt.Auth.Reauthenticate, limited))
	mux.Handle("POST /v1/auth/logout", authed(rt.Auth.Logout))
	mux.Handle("GET /v1/auth/me", authed(rt.Auth.Me))

	// Dreams
	mux.Handle("GET /v1/dreams", authed(rt.Dreams.List))
	mux.Handle("POST /v1/dreams", authed(rt.Dreams.Create, idempotent))
	mux.Handle("GET /v1/dreams/categories", authed(rt.Dreams.Categories))
	mux.Handle("GET /v1/dreams/{dreamId}", authed(rt.Dreams.Get))
	mux.Handle("PATCH /v1/dreams/{dreamId}/checklist/{index}", authed(rt.Dreams.SetItemDone))

	// Summaries
	mux.Handle("GET /v1/dashboard", authed(rt.Dashboard.Dashboard))
	mux.Handle("GET /v1/manifest-log", authed(rt.Dashboard.ManifestLog))

	// Profile and preferences
	mux.Handle("GET /v1/profile", authed(rt.Profile.Get))
	mux.Handle("PATCH /v1/profile", authed(rt.Profile.Update))
	mux.Handle("GET /v1/preferences/reminder", authed(rt.Preference.GetReminder))
	mux.Handle("PUT /v1/preferences/reminder", authed(rt.Preference.SetReminder))

	// Account lifecycle
	mux.Handle("DELETE /v1/account", authed(rt.Account.Delete))
	mux.Handle("POST /v1/account/identity:retry", authed(rt.Account.RetryIdentity))
	mux.Handle("POST /v1/account/data:erase", authed(rt.Account.EraseData))

	// SSE
	mux.Handle("GET /v1/events/stream", authed(rt.Events.Stream))
}

func orPassThrough(m middleware.Middleware) middleware.Middleware {
	if m == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return m
}
