// Package middleware provides the HTTP middleware of the Manifestor API.
//
// Handlers are composed with Chain:
//
//	h := middleware.Chain(mux,
//		middleware.RequestID,
//		middleware.Logger,
//		middleware.Recovery,
//		middleware.CORS(origins),
//	)
//
// Auth resolves a bearer token into a model.Principal and stores it in the
// request context. Handlers read it back with GetPrincipal or
// GetPrincipalID. Event streams may pass the token as an access_token query
// parameter because browsers cannot set headers on EventSource.
//
// RateLimit applies a token bucket per principal, or per client IP for
// anonymous requests such as sign-in. Idempotency replays the stored
// response when a POST is retried with the same Idempotency-Key.
package middleware
