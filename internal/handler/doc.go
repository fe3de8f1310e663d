// Package handler provides the HTTP endpoints of the Manifestor API.
//
// Each handler depends on a small interface naming only the service
// methods it calls, so tests can drive it with func-field fakes. Routes
// wires the handlers into a ServeMux together with the auth, rate limit
// and idempotency middleware.
//
// # Response Format
//
// Successes are written with WriteData as {"data": ..., "_links": {...}}.
// Failures go through MapServiceError and are written as RFC 9457 problem
// details. Validation failures name the first violated field; an account
// deletion that erased data but kept the identity is a 409 carrying
// stage "data_erased_identity_intact".
package handler
