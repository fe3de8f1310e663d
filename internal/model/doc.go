// Package model defines domain entities and data structures for the Manifestor API.
//
// The model package contains the struct definitions for domain objects,
// request/response types, and error definitions shared by all layers.
//
// # Domain Entities
//
//   - Dream: a goal owned by one user, with an ordered checklist
//   - ChecklistItem: one step of a dream; its text is never empty
//   - Profile: the per-user profile document, upserted on sign-in
//   - Account, Session, Principal: identity provider records and the
//     authenticated caller resolved from a session
//
// # Validation
//
// Request types expose Validate() returning []FieldError in field order:
//
//	draft := &model.DreamDraft{Title: "Run a marathon"}
//	if errs := draft.Validate(); len(errs) > 0 {
//	    // errs[0] is the first violated field
//	}
//
// # Error Types
//
// RFC 9457 Problem Details errors are defined in errors.go.
package model
