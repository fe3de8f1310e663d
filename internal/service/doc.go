// Package service implements the business logic layer for the Manifestor API.
//
// Services validate input, call repositories through interfaces they define
// themselves, and translate failures into the error taxonomy in errors.go:
//
//   - *ValidationError: bad input, names the first violated field
//   - *StoreError: the document store failed; never retried here
//   - *IdentityError: the identity provider refused or failed
//   - *DeletionError / *SagaPartialFailureError: account deletion outcomes
//
// # Service Pattern
//
//   - Constructor function (NewXxxService) accepts a config struct
//   - Every operation takes the caller's principal or owner ID explicitly;
//     there is no ambient current user
//   - Writes return the stored record and publish it on the EventHub so
//     clients merge it instead of reloading
//
// # Pure Helpers
//
// progress.go and filter.go hold stateless functions over dream slices:
// per-dream and average progress, days remaining, streaks, search, type
// filtering and category counts.
//
// # Example Usage
//
//	dreams := NewDreamService(DreamServiceConfig{
//	    DreamRepo: dreamRepository,
//	    Events:    eventHub,
//	})
//	dream, err := dreams.Create(ctx, principal.ID, draft)
//	var verr *ValidationError
//	if errors.As(err, &verr) {
//	    // verr.Field is the first invalid field
//	}
package service
