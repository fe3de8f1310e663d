package service

import (
	"errors"
	"fmt"

	"github.com/forgo/manifestor/api/internal/model"
)

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Authentication Errors =====
var (
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrEmailAlreadyExists       = errors.New("email already registered")
	ErrAccountNotFound          = errors.New("account not found")
	ErrPasswordTooShort         = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong          = errors.New("password must be at most 128 characters")
	ErrInvalidEmail             = errors.New("invalid email format")
	ErrSessionNotFound          = errors.New("session not found")
	ErrSessionExpired           = errors.New("session expired")
	ErrReauthenticationRequired = errors.New("recent sign-in required")
)

// ===== Dream Errors =====
var (
	ErrDreamNotFound = errors.New("dream not found")
)

// ===== Profile Errors =====
var (
	ErrProfileNotFound = errors.New("profile not found")
)

// ValidationError is bad input. Field names the first violated field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// StoreError is a document store failure. It is never retried here.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IdentityError is a failure of the identity provider
type IdentityError struct {
	Op  string
	Err error
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("identity %s failed: %v", e.Op, e.Err)
}

func (e *IdentityError) Unwrap() error { return e.Err }

// DeletionStage names how far an account deletion got
type DeletionStage string

const (
	StageNoChanges                DeletionStage = "no_changes"
	StageDataErasedIdentityIntact DeletionStage = "data_erased_identity_intact"
)

// DeletionError reports an account deletion that failed before anything
// was erased.
type DeletionError struct {
	Stage DeletionStage
	Err   error
}

func (e *DeletionError) Error() string {
	return fmt.Sprintf("account deletion failed (%s): %v", e.Stage, e.Err)
}

func (e *DeletionError) Unwrap() error { return e.Err }

// SagaPartialFailureError reports that user data was erased but the
// identity could not be deleted. Only identity deletion should be retried.
type SagaPartialFailureError struct {
	PrincipalID string
	Err         error
}

func (e *SagaPartialFailureError) Error() string {
	return fmt.Sprintf("account data erased but identity deletion failed: %v", e.Err)
}

func (e *SagaPartialFailureError) Unwrap() error { return e.Err }

// Stage is always StageDataErasedIdentityIntact
func (e *SagaPartialFailureError) Stage() DeletionStage {
	return StageDataErasedIdentityIntact
}

// firstValidationError converts the first field error, or returns nil
func firstValidationError(fields []model.FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Field: fields[0].Field, Message: fields[0].Message}
}
