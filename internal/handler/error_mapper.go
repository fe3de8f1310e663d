package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/forgo/manifestor/api/internal/model"
	"github.com/forgo/manifestor/api/internal/service"
	"github.com/forgo/manifestor/api/pkg/jwt"
)

// MapServiceError converts a service error to a ProblemDetails response.
// Every handler goes through here so a given failure always has the same
// status and problem type.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	var (
		validationErr *service.ValidationError
		partialErr    *service.SagaPartialFailureError
		deletionErr   *service.DeletionError
		storeErr      *service.StoreError
		identityErr   *service.IdentityError
	)

	switch {
	// ===== Validation → 422 =====
	case errors.As(err, &validationErr):
		return model.NewValidationError([]model.FieldError{{Field: validationErr.Field, Message: validationErr.Message}})

	// ===== Account deletion outcomes =====
	case errors.As(err, &partialErr):
		return model.NewPartialDeletionError(string(partialErr.Stage()),
			"Your data was erased but the account could not be removed. Retry to finish.")
	case errors.As(err, &deletionErr):
		p := model.NewStoreUnavailableError("Account deletion failed. Nothing was changed.")
		p.Stage = string(deletionErr.Stage)
		return p

	// ===== Authorization → 403 =====
	case errors.Is(err, service.ErrReauthenticationRequired):
		return model.NewReauthenticationRequiredError("Sign in again to continue")

	// ===== Authentication → 401 =====
	case errors.Is(err, service.ErrInvalidCredentials):
		return model.NewUnauthorizedError(service.ErrInvalidCredentials.Error())
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrSessionExpired),
		errors.Is(err, service.ErrAccountNotFound):
		return model.NewUnauthorizedError("session is no longer valid")
	case errors.Is(err, jwt.ErrTokenExpired):
		return model.NewUnauthorizedError("token expired")
	case errors.Is(err, jwt.ErrInvalidSignature):
		return model.NewUnauthorizedError("invalid token signature")
	case errors.Is(err, jwt.ErrInvalidToken),
		errors.Is(err, jwt.ErrTokenNotYetValid):
		return model.NewUnauthorizedError("invalid token")

	// ===== Not Found → 404 =====
	case errors.Is(err, service.ErrDreamNotFound):
		return model.NewNotFoundError("dream")
	case errors.Is(err, service.ErrProfileNotFound):
		return model.NewNotFoundError("profile")

	// ===== Conflict → 409 =====
	case errors.Is(err, service.ErrEmailAlreadyExists):
		return model.NewConflictError(service.ErrEmailAlreadyExists.Error())

	// ===== Dependencies → 503 / 502 =====
	case errors.As(err, &storeErr):
		slog.Error("store failure", slog.String("op", storeErr.Op), slog.String("error", storeErr.Err.Error()))
		return model.NewStoreUnavailableError("")
	case errors.As(err, &identityErr):
		slog.Error("identity provider failure", slog.String("op", identityErr.Op), slog.String("error", identityErr.Err.Error()))
		return model.NewIdentityProviderError("The identity provider could not complete the request")
	}

	slog.Error("unmapped service error", slog.String("error", err.Error()))
	return model.NewInternalError("")
}

// WriteServiceError maps err and writes the problem
func WriteServiceError(w http.ResponseWriter, err error) {
	WriteError(w, MapServiceError(err))
}
