package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/forgo/manifestor/api/internal/model"
	"github.com/forgo/manifestor/api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLifecycle struct {
	deleteErr error
	retryErr  error
	deletes   int
	retries   int
}

func (f *fakeLifecycle) DeleteAccount(ctx context.Context, principal *model.Principal) error {
	f.deletes++
	return f.deleteErr
}

func (f *fakeLifecycle) RetryIdentityDeletion(ctx context.Context, principal *model.Principal) error {
	f.retries++
	return f.retryErr
}

type fakeDataEraser struct {
	err   error
	calls []string
}

func (f *fakeDataEraser) EraseUserData(ctx context.Context, principal *model.Principal) error {
	f.calls = append(f.calls, principal.ID)
	return f.err
}

func TestAccountDelete_Outcomes(t *testing.T) {
	t.Parallel()

	cause := errors.New("identity provider timeout")
	tests := []struct {
		name   string
		err    error
		status int
		stage  string
	}{
		{"deleted", nil, http.StatusNoContent, ""},
		{"stale session", &service.IdentityError{Op: "delete identity", Err: service.ErrReauthenticationRequired}, http.StatusForbidden, ""},
		{"erase failed", &service.DeletionError{Stage: service.StageNoChanges, Err: cause}, http.StatusServiceUnavailable, "no_changes"},
		{"identity failed", &service.SagaPartialFailureError{PrincipalID: "account:ada", Err: cause}, http.StatusConflict, "data_erased_identity_intact"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			lifecycle := &fakeLifecycle{deleteErr: tt.err}
			h := NewAccountHandler(lifecycle, &fakeDataEraser{})

			rr := httptest.NewRecorder()
			h.Delete(rr, withPrincipal(httptest.NewRequest(http.MethodDelete, "/v1/account", nil)))

			require.Equal(t, tt.status, rr.Code)
			assert.Equal(t, 1, lifecycle.deletes)
			if tt.stage != "" {
				assert.Equal(t, tt.stage, parseErrorResponse(t, rr.Body.Bytes()).Stage)
			}
		})
	}
}

func TestAccountRetryIdentity(t *testing.T) {
	t.Parallel()

	lifecycle := &fakeLifecycle{}
	h := NewAccountHandler(lifecycle, &fakeDataEraser{})

	rr := httptest.NewRecorder()
	h.RetryIdentity(rr, withPrincipal(httptest.NewRequest(http.MethodPost, "/v1/account/identity:retry", nil)))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, 1, lifecycle.retries)
	assert.Zero(t, lifecycle.deletes)
}

func TestAccountEraseData_IsRepeatable(t *testing.T) {
	t.Parallel()

	eraser := &fakeDataEraser{}
	h := NewAccountHandler(&fakeLifecycle{}, eraser)

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		h.EraseData(rr, withPrincipal(httptest.NewRequest(http.MethodPost, "/v1/account/data:erase", nil)))
		require.Equal(t, http.StatusNoContent, rr.Code)
	}
	assert.Equal(t, []string{"account:ada", "account:ada"}, eraser.calls)
}

func TestAccountEraseData_StoreFailure(t *testing.T) {
	t.Parallel()

	h := NewAccountHandler(&fakeLifecycle{}, &fakeDataEraser{err: &service.StoreError{Op: "erase dreams", Err: context.DeadlineExceeded}})

	rr := httptest.NewRecorder()
	h.EraseData(rr, withPrincipal(httptest.NewRequest(http.MethodPost, "/v1/account/data:erase", nil)))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestAccountEndpoints_RequirePrincipal(t *testing.T) {
	t.Parallel()

	lifecycle := &fakeLifecycle{}
	h := NewAccountHandler(lifecycle, &fakeDataEraser{})

	rr := httptest.NewRecorder()
	h.Delete(rr, httptest.NewRequest(http.MethodDelete, "/v1/account", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Zero(t, lifecycle.deletes)
}
