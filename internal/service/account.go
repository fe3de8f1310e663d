package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/forgo/manifestor/api/internal/model"
)

// DataEraser erases all store-side data of a principal. It must be
// idempotent.
type DataEraser interface {
	EraseUserData(ctx context.Context, principal *model.Principal) error
}

// IdentityRemover deletes an identity and ends its session
type IdentityRemover interface {
	DeleteIdentity(ctx context.Context, principal *model.Principal) error
	SignOut(ctx context.Context, principal *model.Principal) error
}

// StoreWriteObserver is told when a principal writes store data
type StoreWriteObserver interface {
	DataWritten(ownerID string)
}

// AccountLifecycleCoordinator deletes an account in three ordered steps:
// erase data, delete the identity, sign out. There is no compensation.
// A principal whose data was erased but whose identity survived is
// remembered, and the next attempt starts at identity deletion, unless the
// principal signed in or wrote data in between.
type AccountLifecycleCoordinator struct {
	eraser   DataEraser
	identity IdentityRemover

	mu     sync.Mutex
	erased map[string]struct{}
}

// AccountLifecycleConfig holds configuration for the coordinator
type AccountLifecycleConfig struct {
	Eraser   DataEraser
	Identity IdentityRemover
}

// NewAccountLifecycleCoordinator creates a new coordinator
func NewAccountLifecycleCoordinator(cfg AccountLifecycleConfig) *AccountLifecycleCoordinator {
	return &AccountLifecycleCoordinator{
		eraser:   cfg.Eraser,
		identity: cfg.Identity,
		erased:   make(map[string]struct{}),
	}
}

// DeleteAccount runs the deletion. It returns *DeletionError when nothing
// was changed and *SagaPartialFailureError when data was erased but the
// identity is intact.
func (c *AccountLifecycleCoordinator) DeleteAccount(ctx context.Context, principal *model.Principal) error {
	log := slog.With("principal_id", principal.ID)

	if c.isErased(principal.ID) {
		log.Info("account deletion resuming at identity deletion")
		return c.deleteIdentity(ctx, principal)
	}

	log.Info("account deletion started")
	if err := c.eraser.EraseUserData(ctx, principal); err != nil {
		log.Warn("account deletion aborted, no changes made", "error", err)
		return &DeletionError{Stage: StageNoChanges, Err: err}
	}
	c.markErased(principal.ID)
	log.Info("account data erased")

	return c.deleteIdentity(ctx, principal)
}

// RetryIdentityDeletion re-runs only identity deletion and sign-out for a
// principal left in the data-erased state. Without such a record it falls
// back to a full DeleteAccount, which is safe because erasure is idempotent.
func (c *AccountLifecycleCoordinator) RetryIdentityDeletion(ctx context.Context, principal *model.Principal) error {
	if !c.isErased(principal.ID) {
		return c.DeleteAccount(ctx, principal)
	}
	return c.deleteIdentity(ctx, principal)
}

// PendingIdentityDeletion reports whether the principal's data is erased
// and its identity still awaits deletion
func (c *AccountLifecycleCoordinator) PendingIdentityDeletion(principalID string) bool {
	return c.isErased(principalID)
}

// DataWritten drops the erased state of the owner, so the next deletion
// erases again before the identity goes
func (c *AccountLifecycleCoordinator) DataWritten(ownerID string) {
	if c.takeErased(ownerID) {
		slog.Info("data written after erasure, next deletion erases again", "principal_id", ownerID)
	}
}

// OnAuthStateChange drops the erased state on sign-in, which recreates the
// profile. Reauthentication does not sign in and keeps the state.
func (c *AccountLifecycleCoordinator) OnAuthStateChange(ctx context.Context, change AuthStateChange) {
	if change.Event != AuthSignedIn {
		return
	}
	c.DataWritten(change.PrincipalID)
}

func (c *AccountLifecycleCoordinator) deleteIdentity(ctx context.Context, principal *model.Principal) error {
	log := slog.With("principal_id", principal.ID)

	if err := c.identity.DeleteIdentity(ctx, principal); err != nil {
		log.Warn("identity deletion failed, data already erased", "error", err)
		return &SagaPartialFailureError{PrincipalID: principal.ID, Err: err}
	}
	c.clearErased(principal.ID)
	log.Info("identity deleted")

	// The identity is gone, so its sessions cannot be used either way
	if err := c.identity.SignOut(ctx, principal); err != nil {
		log.Warn("sign-out after identity deletion failed", "error", err)
	}

	log.Info("account deletion completed")
	return nil
}

func (c *AccountLifecycleCoordinator) isErased(principalID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.erased[principalID]
	return ok
}

func (c *AccountLifecycleCoordinator) markErased(principalID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.erased[principalID] = struct{}{}
}

func (c *AccountLifecycleCoordinator) clearErased(principalID string) {
	c.takeErased(principalID)
}

func (c *AccountLifecycleCoordinator) takeErased(principalID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.erased[principalID]
	delete(c.erased, principalID)
	return ok
}
