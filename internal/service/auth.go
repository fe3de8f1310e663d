package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/forgo/manifestor/api/internal/database"
	"github.com/forgo/manifestor/api/internal/model"
	"github.com/forgo/manifestor/api/pkg/jwt"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// bcrypt cost factor (10-14 recommended for production)
	bcryptCost = 12

	// Password constraints
	minPasswordLength = 8
	maxPasswordLength = 128

	// DefaultReauthWindow is how long a credential check counts as recent
	DefaultReauthWindow = 5 * time.Minute
)

// AccountRepository defines the interface for account storage
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id string) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	UpdateDisplayName(ctx context.Context, id, displayName string) error
	Delete(ctx context.Context, id string) error
}

// SessionRepository defines the interface for session storage
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id string) (*model.Session, error)
	MarkAuthenticated(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// AuthEvent names an auth-state transition
type AuthEvent string

const (
	AuthSignedIn  AuthEvent = "signed_in"
	AuthSignedOut AuthEvent = "signed_out"
	AuthDeleted   AuthEvent = "deleted"
)

// AuthStateChange is delivered to subscribers. Principal is nil once the
// principal is gone; PrincipalID is always set.
type AuthStateChange struct {
	Event       AuthEvent
	PrincipalID string
	Principal   *model.Principal
}

// AuthStateListener receives auth-state changes
type AuthStateListener func(ctx context.Context, change AuthStateChange)

// IdentityProvider supplies the authenticated principal and its session
// lifecycle. AuthService is the local implementation.
type IdentityProvider interface {
	Subscribe(fn AuthStateListener) (unsubscribe func())
	Register(ctx context.Context, req RegisterRequest) (*SignInResult, error)
	SignIn(ctx context.Context, email, password string) (*SignInResult, error)
	Reauthenticate(ctx context.Context, principal *model.Principal, password string) (*model.Principal, error)
	SignOut(ctx context.Context, principal *model.Principal) error
	DeleteIdentity(ctx context.Context, principal *model.Principal) error
	Authenticate(ctx context.Context, token string) (*model.Principal, error)
}

// SignInResult is a new session and its access token
type SignInResult struct {
	Principal   *model.Principal `json:"principal"`
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	ExpiresAt   time.Time        `json:"expires_at"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// AuthService is a password-based identity provider over account and
// session records.
type AuthService struct {
	accounts     AccountRepository
	sessions     SessionRepository
	tokens       *jwt.Service
	reauthWindow time.Duration
	now          func() time.Time

	mu        sync.RWMutex
	listeners map[int]AuthStateListener
	nextID    int
}

// AuthServiceConfig holds configuration for the auth service
type AuthServiceConfig struct {
	AccountRepo  AccountRepository
	SessionRepo  SessionRepository
	Tokens       *jwt.Service
	ReauthWindow time.Duration    // optional, defaults to DefaultReauthWindow
	Now          func() time.Time // optional, defaults to time.Now
}

// NewAuthService creates a new auth service
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	window := cfg.ReauthWindow
	if window <= 0 {
		window = DefaultReauthWindow
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		accounts:     cfg.AccountRepo,
		sessions:     cfg.SessionRepo,
		tokens:       cfg.Tokens,
		reauthWindow: window,
		now:          now,
		listeners:    make(map[int]AuthStateListener),
	}
}

// Subscribe registers fn for auth-state changes until unsubscribe is called
func (s *AuthService) Subscribe(fn AuthStateListener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *AuthService) notify(ctx context.Context, change AuthStateChange) {
	s.mu.RLock()
	listeners := make([]AuthStateListener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(ctx, change)
	}
}

// Register creates an account with email/password and signs it in
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*SignInResult, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if !isValidEmail(email) {
		return nil, &ValidationError{Field: "email", Message: ErrInvalidEmail.Error()}
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, &ValidationError{Field: "password", Message: err.Error()}
	}
	displayName := strings.TrimSpace(req.DisplayName)
	if len(displayName) > model.MaxDisplayNameLength {
		return nil, &ValidationError{Field: "display_name", Message: "display_name must be at most 100 characters"}
	}

	existing, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, &StoreError{Op: "get account", Err: err}
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, &IdentityError{Op: "register", Err: err}
	}

	account := &model.Account{
		Email:       email,
		Hash:        &hash,
		DisplayName: stringPtr(displayName),
		PhotoURL:    stringPtr(strings.TrimSpace(req.PhotoURL)),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, &StoreError{Op: "create account", Err: err}
	}

	return s.startSession(ctx, account)
}

// SignIn verifies credentials and opens a new session
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, &StoreError{Op: "get account", Err: err}
	}
	if account == nil || account.Hash == nil || !checkPassword(password, *account.Hash) {
		return nil, &IdentityError{Op: "sign in", Err: ErrInvalidCredentials}
	}

	return s.startSession(ctx, account)
}

func (s *AuthService) startSession(ctx context.Context, account *model.Account) (*SignInResult, error) {
	now := s.now().UTC()
	session := &model.Session{
		ID:              uuid.New().String(),
		AccountID:       account.ID,
		AuthenticatedAt: now,
		ExpiresAt:       now.Add(s.tokens.GetExpiration()),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, &StoreError{Op: "create session", Err: err}
	}

	token, err := s.tokens.Sign(jwt.Claims{
		UserID: account.ID,
		Email:  account.Email,
		RegisteredClaims: gojwt.RegisteredClaims{
			ID:        session.ID,
			ExpiresAt: gojwt.NewNumericDate(session.ExpiresAt),
		},
	})
	if err != nil {
		return nil, &IdentityError{Op: "sign in", Err: err}
	}

	principal := principalFor(account, session)
	s.notify(ctx, AuthStateChange{Event: AuthSignedIn, PrincipalID: principal.ID, Principal: principal})

	return &SignInResult{
		Principal:   principal,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   session.ExpiresAt,
	}, nil
}

// Authenticate resolves an access token to the principal of a live session
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.Principal, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, &IdentityError{Op: "authenticate", Err: err}
	}

	session, err := s.sessions.GetByID(ctx, claims.SessionID())
	if err != nil {
		return nil, &StoreError{Op: "get session", Err: err}
	}
	if session == nil {
		return nil, &IdentityError{Op: "authenticate", Err: ErrSessionNotFound}
	}
	if !s.now().Before(session.ExpiresAt) {
		return nil, &IdentityError{Op: "authenticate", Err: ErrSessionExpired}
	}

	account, err := s.accounts.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, &StoreError{Op: "get account", Err: err}
	}
	if account == nil || account.ID != session.AccountID {
		return nil, &IdentityError{Op: "authenticate", Err: ErrAccountNotFound}
	}

	return principalFor(account, session), nil
}

// Reauthenticate re-checks the password and marks the session fresh
func (s *AuthService) Reauthenticate(ctx context.Context, principal *model.Principal, password string) (*model.Principal, error) {
	account, err := s.accounts.GetByID(ctx, principal.ID)
	if err != nil {
		return nil, &StoreError{Op: "get account", Err: err}
	}
	if account == nil || account.Hash == nil || !checkPassword(password, *account.Hash) {
		return nil, &IdentityError{Op: "reauthenticate", Err: ErrInvalidCredentials}
	}

	now := s.now().UTC()
	if err := s.sessions.MarkAuthenticated(ctx, principal.SessionID, now); err != nil {
		return nil, &StoreError{Op: "mark session", Err: err}
	}

	fresh := *principal
	fresh.AuthenticatedAt = now
	return &fresh, nil
}

// SignOut ends the principal's session
func (s *AuthService) SignOut(ctx context.Context, principal *model.Principal) error {
	if err := s.sessions.Delete(ctx, principal.SessionID); err != nil {
		return &IdentityError{Op: "sign out", Err: err}
	}
	s.notify(ctx, AuthStateChange{Event: AuthSignedOut, PrincipalID: principal.ID})
	return nil
}

// DeleteIdentity removes the account and all its sessions. It refuses with
// ErrReauthenticationRequired unless the session was authenticated within
// the reauthentication window.
func (s *AuthService) DeleteIdentity(ctx context.Context, principal *model.Principal) error {
	session, err := s.sessions.GetByID(ctx, principal.SessionID)
	if err != nil {
		return &StoreError{Op: "get session", Err: err}
	}
	if session == nil {
		return &IdentityError{Op: "delete identity", Err: ErrSessionNotFound}
	}

	fresh := *principal
	fresh.AuthenticatedAt = session.AuthenticatedAt
	if !fresh.IsFresh(s.now(), s.reauthWindow) {
		return &IdentityError{Op: "delete identity", Err: ErrReauthenticationRequired}
	}

	if err := s.accounts.Delete(ctx, principal.ID); err != nil {
		return &IdentityError{Op: "delete identity", Err: err}
	}

	slog.Info("identity deleted", "account_id", principal.ID)
	s.notify(ctx, AuthStateChange{Event: AuthDeleted, PrincipalID: principal.ID})
	return nil
}

// UpdateDisplayName changes the display name held by the identity record
func (s *AuthService) UpdateDisplayName(ctx context.Context, principal *model.Principal, displayName string) error {
	if err := s.accounts.UpdateDisplayName(ctx, principal.ID, displayName); err != nil {
		return &IdentityError{Op: "update display name", Err: err}
	}
	return nil
}

func principalFor(account *model.Account, session *model.Session) *model.Principal {
	p := &model.Principal{
		ID:              account.ID,
		Email:           account.Email,
		SessionID:       session.ID,
		AuthenticatedAt: session.AuthenticatedAt,
	}
	if account.DisplayName != nil {
		p.DisplayName = *account.DisplayName
	}
	if account.PhotoURL != nil {
		p.PhotoURL = *account.PhotoURL
	}
	return p
}

// Helper functions

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > maxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

func isValidEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	atIndex := strings.Index(email, "@")
	if atIndex < 1 {
		return false
	}
	dotIndex := strings.LastIndex(email, ".")
	if dotIndex < atIndex+2 {
		return false
	}
	return dotIndex < len(email)-1
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
