package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// ============================================================================
// Test Helpers
// ============================================================================

func newTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate RSA key: %v", err)
	}
	return privateKey
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewTestService(newTestKey(t), "test-issuer", 15*time.Minute)
}

func sessionClaims() Claims {
	return Claims{
		UserID:           "account:ada",
		Email:            "ada@example.com",
		RegisteredClaims: gojwt.RegisteredClaims{ID: "session-1"},
	}
}

// ============================================================================
// Sign
// ============================================================================

func TestSign_ValidClaims_ReturnsToken(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	token, err := svc.Sign(sessionClaims())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parts := strings.Split(token, "."); len(parts) != 3 {
		t.Errorf("expected 3 token parts, got %d", len(parts))
	}
}

func TestSign_NilPrivateKey_ReturnsErrInvalidKey(t *testing.T) {
	t.Parallel()
	svc := &Service{issuer: "test-issuer", now: time.Now}

	_, err := svc.Sign(sessionClaims())
	if !errors.Is(err, ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
}

func TestSign_SetsStandardClaims(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	before := time.Now().Add(-time.Second)
	token, err := svc.Sign(sessionClaims())
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if claims.Issuer != "test-issuer" {
		t.Errorf("Issuer = %q", claims.Issuer)
	}
	if claims.Subject != "account:ada" {
		t.Errorf("Subject = %q, want user id", claims.Subject)
	}
	if claims.IssuedAt == nil || claims.IssuedAt.Before(before) {
		t.Errorf("IssuedAt not set: %v", claims.IssuedAt)
	}
	wantExp := claims.IssuedAt.Add(15 * time.Minute)
	if claims.ExpiresAt == nil || !claims.ExpiresAt.Time.Equal(wantExp) {
		t.Errorf("ExpiresAt = %v, want %v", claims.ExpiresAt, wantExp)
	}
}

func TestSign_PreservesCustomExpiration(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	custom := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	claims := sessionClaims()
	claims.ExpiresAt = gojwt.NewNumericDate(custom)

	token, err := svc.Sign(claims)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	got, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !got.ExpiresAt.Time.Equal(custom) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt.Time, custom)
	}
}

// ============================================================================
// Validate
// ============================================================================

func TestValidate_RoundTripKeepsSession(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	token, _ := svc.Sign(sessionClaims())
	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != "account:ada" || claims.Email != "ada@example.com" {
		t.Errorf("custom claims lost: %+v", claims)
	}
	if claims.SessionID() != "session-1" {
		t.Errorf("SessionID = %q", claims.SessionID())
	}
}

func TestValidate_NilPublicKey_ReturnsErrInvalidKey(t *testing.T) {
	t.Parallel()
	svc := &Service{issuer: "test-issuer", now: time.Now}

	_, err := svc.Validate("a.b.c")
	if !errors.Is(err, ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
}

func TestValidate_Malformed_ReturnsErrInvalidToken(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	for _, token := range []string{"", "one", "two.parts", "a.b.c.d"} {
		if _, err := svc.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate(%q) = %v, want ErrInvalidToken", token, err)
		}
	}
}

func TestValidate_Expired_ReturnsErrTokenExpired(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	claims := sessionClaims()
	claims.ExpiresAt = gojwt.NewNumericDate(time.Now().Add(-time.Minute))
	token, _ := svc.Sign(claims)

	if _, err := svc.Validate(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestValidate_NotYetValid_ReturnsErrTokenNotYetValid(t *testing.T) {
	t.Parallel()
	key := newTestKey(t)
	future := NewTestService(key, "test-issuer", time.Hour)
	future.now = func() time.Time { return time.Now().Add(time.Hour) }
	token, _ := future.Sign(sessionClaims())

	current := NewTestService(key, "test-issuer", time.Hour)
	if _, err := current.Validate(token); !errors.Is(err, ErrTokenNotYetValid) {
		t.Errorf("expected ErrTokenNotYetValid, got %v", err)
	}
}

func TestValidate_OtherKey_ReturnsErrInvalidSignature(t *testing.T) {
	t.Parallel()
	token, _ := newTestService(t).Sign(sessionClaims())

	if _, err := newTestService(t).Validate(token); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestValidate_WrongIssuer_ReturnsErrInvalidToken(t *testing.T) {
	t.Parallel()
	key := newTestKey(t)
	token, _ := NewTestService(key, "someone-else", time.Hour).Sign(sessionClaims())

	if _, err := NewTestService(key, "test-issuer", time.Hour).Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidate_RejectsHS256(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	forged := gojwt.NewWithClaims(gojwt.SigningMethodHS256, &Claims{
		UserID:           "account:mallory",
		RegisteredClaims: gojwt.RegisteredClaims{Issuer: "test-issuer"},
	})
	token, err := forged.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}

	if _, err := svc.Validate(token); err == nil {
		t.Error("expected HS256 token to be rejected")
	}
}

// ============================================================================
// Key files
// ============================================================================

func TestNewService_LoadsGeneratedKeyPair(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	if err := GenerateKeyPair(privPath, pubPath); err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	signer, err := NewService(Config{PrivateKeyPath: privPath, Issuer: "manifestor-api", ExpirationMins: 60})
	if err != nil {
		t.Fatalf("NewService(private): %v", err)
	}
	verifier, err := NewService(Config{PublicKeyPath: pubPath, Issuer: "manifestor-api"})
	if err != nil {
		t.Fatalf("NewService(public): %v", err)
	}

	if signer.GetExpiration() != time.Hour {
		t.Errorf("GetExpiration = %v", signer.GetExpiration())
	}

	token, err := signer.Sign(sessionClaims())
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := verifier.Validate(token); err != nil {
		t.Errorf("public-key verifier rejected token: %v", err)
	}
	if _, err := verifier.Sign(sessionClaims()); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("verifier should not sign, got %v", err)
	}
}

func TestNewService_MissingKeyFile(t *testing.T) {
	t.Parallel()
	_, err := NewService(Config{PrivateKeyPath: filepath.Join(t.TempDir(), "absent.pem")})
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
