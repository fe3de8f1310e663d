package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/forgo/manifestor/api/internal/model"
	"github.com/forgo/manifestor/api/pkg/jwt"
)

// Authenticator resolves a bearer token to the principal of a live session
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Principal, error)
}

// ErrorWriter renders an authentication failure. When nil, Auth answers
// every failure with 401.
type ErrorWriter func(w http.ResponseWriter, err error)

// Auth returns a middleware that resolves the caller's principal. Event
// streams may pass the token as the access_token query parameter since
// browsers cannot set headers on EventSource.
func Auth(authn Authenticator, onError ErrorWriter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, problem := bearerToken(r)
			if problem != "" {
				model.NewUnauthorizedError(problem).WriteJSON(w)
				return
			}

			principal, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				if onError != nil {
					onError(w, err)
					return
				}
				model.NewUnauthorizedError(tokenProblem(err)).WriteJSON(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

func bearerToken(r *http.Request) (token, problem string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if r.Method == http.MethodGet {
			if t := r.URL.Query().Get("access_token"); t != "" {
				return t, ""
			}
		}
		return "", "missing authorization header"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", "invalid authorization header format"
	}
	return strings.TrimSpace(parts[1]), ""
}

func tokenProblem(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, jwt.ErrInvalidSignature):
		return "invalid token signature"
	default:
		return "invalid token"
	}
}

// WithPrincipal returns a context carrying the principal
func WithPrincipal(ctx context.Context, principal *model.Principal) context.Context {
	if holder, ok := ctx.Value(principalHolderKey).(*principalHolder); ok && principal != nil {
		holder.principalID = principal.ID
	}
	return context.WithValue(ctx, PrincipalKey, principal)
}

// GetPrincipal extracts the authenticated principal from context
func GetPrincipal(ctx context.Context) *model.Principal {
	if p, ok := ctx.Value(PrincipalKey).(*model.Principal); ok {
		return p
	}
	return nil
}

// GetPrincipalID extracts the authenticated principal's ID from context
func GetPrincipalID(ctx context.Context) string {
	if p := GetPrincipal(ctx); p != nil {
		return p.ID
	}
	return ""
}

// principalHolder lets Logger see a principal attached further down the chain
type principalHolder struct {
	principalID string
}

const principalHolderKey contextKey = "principalHolder"
