package model

import "time"

// Account is the identity record held by the identity provider
type Account struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Hash        *string   `json:"-"` // Never expose password hash
	DisplayName *string   `json:"display_name,omitempty"`
	PhotoURL    *string   `json:"photo_url,omitempty"`
	CreatedOn   time.Time `json:"created_on"`
	UpdatedOn   time.Time `json:"updated_on"`
}

// Session is one signed-in session of an account
type Session struct {
	ID              string    `json:"id"`
	AccountID       string    `json:"account_id"`
	AuthenticatedAt time.Time `json:"authenticated_at"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// Principal is the authenticated caller. It is resolved once per request
// and passed explicitly to every operation that acts on behalf of a user.
type Principal struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	DisplayName     string    `json:"display_name,omitempty"`
	PhotoURL        string    `json:"photo_url,omitempty"`
	SessionID       string    `json:"-"`
	AuthenticatedAt time.Time `json:"-"`
}

// IsFresh reports whether the session was authenticated within window of now
func (p *Principal) IsFresh(now time.Time, window time.Duration) bool {
	if p == nil || p.AuthenticatedAt.IsZero() {
		return false
	}
	return now.Sub(p.AuthenticatedAt) <= window
}
