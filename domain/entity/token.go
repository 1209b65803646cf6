package entity

import (
	"time"
)

// Token names distinguish the two credentials a user holds at a time; scopes
// bind them to the endpoints they may call.
const (
	TokenNameAccess  = "app"
	TokenNameRefresh = "app_refresh"

	ScopeLogin   = "login"
	ScopeRefresh = "refresh"
)

// Token is the stored side of an issued bearer credential. The credential
// itself is a signed JWT carrying this row's ID; the row decides revocation.
// Expiry is checked when the token is presented, nothing sweeps stale rows.
type Token struct {
	ID        string     `json:"id"`
	UserID    int64      `json:"user_id"`
	Name      string     `json:"name"`
	Scope     string     `json:"scope"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

func NewToken(id string, userID int64, name, scope string, expiresAt time.Time) *Token {
	return &Token{
		ID:        id,
		UserID:    userID,
		Name:      name,
		Scope:     scope,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
}

func (t *Token) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

func (t *Token) IsRevoked() bool {
	return t.RevokedAt != nil
}

func (t *Token) Revoke() {
	now := time.Now().UTC()
	t.RevokedAt = &now
}
