package outbound

import "time"

type TokenClaims struct {
	TokenID string `json:"token_id"`
	UserID  int64  `json:"user_id"`
	Scope   string `json:"scope"`
}

type TokenService interface {
	Generate(claims TokenClaims, ttl time.Duration) (string, error)
	Validate(token string) (*TokenClaims, error)
}
