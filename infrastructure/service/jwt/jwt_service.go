package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/userdesk/userdesk/application/port/outbound"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// JWTService signs and validates bearer tokens with HS256. The claims carry
// the stored token row's ID so revocation can be checked against the store.
type JWTService struct {
	secret []byte
}

func NewJWTService(secret string) (*JWTService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &JWTService{secret: []byte(secret)}, nil
}

func (s *JWTService) Generate(claims outbound.TokenClaims, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"token_id": claims.TokenID,
		"user_id":  claims.UserID,
		"scope":    claims.Scope,
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *JWTService) Validate(tokenString string) (*outbound.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	tokenID, ok := claims["token_id"].(string)
	if !ok || tokenID == "" {
		return nil, ErrInvalidToken
	}
	// JSON numbers decode as float64.
	rawUserID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}
	scope, ok := claims["scope"].(string)
	if !ok || scope == "" {
		return nil, ErrInvalidToken
	}

	return &outbound.TokenClaims{
		TokenID: tokenID,
		UserID:  int64(rawUserID),
		Scope:   scope,
	}, nil
}
