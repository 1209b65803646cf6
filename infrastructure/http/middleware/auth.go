package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/userdesk/userdesk/application/port/outbound"
	"github.com/userdesk/userdesk/domain/entity"
	"github.com/userdesk/userdesk/infrastructure/http/response"
)

type contextKey string

const authUserKey contextKey = "auth_user"

// AuthMiddleware resolves the presented bearer token once per request: the
// JWT signature plus the stored token row, whose revocation and expiry are
// checked at use time.
type AuthMiddleware struct {
	tokenService outbound.TokenService
	tokens       outbound.TokenRepository
}

func NewAuthMiddleware(tokenService outbound.TokenService, tokens outbound.TokenRepository) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
		tokens:       tokens,
	}
}

// RequireAuth authenticates with the regular access-token scope.
func (m *AuthMiddleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireScope(entity.ScopeLogin, next)
}

// RequireScope authenticates the bearer token and checks it was issued with
// the given scope.
func (m *AuthMiddleware) RequireScope(scope string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.tokenService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}
		if claims.Scope != scope {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		row, err := m.tokens.FindByID(r.Context(), claims.TokenID)
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}
		if row.UserID != claims.UserID || row.Scope != scope || row.IsRevoked() || row.IsExpired() {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
	}
}

// ContextWithClaims attaches authenticated token claims to the context.
func ContextWithClaims(ctx context.Context, claims *outbound.TokenClaims) context.Context {
	return context.WithValue(ctx, authUserKey, claims)
}

// GetUserClaims retrieves the authenticated token claims from the context.
func GetUserClaims(ctx context.Context) *outbound.TokenClaims {
	if claims, ok := ctx.Value(authUserKey).(*outbound.TokenClaims); ok {
		return claims
	}
	return nil
}
