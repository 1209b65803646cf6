package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/userdesk/userdesk/application/port/inbound"
	"github.com/userdesk/userdesk/application/port/outbound"
	"github.com/userdesk/userdesk/domain/entity"
	"github.com/userdesk/userdesk/infrastructure/service/logger"
	"github.com/userdesk/userdesk/pkg/apperror"
)

var (
	// ErrInvalidCredentials deliberately does not say which of the two fields
	// was wrong.
	ErrInvalidCredentials = errors.New("email or password wrong")

	// ErrRefreshTokenMissing covers absent, revoked and expired refresh
	// tokens alike.
	ErrRefreshTokenMissing = errors.New("refresh token not found")
)

type AuthUseCase struct {
	users           outbound.UserRepository
	tokens          outbound.TokenRepository
	tokenService    outbound.TokenService
	passwords       outbound.PasswordService
	rateLimit       inbound.RateLimitService
	logger          logger.Logger
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

func NewAuthUseCase(
	users outbound.UserRepository,
	tokens outbound.TokenRepository,
	tokenService outbound.TokenService,
	passwords outbound.PasswordService,
	rateLimit inbound.RateLimitService,
	log logger.Logger,
	accessTokenTTL time.Duration,
	refreshTokenTTL time.Duration,
) inbound.AuthUseCase {
	return &AuthUseCase{
		users:           users,
		tokens:          tokens,
		tokenService:    tokenService,
		passwords:       passwords,
		rateLimit:       rateLimit,
		logger:          log,
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

func (uc *AuthUseCase) Login(ctx context.Context, req inbound.LoginRequest) (*inbound.LoginResponse, error) {
	if err := validateLoginRequest(req); err != nil {
		logger.LogAuthEvent(ctx, uc.logger, "login_validation_failed", 0, "", false, map[string]interface{}{
			"email": req.Email,
			"error": err.Error(),
		})
		return nil, err
	}

	ip := clientIP(ctx)
	if uc.rateLimit != nil {
		blocked, err := uc.rateLimit.IsBlocked(ctx, fmt.Sprintf("ip:%s", ip))
		if err != nil {
			uc.logger.Error(ctx, "Failed to check IP block status", err, map[string]interface{}{"ip": ip})
		}
		if blocked {
			logger.LogSecurityEvent(ctx, uc.logger, "blocked_ip_login_attempt", "MEDIUM", map[string]interface{}{
				"ip":    ip,
				"email": req.Email,
			})
			return nil, errors.New("too many login attempts, please try again later")
		}

		allowed, err := uc.rateLimit.CheckLimit(ctx, fmt.Sprintf("ip:%s", ip), 5, 15*time.Minute)
		if err != nil {
			uc.logger.Error(ctx, "Failed to check rate limit", err, map[string]interface{}{"ip": ip})
			// Fail open on limiter errors.
			allowed = true
		}
		if !allowed {
			uc.rateLimit.Block(ctx, fmt.Sprintf("ip:%s", ip), 30*time.Minute, "login rate limit exceeded")
			logger.LogSecurityEvent(ctx, uc.logger, "ip_rate_limit_exceeded", "HIGH", map[string]interface{}{
				"ip":    ip,
				"email": req.Email,
			})
			return nil, errors.New("too many login attempts, please try again later")
		}
	}

	user, err := uc.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			uc.noteFailedAttempt(ctx, ip)
			logger.LogAuthEvent(ctx, uc.logger, "login_failed_user_not_found", 0, ip, false, map[string]interface{}{
				"email": req.Email,
			})
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	valid, err := uc.passwords.VerifyPassword(req.Password, user.Password)
	if err != nil {
		uc.logger.Error(ctx, "Password verification error", err, map[string]interface{}{"user_id": user.ID})
		return nil, fmt.Errorf("password verification failed: %w", err)
	}
	if !valid {
		uc.noteFailedAttempt(ctx, ip)
		logger.LogAuthEvent(ctx, uc.logger, "login_failed_invalid_password", user.ID, ip, false, map[string]interface{}{
			"email": req.Email,
		})
		return nil, ErrInvalidCredentials
	}

	// Both tokens are issued on login. The access token runs on a short
	// window; issuing it leaves any existing refresh token untouched.
	accessToken, accessEntity, err := uc.issueToken(ctx, user.ID, entity.TokenNameAccess, entity.ScopeLogin, uc.accessTokenTTL)
	if err != nil {
		return nil, err
	}
	refreshToken, _, err := uc.issueToken(ctx, user.ID, entity.TokenNameRefresh, entity.ScopeRefresh, uc.refreshTokenTTL)
	if err != nil {
		return nil, err
	}

	logger.LogAuthEvent(ctx, uc.logger, "login_successful", user.ID, ip, true, map[string]interface{}{
		"email": req.Email,
	})

	return &inbound.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessEntity.ExpiresAt,
	}, nil
}

func (uc *AuthUseCase) Refresh(ctx context.Context, userID int64, refreshTokenID string) (*inbound.RefreshResponse, error) {
	token, err := uc.tokens.FindByID(ctx, refreshTokenID)
	if err != nil {
		if errors.Is(err, outbound.ErrTokenNotFound) {
			logger.LogSecurityEvent(ctx, uc.logger, "refresh_token_not_found", "MEDIUM", map[string]interface{}{
				"user_id": userID,
			})
			return nil, ErrRefreshTokenMissing
		}
		return nil, fmt.Errorf("failed to find refresh token: %w", err)
	}

	if token.UserID != userID || token.Name != entity.TokenNameRefresh || token.IsRevoked() || token.IsExpired() {
		logger.LogSecurityEvent(ctx, uc.logger, "refresh_token_rejected", "HIGH", map[string]interface{}{
			"user_id": userID,
		})
		return nil, ErrRefreshTokenMissing
	}

	// Every other token goes away; the refresh token itself survives so it
	// can be presented again.
	if err := uc.tokens.RevokeOtherTokens(ctx, userID, token.ID); err != nil {
		return nil, fmt.Errorf("failed to revoke tokens: %w", err)
	}

	accessToken, accessEntity, err := uc.issueToken(ctx, userID, entity.TokenNameAccess, entity.ScopeLogin, uc.accessTokenTTL)
	if err != nil {
		return nil, err
	}

	logger.LogAuthEvent(ctx, uc.logger, "token_refresh_successful", userID, "", true, nil)

	return &inbound.RefreshResponse{
		AccessToken: accessToken,
		ExpiresAt:   accessEntity.ExpiresAt,
	}, nil
}

func (uc *AuthUseCase) Logout(ctx context.Context, userID int64) error {
	if err := uc.tokens.RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}
	logger.LogAuthEvent(ctx, uc.logger, "logout_successful", userID, "", true, nil)
	return nil
}

func (uc *AuthUseCase) Me(ctx context.Context, userID int64) (*inbound.MeResponse, error) {
	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			return nil, outbound.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &inbound.MeResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
	}, nil
}

func (uc *AuthUseCase) issueToken(ctx context.Context, userID int64, name, scope string, ttl time.Duration) (string, *entity.Token, error) {
	row := entity.NewToken(uuid.New().String(), userID, name, scope, time.Now().UTC().Add(ttl))
	if err := uc.tokens.Create(ctx, row); err != nil {
		return "", nil, fmt.Errorf("failed to store %s token: %w", name, err)
	}

	signed, err := uc.tokenService.Generate(outbound.TokenClaims{
		TokenID: row.ID,
		UserID:  userID,
		Scope:   scope,
	}, ttl)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign %s token: %w", name, err)
	}

	return signed, row, nil
}

func (uc *AuthUseCase) noteFailedAttempt(ctx context.Context, ip string) {
	if uc.rateLimit == nil {
		return
	}
	uc.rateLimit.Increment(ctx, fmt.Sprintf("ip:%s", ip), 15*time.Minute)
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func validateLoginRequest(req inbound.LoginRequest) error {
	var problems []string
	if req.Email == "" {
		problems = append(problems, "email is required")
	} else if !emailRegex.MatchString(req.Email) {
		problems = append(problems, "invalid email format")
	}
	if req.Password == "" {
		problems = append(problems, "password is required")
	}
	if len(problems) > 0 {
		return &apperror.ValidationError{Errors: problems}
	}
	return nil
}

func clientIP(ctx context.Context) string {
	if ip, ok := ctx.Value("client_ip").(string); ok {
		return ip
	}
	return "unknown"
}
