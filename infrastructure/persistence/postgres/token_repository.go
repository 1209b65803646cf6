package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/userdesk/userdesk/application/port/outbound"
	"github.com/userdesk/userdesk/domain/entity"
)

type tokenRepository struct {
	db *sql.DB
}

func NewTokenRepository(db *sql.DB) outbound.TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *entity.Token) error {
	query := `
		INSERT INTO tokens (id, user_id, name, scope, expires_at, created_at, revoked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var revokedAt sql.NullTime
	if token.RevokedAt != nil {
		revokedAt = sql.NullTime{Time: *token.RevokedAt, Valid: true}
	}

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.Name,
		token.Scope,
		token.ExpiresAt,
		token.CreatedAt,
		revokedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}

	return nil
}

func (r *tokenRepository) FindByID(ctx context.Context, id string) (*entity.Token, error) {
	query := `
		SELECT id, user_id, name, scope, expires_at, created_at, revoked_at
		FROM tokens
		WHERE id = $1
	`

	return r.scanToken(conn(ctx, r.db).QueryRowContext(ctx, query, id))
}

func (r *tokenRepository) RevokeAllForUser(ctx context.Context, userID int64) error {
	query := `
		UPDATE tokens
		SET revoked_at = $1
		WHERE user_id = $2 AND revoked_at IS NULL
	`

	if _, err := conn(ctx, r.db).ExecContext(ctx, query, time.Now().UTC(), userID); err != nil {
		return fmt.Errorf("failed to revoke tokens for user: %w", err)
	}
	return nil
}

func (r *tokenRepository) RevokeOtherTokens(ctx context.Context, userID int64, keepID string) error {
	query := `
		UPDATE tokens
		SET revoked_at = $1
		WHERE user_id = $2 AND id != $3 AND revoked_at IS NULL
	`

	if _, err := conn(ctx, r.db).ExecContext(ctx, query, time.Now().UTC(), userID, keepID); err != nil {
		return fmt.Errorf("failed to revoke other tokens: %w", err)
	}
	return nil
}

func (r *tokenRepository) scanToken(row *sql.Row) (*entity.Token, error) {
	var token entity.Token
	var revokedAt sql.NullTime

	err := row.Scan(
		&token.ID,
		&token.UserID,
		&token.Name,
		&token.Scope,
		&token.ExpiresAt,
		&token.CreatedAt,
		&revokedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to scan token: %w", err)
	}

	if revokedAt.Valid {
		token.RevokedAt = &revokedAt.Time
	}

	return &token, nil
}
