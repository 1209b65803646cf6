package outbound

import (
	"context"
	"errors"

	"github.com/userdesk/userdesk/domain/entity"
)

var ErrTokenNotFound = errors.New("token not found")

type TokenRepository interface {
	Create(ctx context.Context, token *entity.Token) error
	FindByID(ctx context.Context, id string) (*entity.Token, error)
	RevokeAllForUser(ctx context.Context, userID int64) error
	// RevokeOtherTokens revokes every active token of the user except keepID.
	RevokeOtherTokens(ctx context.Context, userID int64, keepID string) error
}
