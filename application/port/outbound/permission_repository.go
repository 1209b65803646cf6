package outbound

import (
	"context"
	"errors"

	"github.com/userdesk/userdesk/domain/entity"
	"github.com/userdesk/userdesk/domain/valueobject"
)

var ErrPermissionNotFound = errors.New("permission not found")

type PermissionRepository interface {
	// FindLevelForPage returns the access level the user holds on the named
	// page (case-insensitive). ErrPermissionNotFound when no row exists.
	FindLevelForPage(ctx context.Context, userID int64, pageName string) (valueobject.AccessLevel, error)
	ListByUser(ctx context.Context, userID int64) ([]entity.PagePermission, error)
	DeleteByUser(ctx context.Context, userID int64) error
	BulkInsert(ctx context.Context, permissions []*entity.Permission) error
}
