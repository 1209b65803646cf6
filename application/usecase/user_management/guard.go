package user_management

import (
	"context"
	"errors"
	"fmt"

	"github.com/userdesk/userdesk/application/port/outbound"
	"github.com/userdesk/userdesk/domain/valueobject"
)

// DefaultGuardPage is the page whose permission row gates every operation of
// this service. Permissions on other pages are stored for other consumers and
// never consulted here.
const DefaultGuardPage = "user profile"

// AccessGuard is the authorization predicate in front of every protected
// operation. It reads the ledger on each call so it always reflects the
// latest committed state.
type AccessGuard struct {
	permissions outbound.PermissionRepository
	pageName    string
}

func NewAccessGuard(permissions outbound.PermissionRepository, pageName string) *AccessGuard {
	if pageName == "" {
		pageName = DefaultGuardPage
	}
	return &AccessGuard{
		permissions: permissions,
		pageName:    pageName,
	}
}

// HasAccess reports whether the user holds a permission on the guard page
// whose level is a member of the given set. A missing row means no access,
// not an error.
func (g *AccessGuard) HasAccess(ctx context.Context, userID int64, levels ...valueobject.AccessLevel) (bool, error) {
	level, err := g.permissions.FindLevelForPage(ctx, userID, g.pageName)
	if err != nil {
		if errors.Is(err, outbound.ErrPermissionNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up guard permission: %w", err)
	}
	return level.In(levels...), nil
}
