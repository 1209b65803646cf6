package user_management

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/userdesk/userdesk/application/port/outbound"
	"github.com/userdesk/userdesk/domain/entity"
	"github.com/userdesk/userdesk/domain/valueobject"
	"github.com/userdesk/userdesk/pkg/apperror"
)

// permissionWriter applies full-replacement permission writes: the submitted
// entries become the user's entire permission set, previous rows included in
// nothing. It must run inside the caller's transaction.
type permissionWriter struct {
	pages       outbound.PageConfigRepository
	permissions outbound.PermissionRepository
}

func newPermissionWriter(pages outbound.PageConfigRepository, permissions outbound.PermissionRepository) *permissionWriter {
	return &permissionWriter{
		pages:       pages,
		permissions: permissions,
	}
}

// replaceAll resolves every distinct page name, rejecting the whole batch
// when any name is unknown, then deletes the user's existing rows and bulk
// inserts the new set.
func (w *permissionWriter) replaceAll(ctx context.Context, userID int64, entries []valueobject.AccessEntry) error {
	pageIDs := make(map[string]int64, len(entries))
	var unknown []string

	for _, entry := range entries {
		name := strings.ToLower(entry.Page)
		if _, seen := pageIDs[name]; seen {
			continue
		}
		id, err := w.pages.FindIDByName(ctx, name)
		if err != nil {
			if errors.Is(err, outbound.ErrPageConfigNotFound) {
				pageIDs[name] = 0
				unknown = append(unknown, name)
				continue
			}
			return fmt.Errorf("failed to resolve page %q: %w", name, err)
		}
		pageIDs[name] = id
	}

	if len(unknown) > 0 {
		return &apperror.UnknownPagesError{Pages: unknown}
	}

	if err := w.permissions.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear permissions: %w", err)
	}

	permissions := make([]*entity.Permission, 0, len(entries))
	for _, entry := range entries {
		permissions = append(permissions, entity.NewPermission(userID, pageIDs[strings.ToLower(entry.Page)], entry.Level))
	}

	if err := w.permissions.BulkInsert(ctx, permissions); err != nil {
		return fmt.Errorf("failed to insert permissions: %w", err)
	}

	return nil
}
