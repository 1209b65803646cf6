package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/userdesk/userdesk/application/port/outbound"
	"github.com/userdesk/userdesk/domain/entity"
	"github.com/userdesk/userdesk/domain/valueobject"
)

type permissionRepository struct {
	db *sql.DB
}

func NewPermissionRepository(db *sql.DB) outbound.PermissionRepository {
	return &permissionRepository{db: db}
}

func (r *permissionRepository) FindLevelForPage(ctx context.Context, userID int64, pageName string) (valueobject.AccessLevel, error) {
	query := `
		SELECT p.access_level
		FROM permissions p
		JOIN page_configs pc ON pc.id = p.page_config_id
		WHERE p.user_id = $1 AND lower(pc.name) = lower($2)
		LIMIT 1
	`

	var level string
	err := conn(ctx, r.db).QueryRowContext(ctx, query, userID, pageName).Scan(&level)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", outbound.ErrPermissionNotFound
		}
		return "", fmt.Errorf("failed to find permission level: %w", err)
	}

	return valueobject.AccessLevel(level), nil
}

func (r *permissionRepository) ListByUser(ctx context.Context, userID int64) ([]entity.PagePermission, error) {
	query := `
		SELECT p.page_config_id, pc.name, p.access_level
		FROM permissions p
		JOIN page_configs pc ON pc.id = p.page_config_id
		WHERE p.user_id = $1
		ORDER BY pc.name
	`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query permissions: %w", err)
	}
	defer rows.Close()

	var permissions []entity.PagePermission
	for rows.Next() {
		var p entity.PagePermission
		var level string
		if err := rows.Scan(&p.PageConfigID, &p.PageName, &level); err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		p.AccessLevel = valueobject.AccessLevel(level)
		permissions = append(permissions, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate permissions: %w", err)
	}

	return permissions, nil
}

func (r *permissionRepository) DeleteByUser(ctx context.Context, userID int64) error {
	query := `DELETE FROM permissions WHERE user_id = $1`

	if _, err := conn(ctx, r.db).ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete permissions: %w", err)
	}
	return nil
}

func (r *permissionRepository) BulkInsert(ctx context.Context, permissions []*entity.Permission) error {
	if len(permissions) == 0 {
		return nil
	}

	var builder strings.Builder
	builder.WriteString(`INSERT INTO permissions (user_id, page_config_id, access_level, created_at, updated_at) VALUES `)

	args := make([]interface{}, 0, len(permissions)*5)
	for i, p := range permissions {
		if i > 0 {
			builder.WriteString(", ")
		}
		base := i * 5
		fmt.Fprintf(&builder, "($%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5)
		args = append(args, p.UserID, p.PageConfigID, string(p.AccessLevel), p.CreatedAt, p.UpdatedAt)
	}

	if _, err := conn(ctx, r.db).ExecContext(ctx, builder.String(), args...); err != nil {
		return fmt.Errorf("failed to bulk insert permissions: %w", err)
	}
	return nil
}
