package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/userdesk/userdesk/application/port/outbound"
	"github.com/userdesk/userdesk/domain/entity"
)

type pageConfigRepository struct {
	db *sql.DB
}

func NewPageConfigRepository(db *sql.DB) outbound.PageConfigRepository {
	return &pageConfigRepository{db: db}
}

func (r *pageConfigRepository) FindIDByName(ctx context.Context, name string) (int64, error) {
	query := `SELECT id FROM page_configs WHERE lower(name) = lower($1)`

	var id int64
	err := conn(ctx, r.db).QueryRowContext(ctx, query, name).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, outbound.ErrPageConfigNotFound
		}
		return 0, fmt.Errorf("failed to resolve page config by name: %w", err)
	}

	return id, nil
}

func (r *pageConfigRepository) FindAll(ctx context.Context) ([]*entity.PageConfig, error) {
	query := `
		SELECT id, page_type, name, img_link, parent, description,
		       header_img, header_text, updated_by, tenant_id, seq_no, language,
		       created_at, updated_at
		FROM page_configs
		ORDER BY seq_no, id
	`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query page configs: %w", err)
	}
	defer rows.Close()

	var configs []*entity.PageConfig
	for rows.Next() {
		var pc entity.PageConfig
		var imgLink, parent, description, headerImg, headerText sql.NullString
		var updatedBy, tenantID, language sql.NullString
		err := rows.Scan(
			&pc.ID,
			&pc.PageType,
			&pc.Name,
			&imgLink,
			&parent,
			&description,
			&headerImg,
			&headerText,
			&updatedBy,
			&tenantID,
			&pc.SeqNo,
			&language,
			&pc.CreatedAt,
			&pc.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan page config: %w", err)
		}
		pc.ImgLink = imgLink.String
		pc.Parent = parent.String
		pc.Description = description.String
		pc.HeaderImg = headerImg.String
		pc.HeaderText = headerText.String
		pc.UpdatedBy = updatedBy.String
		pc.TenantID = tenantID.String
		pc.Language = language.String
		configs = append(configs, &pc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate page configs: %w", err)
	}

	return configs, nil
}
