package outbound

import (
	"context"
	"errors"

	"github.com/userdesk/userdesk/domain/entity"
)

var ErrPageConfigNotFound = errors.New("page config not found")

type PageConfigRepository interface {
	// FindIDByName resolves a page name to its registry ID. Matching is
	// case-insensitive.
	FindIDByName(ctx context.Context, name string) (int64, error)
	FindAll(ctx context.Context) ([]*entity.PageConfig, error)
}
