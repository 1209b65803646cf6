package entity

import (
	"time"

	"github.com/userdesk/userdesk/domain/valueobject"
)

// Permission grants an access level on one page to one user. A user holds at
// most one row per page; writes replace the whole set, they never merge.
type Permission struct {
	ID           int64                   `json:"id"`
	UserID       int64                   `json:"user_id"`
	PageConfigID int64                   `json:"page_config_id"`
	AccessLevel  valueobject.AccessLevel `json:"access_level"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

func NewPermission(userID, pageConfigID int64, level valueobject.AccessLevel) *Permission {
	now := time.Now().UTC()
	return &Permission{
		UserID:       userID,
		PageConfigID: pageConfigID,
		AccessLevel:  level,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// PagePermission is a permission joined with its page name, as read back for
// building the per-page access view of a user.
type PagePermission struct {
	PageConfigID int64                   `json:"page_config_id"`
	PageName     string                  `json:"page_name"`
	AccessLevel  valueobject.AccessLevel `json:"access_level"`
}
