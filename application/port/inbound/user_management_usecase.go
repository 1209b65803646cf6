package inbound

import (
	"context"

	"github.com/userdesk/userdesk/domain/entity"
	"github.com/userdesk/userdesk/domain/valueobject"
)

// UserPayload carries the full desired state of a user: the field values plus
// the complete access set. The access list replaces whatever permissions the
// user held before; it is never merged.
type UserPayload struct {
	Name        string                    `json:"name" validate:"required"`
	Email       string                    `json:"email" validate:"required,email"`
	PhoneNumber string                    `json:"phone_number" validate:"required"`
	Password    string                    `json:"password,omitempty"`
	Access      []valueobject.AccessEntry `json:"access" validate:"required,min=1"`
}

type ColumnDescriptor struct {
	Value string `json:"value"`
	Name  string `json:"name"`
}

// UserRow projects a user for listing: identity fields plus one derived entry
// per page the user holds a permission on, keyed by the normalized page name.
type UserRow struct {
	ID          int64                              `json:"id"`
	Name        string                             `json:"name"`
	Email       string                             `json:"email"`
	PhoneNumber string                             `json:"phone_number"`
	Pages       map[string]valueobject.AccessLevel `json:"pages"`
}

// PageRow projects a configured page for permission forms: the raw name plus
// the normalized field key used in user listings.
type PageRow struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Field string `json:"field"`
}

type ListUsersResponse struct {
	Columns []ColumnDescriptor `json:"columns"`
	Data    []UserRow          `json:"data"`
}

type GetUserResponse struct {
	UserRow
	// Access maps the raw page name to the level held on it.
	Access map[string]valueobject.AccessLevel `json:"access"`
}

type UserManagementUseCase interface {
	ListUsers(ctx context.Context, actorID int64) (*ListUsersResponse, error)
	ListPages(ctx context.Context, actorID int64) ([]PageRow, error)
	GetUser(ctx context.Context, actorID, userID int64) (*GetUserResponse, error)
	CreateUser(ctx context.Context, actorID int64, payload UserPayload) (*entity.User, error)
	UpdateUser(ctx context.Context, actorID, userID int64, payload UserPayload) (*entity.User, error)
	DeleteUser(ctx context.Context, actorID, userID int64) error
}
