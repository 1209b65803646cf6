package user_management

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/userdesk/userdesk/application/port/inbound"
	"github.com/userdesk/userdesk/application/port/outbound"
	"github.com/userdesk/userdesk/domain/entity"
	"github.com/userdesk/userdesk/domain/valueobject"
	"github.com/userdesk/userdesk/pkg/apperror"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

var listColumns = []inbound.ColumnDescriptor{
	{Value: "id", Name: "Id"},
	{Value: "name", Name: "Name"},
	{Value: "email", Name: "Email"},
	{Value: "phone_number", Name: "Phone Number"},
}

type Service struct {
	users       outbound.UserRepository
	pages       outbound.PageConfigRepository
	permissions outbound.PermissionRepository
	guard       *AccessGuard
	writer      *permissionWriter
	passwords   outbound.PasswordService
	tx          outbound.TxManager
}

func NewService(
	users outbound.UserRepository,
	pages outbound.PageConfigRepository,
	permissions outbound.PermissionRepository,
	guard *AccessGuard,
	passwords outbound.PasswordService,
	tx outbound.TxManager,
) inbound.UserManagementUseCase {
	return &Service{
		users:       users,
		pages:       pages,
		permissions: permissions,
		guard:       guard,
		writer:      newPermissionWriter(pages, permissions),
		passwords:   passwords,
		tx:          tx,
	}
}

func (s *Service) ListUsers(ctx context.Context, actorID int64) (*inbound.ListUsersResponse, error) {
	if err := s.requireAccess(ctx, actorID, valueobject.ReadLevels()...); err != nil {
		return nil, err
	}

	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if len(users) == 0 {
		return nil, outbound.ErrUserNotFound
	}

	rows := make([]inbound.UserRow, 0, len(users))
	for _, user := range users {
		row, _, err := s.buildRow(ctx, user)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return &inbound.ListUsersResponse{
		Columns: listColumns,
		Data:    rows,
	}, nil
}

// ListPages exposes the assignable page catalog so permission forms can be
// built against it.
func (s *Service) ListPages(ctx context.Context, actorID int64) ([]inbound.PageRow, error) {
	if err := s.requireAccess(ctx, actorID, valueobject.ReadLevels()...); err != nil {
		return nil, err
	}

	configs, err := s.pages.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	rows := make([]inbound.PageRow, 0, len(configs))
	for _, pc := range configs {
		rows = append(rows, inbound.PageRow{
			ID:    pc.ID,
			Name:  pc.Name,
			Field: valueobject.NormalizePageField(pc.Name),
		})
	}
	return rows, nil
}

func (s *Service) GetUser(ctx context.Context, actorID, userID int64) (*inbound.GetUserResponse, error) {
	if err := s.requireAccess(ctx, actorID, valueobject.ReadLevels()...); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			return nil, outbound.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	row, access, err := s.buildRow(ctx, user)
	if err != nil {
		return nil, err
	}

	return &inbound.GetUserResponse{
		UserRow: row,
		Access:  access,
	}, nil
}

func (s *Service) CreateUser(ctx context.Context, actorID int64, payload inbound.UserPayload) (*entity.User, error) {
	if err := s.requireAccess(ctx, actorID, valueobject.AccessReadWrite); err != nil {
		return nil, err
	}

	if err := s.validatePayload(ctx, payload, 0); err != nil {
		return nil, err
	}

	password := payload.Password
	if password == "" {
		generated, err := randomPassword()
		if err != nil {
			return nil, fmt.Errorf("failed to generate password: %w", err)
		}
		password = generated
	}
	hash, err := s.passwords.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := entity.NewUser(payload.Name, payload.Email, payload.PhoneNumber, hash)

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return s.writer.replaceAll(ctx, user.ID, payload.Access)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) UpdateUser(ctx context.Context, actorID, userID int64, payload inbound.UserPayload) (*entity.User, error) {
	if err := s.requireAccess(ctx, actorID, valueobject.AccessReadWrite); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			return nil, apperror.NewValidationError("id does not reference an existing user")
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.validatePayload(ctx, payload, userID); err != nil {
		return nil, err
	}

	user.Apply(payload.Name, payload.Email, payload.PhoneNumber)
	if payload.Password != "" {
		hash, err := s.passwords.HashPassword(payload.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = hash
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.Update(ctx, user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		return s.writer.replaceAll(ctx, user.ID, payload.Access)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, actorID, userID int64) error {
	if err := s.requireAccess(ctx, actorID, valueobject.AccessReadWrite); err != nil {
		return err
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			return outbound.ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.permissions.DeleteByUser(ctx, userID); err != nil {
			return fmt.Errorf("failed to delete permissions: %w", err)
		}
		if err := s.users.Delete(ctx, userID); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
}

func (s *Service) requireAccess(ctx context.Context, actorID int64, levels ...valueobject.AccessLevel) error {
	ok, err := s.guard.HasAccess(ctx, actorID, levels...)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.ErrForbidden
	}
	return nil
}

// buildRow projects a user plus its per-page access view: Pages is keyed by
// the normalized page name, the second return value by the raw page name.
func (s *Service) buildRow(ctx context.Context, user *entity.User) (inbound.UserRow, map[string]valueobject.AccessLevel, error) {
	pagePermissions, err := s.permissions.ListByUser(ctx, user.ID)
	if err != nil {
		return inbound.UserRow{}, nil, fmt.Errorf("failed to load permissions for user %d: %w", user.ID, err)
	}

	pages := make(map[string]valueobject.AccessLevel, len(pagePermissions))
	access := make(map[string]valueobject.AccessLevel, len(pagePermissions))
	for _, p := range pagePermissions {
		pages[valueobject.NormalizePageField(p.PageName)] = p.AccessLevel
		access[p.PageName] = p.AccessLevel
	}

	return inbound.UserRow{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		Pages:       pages,
	}, access, nil
}

// validatePayload collects every field problem before anything is written.
// excludeUserID skips the email uniqueness check against the user being
// updated.
func (s *Service) validatePayload(ctx context.Context, payload inbound.UserPayload, excludeUserID int64) error {
	var problems []string

	if strings.TrimSpace(payload.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(payload.Email) == "" {
		problems = append(problems, "email is required")
	} else if !emailRegex.MatchString(payload.Email) {
		problems = append(problems, "invalid email format")
	}
	if strings.TrimSpace(payload.PhoneNumber) == "" {
		problems = append(problems, "phone_number is required")
	}
	if payload.Password != "" && len(payload.Password) < 8 {
		problems = append(problems, "password must be at least 8 characters")
	}

	if len(payload.Access) == 0 {
		problems = append(problems, "access is required and must not be empty")
	}
	for _, entry := range payload.Access {
		if strings.TrimSpace(entry.Page) == "" {
			problems = append(problems, "access entries must carry a page name")
			continue
		}
		if !entry.Level.Valid() {
			problems = append(problems, fmt.Sprintf("invalid access level %q for page %q", entry.Level, entry.Page))
		}
	}

	if payload.Email != "" && emailRegex.MatchString(payload.Email) {
		if excludeUserID == 0 {
			exists, err := s.users.ExistsByEmail(ctx, payload.Email)
			if err != nil {
				return fmt.Errorf("failed to check email uniqueness: %w", err)
			}
			if exists {
				problems = append(problems, "email already exists")
			}
		} else {
			existing, err := s.users.FindByEmail(ctx, payload.Email)
			if err != nil && !errors.Is(err, outbound.ErrUserNotFound) {
				return fmt.Errorf("failed to check email uniqueness: %w", err)
			}
			if existing != nil && existing.ID != excludeUserID {
				problems = append(problems, "email already exists")
			}
		}
	}

	if len(problems) > 0 {
		return &apperror.ValidationError{Errors: problems}
	}
	return nil
}

func randomPassword() (string, error) {
	buf := make([]byte, 18)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}
