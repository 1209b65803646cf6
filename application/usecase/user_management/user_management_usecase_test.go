package user_management

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/userdesk/userdesk/application/port/inbound"
	"github.com/userdesk/userdesk/application/port/outbound"
	"github.com/userdesk/userdesk/domain/entity"
	"github.com/userdesk/userdesk/domain/valueobject"
	"github.com/userdesk/userdesk/pkg/apperror"
)

// Mock implementations

type mockUserRepository struct {
	users  map[int64]*entity.User
	nextID int64
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[int64]*entity.User), nextID: 1}
}

func (m *mockUserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	if user, exists := m.users[id]; exists {
		copied := *user
		return &copied, nil
	}
	return nil, outbound.ErrUserNotFound
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, outbound.ErrUserNotFound
}

func (m *mockUserRepository) FindAll(ctx context.Context) ([]*entity.User, error) {
	users := make([]*entity.User, 0, len(m.users))
	for id := int64(1); id < m.nextID; id++ {
		if user, exists := m.users[id]; exists {
			copied := *user
			users = append(users, &copied)
		}
	}
	return users, nil
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	user.ID = m.nextID
	m.nextID++
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *entity.User) error {
	if _, exists := m.users[user.ID]; !exists {
		return outbound.ErrUserNotFound
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id int64) error {
	if _, exists := m.users[id]; !exists {
		return outbound.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, user := range m.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type mockPageConfigRepository struct {
	pages map[string]int64 // lowercased name -> id
}

func newMockPageConfigRepository(names ...string) *mockPageConfigRepository {
	pages := make(map[string]int64, len(names))
	for i, name := range names {
		pages[strings.ToLower(name)] = int64(i + 1)
	}
	return &mockPageConfigRepository{pages: pages}
}

func (m *mockPageConfigRepository) FindIDByName(ctx context.Context, name string) (int64, error) {
	if id, exists := m.pages[strings.ToLower(name)]; exists {
		return id, nil
	}
	return 0, outbound.ErrPageConfigNotFound
}

func (m *mockPageConfigRepository) FindAll(ctx context.Context) ([]*entity.PageConfig, error) {
	configs := make([]*entity.PageConfig, 0, len(m.pages))
	for name, id := range m.pages {
		configs = append(configs, &entity.PageConfig{ID: id, Name: name})
	}
	return configs, nil
}

func (m *mockPageConfigRepository) nameByID(id int64) string {
	for name, pageID := range m.pages {
		if pageID == id {
			return name
		}
	}
	return ""
}

type mockPermissionRepository struct {
	pages *mockPageConfigRepository
	rows  []*entity.Permission
}

func newMockPermissionRepository(pages *mockPageConfigRepository) *mockPermissionRepository {
	return &mockPermissionRepository{pages: pages}
}

func (m *mockPermissionRepository) FindLevelForPage(ctx context.Context, userID int64, pageName string) (valueobject.AccessLevel, error) {
	pageID, err := m.pages.FindIDByName(ctx, pageName)
	if err != nil {
		return "", outbound.ErrPermissionNotFound
	}
	for _, row := range m.rows {
		if row.UserID == userID && row.PageConfigID == pageID {
			return row.AccessLevel, nil
		}
	}
	return "", outbound.ErrPermissionNotFound
}

func (m *mockPermissionRepository) ListByUser(ctx context.Context, userID int64) ([]entity.PagePermission, error) {
	var result []entity.PagePermission
	for _, row := range m.rows {
		if row.UserID == userID {
			result = append(result, entity.PagePermission{
				PageConfigID: row.PageConfigID,
				PageName:     m.pages.nameByID(row.PageConfigID),
				AccessLevel:  row.AccessLevel,
			})
		}
	}
	return result, nil
}

func (m *mockPermissionRepository) DeleteByUser(ctx context.Context, userID int64) error {
	kept := m.rows[:0]
	for _, row := range m.rows {
		if row.UserID != userID {
			kept = append(kept, row)
		}
	}
	m.rows = kept
	return nil
}

func (m *mockPermissionRepository) BulkInsert(ctx context.Context, permissions []*entity.Permission) error {
	m.rows = append(m.rows, permissions...)
	return nil
}

type mockPasswordService struct{}

func (m *mockPasswordService) HashPassword(password string) (string, error) {
	return "hashed-" + password, nil
}

func (m *mockPasswordService) VerifyPassword(password, hash string) (bool, error) {
	return hash == "hashed-"+password, nil
}

// mockTxManager snapshots the fakes before running fn and restores them when
// fn fails, mirroring a rollback.
type mockTxManager struct {
	users       *mockUserRepository
	permissions *mockPermissionRepository
}

func (m *mockTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	savedUsers := make(map[int64]*entity.User, len(m.users.users))
	for id, user := range m.users.users {
		copied := *user
		savedUsers[id] = &copied
	}
	savedNextID := m.users.nextID
	savedRows := append([]*entity.Permission(nil), m.permissions.rows...)

	if err := fn(ctx); err != nil {
		m.users.users = savedUsers
		m.users.nextID = savedNextID
		m.permissions.rows = savedRows
		return err
	}
	return nil
}

type fixture struct {
	users       *mockUserRepository
	pages       *mockPageConfigRepository
	permissions *mockPermissionRepository
	service     inbound.UserManagementUseCase
}

func newFixture(pageNames ...string) *fixture {
	users := newMockUserRepository()
	pages := newMockPageConfigRepository(pageNames...)
	permissions := newMockPermissionRepository(pages)
	guard := NewAccessGuard(permissions, DefaultGuardPage)
	tx := &mockTxManager{users: users, permissions: permissions}

	return &fixture{
		users:       users,
		pages:       pages,
		permissions: permissions,
		service:     NewService(users, pages, permissions, guard, &mockPasswordService{}, tx),
	}
}

// seedActor inserts a user holding the given level on the guard page and
// returns its ID.
func (f *fixture) seedActor(t *testing.T, level valueobject.AccessLevel) int64 {
	t.Helper()
	ctx := context.Background()
	actor := entity.NewUser("Actor", "actor@example.com", "+1111", "hashed-secret123")
	if err := f.users.Create(ctx, actor); err != nil {
		t.Fatalf("failed to seed actor: %v", err)
	}
	pageID, err := f.pages.FindIDByName(ctx, DefaultGuardPage)
	if err != nil {
		t.Fatalf("guard page not registered: %v", err)
	}
	f.permissions.rows = append(f.permissions.rows, entity.NewPermission(actor.ID, pageID, level))
	return actor.ID
}

func validPayload() inbound.UserPayload {
	return inbound.UserPayload{
		Name:        "Jane Roe",
		Email:       "jane@example.com",
		PhoneNumber: "+2222",
		Password:    "password123",
		Access: []valueobject.AccessEntry{
			{Page: "User Profile", Level: valueobject.AccessRead},
			{Page: "Dashboard", Level: valueobject.AccessReadWrite},
		},
	}
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("DeniedWithoutGuardPermission", func(t *testing.T) {
		f := newFixture("User Profile")
		stranger := entity.NewUser("Stranger", "stranger@example.com", "+3333", "hashed-x")
		if err := f.users.Create(ctx, stranger); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		_, err := f.service.ListUsers(ctx, stranger.ID)
		if !errors.Is(err, apperror.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("ReadLevelSuffices", func(t *testing.T) {
		f := newFixture("User Profile")
		actorID := f.seedActor(t, valueobject.AccessRead)

		resp, err := f.service.ListUsers(ctx, actorID)
		if err != nil {
			t.Fatalf("list should succeed: %v", err)
		}
		if len(resp.Data) != 1 {
			t.Fatalf("expected 1 row, got %d", len(resp.Data))
		}
		if len(resp.Columns) != 4 || resp.Columns[0].Value != "id" {
			t.Errorf("unexpected columns: %+v", resp.Columns)
		}
		if _, ok := resp.Data[0].Pages["user_profile"]; !ok {
			t.Errorf("expected normalized page key user_profile, got %v", resp.Data[0].Pages)
		}
	})

	t.Run("EmptyDirectory", func(t *testing.T) {
		f := newFixture("User Profile")
		actorID := f.seedActor(t, valueobject.AccessRead)
		if err := f.users.Delete(ctx, actorID); err != nil {
			t.Fatalf("failed to delete actor: %v", err)
		}

		_, err := f.service.ListUsers(ctx, actorID)
		if !errors.Is(err, outbound.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound for empty directory, got %v", err)
		}
	})
}

func TestListPages(t *testing.T) {
	ctx := context.Background()

	t.Run("DeniedWithoutGuardPermission", func(t *testing.T) {
		f := newFixture("User Profile", "Dashboard")
		stranger := entity.NewUser("Stranger", "stranger@example.com", "+3333", "hashed-x")
		if err := f.users.Create(ctx, stranger); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		_, err := f.service.ListPages(ctx, stranger.ID)
		if !errors.Is(err, apperror.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("ReturnsCatalogWithNormalizedFields", func(t *testing.T) {
		f := newFixture("User Profile", "Dashboard")
		actorID := f.seedActor(t, valueobject.AccessRead)

		rows, err := f.service.ListPages(ctx, actorID)
		if err != nil {
			t.Fatalf("listing pages should succeed: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("expected 2 pages, got %d", len(rows))
		}

		fields := make(map[string]string, len(rows))
		for _, row := range rows {
			fields[row.Name] = row.Field
		}
		if fields["user profile"] != "user_profile" {
			t.Errorf("expected normalized field user_profile, got %q", fields["user profile"])
		}
		if fields["dashboard"] != "dashboard" {
			t.Errorf("expected normalized field dashboard, got %q", fields["dashboard"])
		}
	})
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("ReadOnlyActorDenied", func(t *testing.T) {
		f := newFixture("User Profile", "Dashboard")
		actorID := f.seedActor(t, valueobject.AccessRead)

		_, err := f.service.CreateUser(ctx, actorID, validPayload())
		if !errors.Is(err, apperror.ErrForbidden) {
			t.Errorf("expected ErrForbidden for read-only actor, got %v", err)
		}
	})

	t.Run("Success", func(t *testing.T) {
		f := newFixture("User Profile", "Dashboard")
		actorID := f.seedActor(t, valueobject.AccessReadWrite)

		user, err := f.service.CreateUser(ctx, actorID, validPayload())
		if err != nil {
			t.Fatalf("create should succeed: %v", err)
		}
		if user.ID == 0 {
			t.Error("created user should have an ID")
		}
		if user.Password != "hashed-password123" {
			t.Errorf("password should be stored hashed, got %q", user.Password)
		}

		got, err := f.service.GetUser(ctx, actorID, user.ID)
		if err != nil {
			t.Fatalf("get should succeed: %v", err)
		}
		if got.Pages["user_profile"] != valueobject.AccessRead {
			t.Errorf("expected R on user_profile, got %v", got.Pages)
		}
		if got.Pages["dashboard"] != valueobject.AccessReadWrite {
			t.Errorf("expected RW on dashboard, got %v", got.Pages)
		}
	})

	t.Run("GeneratedPasswordWhenOmitted", func(t *testing.T) {
		f := newFixture("User Profile", "Dashboard")
		actorID := f.seedActor(t, valueobject.AccessReadWrite)

		payload := validPayload()
		payload.Password = ""
		user, err := f.service.CreateUser(ctx, actorID, payload)
		if err != nil {
			t.Fatalf("create should succeed: %v", err)
		}
		if user.Password == "" || user.Password == "hashed-" {
			t.Errorf("expected a generated password hash, got %q", user.Password)
		}
	})

	t.Run("UnknownPageRejectsWholeBatch", func(t *testing.T) {
		f := newFixture("User Profile")
		actorID := f.seedActor(t, valueobject.AccessReadWrite)
		before := len(f.permissions.rows)

		payload := validPayload() // references Dashboard, which is not registered
		_, err := f.service.CreateUser(ctx, actorID, payload)

		var pagesErr *apperror.UnknownPagesError
		if !errors.As(err, &pagesErr) {
			t.Fatalf("expected UnknownPagesError, got %v", err)
		}
		if len(pagesErr.Pages) != 1 || pagesErr.Pages[0] != "dashboard" {
			t.Errorf("unexpected unknown pages: %v", pagesErr.Pages)
		}
		if _, err := f.users.FindByEmail(ctx, payload.Email); !errors.Is(err, outbound.ErrUserNotFound) {
			t.Error("user must not survive a rejected permission batch")
		}
		if len(f.permissions.rows) != before {
			t.Error("permission rows must be unchanged after a rejected batch")
		}
	})

	t.Run("ValidationProblemsAreItemized", func(t *testing.T) {
		f := newFixture("User Profile")
		actorID := f.seedActor(t, valueobject.AccessReadWrite)

		payload := inbound.UserPayload{
			Email:    "not-an-email",
			Password: "short",
			Access:   []valueobject.AccessEntry{{Page: "User Profile", Level: "RWX"}},
		}
		_, err := f.service.CreateUser(ctx, actorID, payload)

		var vErr *apperror.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if len(vErr.Errors) < 4 {
			t.Errorf("expected problems for name, email, phone, password and level, got %v", vErr.Errors)
		}
	})

	t.Run("DuplicateEmailRejected", func(t *testing.T) {
		f := newFixture("User Profile", "Dashboard")
		actorID := f.seedActor(t, valueobject.AccessReadWrite)

		payload := validPayload()
		payload.Email = "actor@example.com"
		_, err := f.service.CreateUser(ctx, actorID, payload)

		var vErr *apperror.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("MissingUserIsValidationError", func(t *testing.T) {
		f := newFixture("User Profile", "Dashboard")
		actorID := f.seedActor(t, valueobject.AccessReadWrite)

		_, err := f.service.UpdateUser(ctx, actorID, 9999, validPayload())

		var vErr *apperror.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError for missing user, got %v", err)
		}
	})

	t.Run("ReplacesPermissionsWholesale", func(t *testing.T) {
		f := newFixture("User Profile", "Dashboard", "Reports")
		actorID := f.seedActor(t, valueobject.AccessReadWrite)

		user, err := f.service.CreateUser(ctx, actorID, validPayload())
		if err != nil {
			t.Fatalf("create should succeed: %v", err)
		}

		payload := validPayload()
		payload.Email = "jane.updated@example.com"
		payload.Access = []valueobject.AccessEntry{
			{Page: "Reports", Level: valueobject.AccessRead},
		}
		updated, err := f.service.UpdateUser(ctx, actorID, user.ID, payload)
		if err != nil {
			t.Fatalf("update should succeed: %v", err)
		}
		if updated.Email != "jane.updated@example.com" {
			t.Errorf("email not applied: %q", updated.Email)
		}

		got, err := f.service.GetUser(ctx, actorID, user.ID)
		if err != nil {
			t.Fatalf("get should succeed: %v", err)
		}
		if len(got.Pages) != 1 {
			t.Fatalf("old permissions must be gone, got %v", got.Pages)
		}
		if got.Pages["reports"] != valueobject.AccessRead {
			t.Errorf("expected R on reports, got %v", got.Pages)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		f := newFixture("User Profile", "Dashboard")
		actorID := f.seedActor(t, valueobject.AccessReadWrite)

		user, err := f.service.CreateUser(ctx, actorID, validPayload())
		if err != nil {
			t.Fatalf("create should succeed: %v", err)
		}

		payload := validPayload()
		payload.Password = ""
		for i := 0; i < 2; i++ {
			if _, err := f.service.UpdateUser(ctx, actorID, user.ID, payload); err != nil {
				t.Fatalf("update %d should succeed: %v", i, err)
			}
		}

		got, err := f.service.GetUser(ctx, actorID, user.ID)
		if err != nil {
			t.Fatalf("get should succeed: %v", err)
		}
		if len(got.Pages) != 2 {
			t.Errorf("repeated identical updates must not duplicate rows, got %v", got.Pages)
		}
	})

	t.Run("OwnEmailNotFlaggedAsDuplicate", func(t *testing.T) {
		f := newFixture("User Profile", "Dashboard")
		actorID := f.seedActor(t, valueobject.AccessReadWrite)

		user, err := f.service.CreateUser(ctx, actorID, validPayload())
		if err != nil {
			t.Fatalf("create should succeed: %v", err)
		}

		if _, err := f.service.UpdateUser(ctx, actorID, user.ID, validPayload()); err != nil {
			t.Errorf("keeping the same email should pass validation: %v", err)
		}
	})
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("ReadOnlyActorDenied", func(t *testing.T) {
		f := newFixture("User Profile", "Dashboard")
		actorID := f.seedActor(t, valueobject.AccessRead)

		err := f.service.DeleteUser(ctx, actorID, actorID)
		if !errors.Is(err, apperror.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("RemovesUserAndPermissions", func(t *testing.T) {
		f := newFixture("User Profile", "Dashboard")
		actorID := f.seedActor(t, valueobject.AccessReadWrite)

		user, err := f.service.CreateUser(ctx, actorID, validPayload())
		if err != nil {
			t.Fatalf("create should succeed: %v", err)
		}

		if err := f.service.DeleteUser(ctx, actorID, user.ID); err != nil {
			t.Fatalf("delete should succeed: %v", err)
		}
		if _, err := f.users.FindByID(ctx, user.ID); !errors.Is(err, outbound.ErrUserNotFound) {
			t.Error("user should be gone")
		}
		for _, row := range f.permissions.rows {
			if row.UserID == user.ID {
				t.Error("permissions of the deleted user should be gone")
			}
		}
	})

	t.Run("MissingUser", func(t *testing.T) {
		f := newFixture("User Profile")
		actorID := f.seedActor(t, valueobject.AccessReadWrite)

		err := f.service.DeleteUser(ctx, actorID, 9999)
		if !errors.Is(err, outbound.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})
}
