package database

import (
	"context"
	"errors"
	"testing"

	"bitchain-ledger-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
)

func newUserParams(id, email, nick, nationalId string) store.CreateUserParams {
	return store.CreateUserParams{
		Id:           id,
		Email:        email,
		PasswordHash: "hash",
		FullName:     "Test User",
		NickName:     nick,
		DateOfBirth:  "1990-01-01",
		NationalId:   nationalId,
		ImagePath:    "uploads/user/default.jpg",
	}
}

func setupUserTestDB(t *testing.T) (*Service, func()) {
	service, cleanup := setupTestDb(t)

	_, err := service.CreateUser(context.Background(), newUserParams("u1", "test@example.com", "tester", "90010100000"))
	if err != nil {
		cleanup()
		t.Fatalf("Failed to insert test user: %v", err)
	}

	return service, cleanup
}

func TestCreateUser(t *testing.T) {
	service, cleanup := setupUserTestDB(t)
	defer cleanup()

	user, err := service.GetUserByEmail(context.Background(), "test@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if user.Id != "u1" {
		t.Errorf("Expected id u1, got %s", user.Id)
	}
	if !user.IsActive || user.IsStaff || user.IsSuperuser {
		t.Errorf("Unexpected role flags: active=%v staff=%v superuser=%v", user.IsActive, user.IsStaff, user.IsSuperuser)
	}
	if user.CreatedAt.IsZero() {
		t.Errorf("Expected created_at to be set")
	}
}

func TestCreateUser_Conflicts(t *testing.T) {
	tests := []struct {
		name   string
		params store.CreateUserParams
		field  string
	}{
		{"email", newUserParams("u2", "test@example.com", "other", "90010100001"), "email"},
		{"nick_name", newUserParams("u2", "other@example.com", "tester", "90010100001"), "nick_name"},
		{"national_id", newUserParams("u2", "other@example.com", "other", "90010100000"), "national_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, cleanup := setupUserTestDB(t)
			defer cleanup()

			_, err := service.CreateUser(context.Background(), tt.params)
			if !errors.Is(err, store.ErrUniquenessConflict) {
				t.Fatalf("Expected ErrUniquenessConflict, got %v", err)
			}

			var conflict *store.ConflictError
			if !errors.As(err, &conflict) {
				t.Fatalf("Expected ConflictError, got %T", err)
			}
			if conflict.Field != tt.field {
				t.Errorf("Expected conflict on %s, got %s", tt.field, conflict.Field)
			}
		})
	}
}

func TestUpdateUser(t *testing.T) {
	service, cleanup := setupUserTestDB(t)
	defer cleanup()

	ctx := context.Background()
	name := "Renamed User"
	image := "uploads/user/u1.png"
	user, err := service.UpdateUser(ctx, "u1", store.UpdateUserParams{FullName: &name, ImagePath: &image})
	if err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	if user.FullName != name {
		t.Errorf("Expected full name %s, got %s", name, user.FullName)
	}
	if user.ImagePath != image {
		t.Errorf("Expected image %s, got %s", image, user.ImagePath)
	}
	if user.NickName != "tester" {
		t.Errorf("Expected nick name to stay tester, got %s", user.NickName)
	}

	_, err = service.UpdateUser(ctx, "missing", store.UpdateUserParams{FullName: &name})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestUpdateUser_NickNameConflict(t *testing.T) {
	service, cleanup := setupUserTestDB(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := service.CreateUser(ctx, newUserParams("u2", "second@example.com", "second", "90010100002")); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	taken := "tester"
	_, err := service.UpdateUser(ctx, "u2", store.UpdateUserParams{NickName: &taken})
	if !errors.Is(err, store.ErrUniquenessConflict) {
		t.Errorf("Expected ErrUniquenessConflict, got %v", err)
	}
}

func TestGetUsers(t *testing.T) {
	service, cleanup := setupUserTestDB(t)
	defer cleanup()

	users, err := service.GetUsers(context.Background())
	if err != nil {
		t.Fatalf("GetUsers failed: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("Expected 1 user, got %d", len(users))
	}

	_, err = service.GetUserById(context.Background(), "nobody")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
