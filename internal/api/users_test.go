package api

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"bitchain-ledger-go/internal/models"
	"bitchain-ledger-go/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Satoshi@Example.COM", "Satoshi@example.com"},
		{"  alice@BITCHAIN.io ", "alice@bitchain.io"},
		{"odd@local@Domain.ORG", "odd@local@domain.org"},
		{"no-at-sign", "no-at-sign"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeEmail(tt.in))
		})
	}
}

func TestSignUp(t *testing.T) {
	service, _ := setupTestService(t)
	ctx := context.Background()

	profile := signUp(t, service)
	assert.Equal(t, "Satoshi@example.com", profile.Email)
	assert.Equal(t, DefaultImagePath, profile.ImagePath)

	// Wallet is provisioned at sign up
	wallet, err := service.store.GetWalletByUser(ctx, profile.Id)
	require.NoError(t, err)
	assert.Equal(t, profile.Id, wallet.UserId)

	user, err := service.store.GetUserById(ctx, profile.Id)
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", user.PasswordHash)
}

func TestSignUp_Conflicts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.SignUpRequest)
		field  string
	}{
		{"email", func(r *models.SignUpRequest) { r.NickName = "other"; r.NationalId = "75040500001" }, "email"},
		{"nick_name", func(r *models.SignUpRequest) { r.Email = "other@example.com"; r.NationalId = "75040500001" }, "nick_name"},
		{"national_id", func(r *models.SignUpRequest) { r.Email = "other@example.com"; r.NickName = "other" }, "national_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := setupTestService(t)
			signUp(t, service)

			req := validSignUp()
			tt.mutate(&req)
			_, err := service.SignUp(context.Background(), req)
			require.ErrorIs(t, err, store.ErrUniquenessConflict)

			var conflict *store.ConflictError
			require.ErrorAs(t, err, &conflict)
			assert.Equal(t, tt.field, conflict.Field)
		})
	}
}

func TestSignUp_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.SignUpRequest)
		field   string
		missing bool
	}{
		{"missing email", func(r *models.SignUpRequest) { r.Email = "" }, "email", true},
		{"bad email", func(r *models.SignUpRequest) { r.Email = "not-an-email" }, "email", false},
		{"short password", func(r *models.SignUpRequest) { r.Password = "short" }, "password", false},
		{"missing nick", func(r *models.SignUpRequest) { r.NickName = "" }, "nick_name", true},
		{"bad birth date", func(r *models.SignUpRequest) { r.DateOfBirth = "1975-02-30" }, "date_of_birth", false},
		{"short national id", func(r *models.SignUpRequest) { r.NationalId = "123" }, "national_id", false},
		{"letters in national id", func(r *models.SignUpRequest) { r.NationalId = "7504050000A" }, "national_id", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := setupTestService(t)

			req := validSignUp()
			tt.mutate(&req)
			_, err := service.SignUp(context.Background(), req)

			var fieldErr *store.FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tt.field, fieldErr.Field)
			if tt.missing {
				assert.ErrorIs(t, err, store.ErrMissingField)
			} else {
				assert.ErrorIs(t, err, store.ErrInvalidField)
			}

			users, err := service.store.GetUsers(context.Background())
			require.NoError(t, err)
			assert.Empty(t, users)
		})
	}
}

var errWalletUnavailable = errors.New("wallet table unavailable")

// failingWalletStore hands out ledgers whose wallet creation always fails
type failingWalletStore struct {
	store.LedgerStore
}

func (s failingWalletStore) Atomic(ctx context.Context, fn func(store.Ledger) error) error {
	return s.LedgerStore.Atomic(ctx, func(l store.Ledger) error {
		return fn(failingWalletLedger{l})
	})
}

type failingWalletLedger struct {
	store.Ledger
}

func (failingWalletLedger) GetOrCreateWallet(context.Context, string) (*models.Wallet, error) {
	return nil, errWalletUnavailable
}

func TestSignUp_WalletFailureRollsBackUser(t *testing.T) {
	service, _ := setupTestService(t)
	ctx := context.Background()
	service.store = failingWalletStore{service.store}

	_, err := service.SignUp(ctx, validSignUp())
	require.ErrorIs(t, err, errWalletUnavailable)

	users, err := service.store.GetUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = service.store.GetUserByEmail(ctx, "Satoshi@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestVerifyCredentials(t *testing.T) {
	service, _ := setupTestService(t)
	ctx := context.Background()
	profile := signUp(t, service)

	user, err := service.VerifyCredentials(ctx, "Satoshi@EXAMPLE.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, profile.Id, user.Id)

	_, err = service.VerifyCredentials(ctx, "Satoshi@example.com", "wrong horse")
	assert.ErrorIs(t, err, store.ErrInvalidCredentials)

	_, err = service.VerifyCredentials(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, store.ErrInvalidCredentials)
}

func TestAuthorize(t *testing.T) {
	service, _ := setupTestService(t)

	regular := &models.User{IsActive: true}
	staff := &models.User{IsActive: true, IsStaff: true}
	super := &models.User{IsActive: true, IsSuperuser: true}
	inactive := &models.User{IsActive: false, IsSuperuser: true}

	assert.NoError(t, service.Authorize(regular, RoleUser))
	assert.ErrorIs(t, service.Authorize(regular, RoleStaff), store.ErrForbidden)
	assert.NoError(t, service.Authorize(staff, RoleStaff))
	assert.ErrorIs(t, service.Authorize(staff, RoleSuperuser), store.ErrForbidden)
	assert.NoError(t, service.Authorize(super, RoleStaff))
	assert.NoError(t, service.Authorize(super, RoleSuperuser))
	assert.ErrorIs(t, service.Authorize(inactive, RoleUser), store.ErrForbidden)
	assert.ErrorIs(t, service.Authorize(nil, RoleUser), store.ErrForbidden)
}

func TestUpdateProfile(t *testing.T) {
	service, _ := setupTestService(t)
	ctx := context.Background()
	profile := signUp(t, service)

	name := "S. Nakamoto"
	password := "a much better password"
	updated, err := service.UpdateProfile(ctx, profile.Id, models.ProfileUpdateRequest{
		FullName: &name,
		Password: &password,
	})
	require.NoError(t, err)
	assert.Equal(t, name, updated.FullName)
	assert.Equal(t, "satoshi", updated.NickName)

	_, err = service.VerifyCredentials(ctx, profile.Email, password)
	assert.NoError(t, err)

	empty := ""
	_, err = service.UpdateProfile(ctx, profile.Id, models.ProfileUpdateRequest{NickName: &empty})
	assert.ErrorIs(t, err, store.ErrInvalidField)
}

func TestProfileImage(t *testing.T) {
	service, _ := setupTestService(t)
	ctx := context.Background()
	profile := signUp(t, service)

	path := service.ProfileImagePath(profile.Id, "holiday.JPG")
	assert.Equal(t, "uploads/user/"+profile.Id+".JPG", path, "extension keeps its case")
	assert.Equal(t, filepath.Join("uploads", "user", profile.Id+".JPG"), service.MediaFile(path))
	assert.Equal(t, "uploads/user/"+profile.Id+".png", service.ProfileImagePath(profile.Id, "a.b.png"))
	assert.Equal(t, "uploads/user/"+profile.Id, service.ProfileImagePath(profile.Id, "noext"))

	previous, err := service.SetProfileImage(ctx, profile.Id, path)
	require.NoError(t, err)
	assert.Empty(t, previous, "default image is never handed back for deletion")

	previous, err = service.ClearProfileImage(ctx, profile.Id)
	require.NoError(t, err)
	assert.Equal(t, path, previous)

	current, err := service.GetProfile(ctx, profile.Id)
	require.NoError(t, err)
	assert.Equal(t, DefaultImagePath, current.ImagePath)

	previous, err = service.ClearProfileImage(ctx, profile.Id)
	require.NoError(t, err)
	assert.Empty(t, previous)
}

func TestPasswordReset(t *testing.T) {
	service, _ := setupTestService(t)
	ctx := context.Background()
	profile := signUp(t, service)

	token, err := service.RequestPasswordReset(ctx, "Satoshi@EXAMPLE.com")
	require.NoError(t, err)
	assert.Len(t, token, 64)

	require.NoError(t, service.ConfirmPasswordReset(ctx, token, "battery staple"))

	user, err := service.VerifyCredentials(ctx, "Satoshi@example.com", "battery staple")
	require.NoError(t, err)
	assert.Equal(t, profile.Id, user.Id)
	assert.NotEqual(t, "battery staple", user.PasswordHash)

	_, err = service.VerifyCredentials(ctx, "Satoshi@example.com", "correct horse")
	assert.ErrorIs(t, err, store.ErrInvalidCredentials)

	// Tokens are single-use
	err = service.ConfirmPasswordReset(ctx, token, "another password")
	assert.ErrorIs(t, err, store.ErrInvalidResetToken)

	_, err = service.VerifyCredentials(ctx, "Satoshi@example.com", "battery staple")
	assert.NoError(t, err)
}

func TestPasswordReset_RedeemingRetiresOtherTokens(t *testing.T) {
	service, _ := setupTestService(t)
	ctx := context.Background()
	signUp(t, service)

	first, err := service.RequestPasswordReset(ctx, "Satoshi@example.com")
	require.NoError(t, err)
	second, err := service.RequestPasswordReset(ctx, "Satoshi@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	require.NoError(t, service.ConfirmPasswordReset(ctx, second, "battery staple"))
	assert.ErrorIs(t, service.ConfirmPasswordReset(ctx, first, "another password"), store.ErrInvalidResetToken)
}

func TestPasswordReset_Expired(t *testing.T) {
	service, clock := setupTestService(t)
	ctx := context.Background()
	signUp(t, service)

	token, err := service.RequestPasswordReset(ctx, "Satoshi@example.com")
	require.NoError(t, err)

	clock.now = clock.now.Add(25 * time.Hour)
	err = service.ConfirmPasswordReset(ctx, token, "battery staple")
	assert.ErrorIs(t, err, store.ErrInvalidResetToken)

	_, err = service.VerifyCredentials(ctx, "Satoshi@example.com", "correct horse")
	assert.NoError(t, err, "an expired token must leave the old password in place")
}

func TestPasswordReset_Errors(t *testing.T) {
	service, _ := setupTestService(t)
	ctx := context.Background()
	signUp(t, service)

	_, err := service.RequestPasswordReset(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = service.RequestPasswordReset(ctx, "  ")
	assert.ErrorIs(t, err, store.ErrMissingField)

	err = service.ConfirmPasswordReset(ctx, "not-a-token", "battery staple")
	assert.ErrorIs(t, err, store.ErrInvalidResetToken)

	err = service.ConfirmPasswordReset(ctx, "", "battery staple")
	assert.ErrorIs(t, err, store.ErrMissingField)

	token, err := service.RequestPasswordReset(ctx, "Satoshi@example.com")
	require.NoError(t, err)

	err = service.ConfirmPasswordReset(ctx, token, "short")
	var fieldErr *store.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "password", fieldErr.Field)

	// A rejected password does not burn the token
	assert.NoError(t, service.ConfirmPasswordReset(ctx, token, "battery staple"))
}
