/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"bitchain-ledger-go/internal/models"
	"bitchain-ledger-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DefaultImagePath is the sentinel stored for users without a custom avatar
const DefaultImagePath = "uploads/user/default.jpg"

const resetTokenBytes = 32

type Role int

const (
	RoleUser Role = iota
	RoleStaff
	RoleSuperuser
)

func (r Role) String() string {
	switch r {
	case RoleStaff:
		return "staff"
	case RoleSuperuser:
		return "superuser"
	default:
		return "user"
	}
}

// NormalizeEmail lower-cases the domain part of an address and leaves the
// local part untouched.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

// SignUp creates a user and provisions the user's wallet in one unit, so a
// failed wallet insert leaves no user behind.
func (s *LedgerService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.UserProfile, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	if _, err := time.Parse(dateLayout, req.DateOfBirth); err != nil {
		return nil, store.InvalidField("date_of_birth", "enter a valid date in YYYY-MM-DD format")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var user *models.User
	err = s.store.Atomic(ctx, func(l store.Ledger) error {
		var err error
		user, err = l.CreateUser(ctx, store.CreateUserParams{
			Id:           uuid.New().String(),
			Email:        NormalizeEmail(req.Email),
			PasswordHash: string(hash),
			FullName:     req.FullName,
			NickName:     req.NickName,
			DateOfBirth:  req.DateOfBirth,
			NationalId:   req.NationalId,
			ImagePath:    s.avatar,
		})
		if err != nil {
			return err
		}
		if _, err := l.GetOrCreateWallet(ctx, user.Id); err != nil {
			return fmt.Errorf("failed to provision wallet: %w", err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, store.ErrUniquenessConflict) {
			zap.L().Error("Failed to sign up user",
				zap.String("email", req.Email),
				zap.Error(err))
		}
		return nil, err
	}

	zap.L().Info("User signed up",
		zap.String("user_id", user.Id),
		zap.String("email", user.Email))

	return toProfile(user), nil
}

// VerifyCredentials returns the active user matching email and password
func (s *LedgerService) VerifyCredentials(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, store.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, store.ErrInvalidCredentials
	}
	return user, nil
}

// Authorize checks whether an identity may act with role. It does not look at
// credentials.
func (s *LedgerService) Authorize(user *models.User, role Role) error {
	if user == nil || !user.IsActive {
		return store.ErrForbidden
	}

	allowed := false
	switch role {
	case RoleUser:
		allowed = true
	case RoleStaff:
		allowed = user.IsStaff || user.IsSuperuser
	case RoleSuperuser:
		allowed = user.IsSuperuser
	}
	if !allowed {
		return fmt.Errorf("%w: %s role required", store.ErrForbidden, role)
	}
	return nil
}

// RequestPasswordReset issues a single-use token for the active user owning
// email. Delivering the token is up to the caller.
func (s *LedgerService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return "", store.MissingField("email")
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if !user.IsActive {
		return "", fmt.Errorf("user %s: %w", email, store.ErrNotFound)
	}

	token, err := newResetToken()
	if err != nil {
		return "", err
	}

	reset, err := s.store.CreatePasswordResetToken(ctx, store.CreatePasswordResetTokenParams{
		Token:     token,
		UserId:    user.Id,
		ExpiresAt: s.now().Add(s.resetTTL),
	})
	if err != nil {
		return "", err
	}

	zap.L().Info("Password reset requested",
		zap.String("user_id", user.Id),
		zap.Time("expires_at", reset.ExpiresAt))
	return token, nil
}

// ConfirmPasswordReset sets a new password for the token's owner. Unknown,
// used and expired tokens fail with store.ErrInvalidResetToken. Redeeming a
// token retires every other outstanding token of the same user.
func (s *LedgerService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	req := models.PasswordResetConfirmRequest{Token: strings.TrimSpace(token), Password: newPassword}
	if err := s.validateRequest(req); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	encoded := string(hash)

	var userId string
	err = s.store.Atomic(ctx, func(l store.Ledger) error {
		now := s.now()
		reset, err := l.GetPasswordResetToken(ctx, req.Token)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return store.ErrInvalidResetToken
			}
			return err
		}
		if reset.UsedAt != nil || !now.Before(reset.ExpiresAt) {
			return store.ErrInvalidResetToken
		}

		userId = reset.UserId
		if _, err := l.UpdateUser(ctx, userId, store.UpdateUserParams{PasswordHash: &encoded}); err != nil {
			return err
		}
		_, err = l.ConsumePasswordResetTokens(ctx, userId, now)
		return err
	})
	if err != nil {
		if !errors.Is(err, store.ErrInvalidResetToken) {
			zap.L().Error("Failed to reset password", zap.Error(err))
		}
		return err
	}

	zap.L().Info("Password reset", zap.String("user_id", userId))
	return nil
}

func newResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (s *LedgerService) GetProfile(ctx context.Context, userId string) (*models.UserProfile, error) {
	user, err := s.store.GetUserById(ctx, userId)
	if err != nil {
		return nil, err
	}
	return toProfile(user), nil
}

// UpdateProfile applies a partial profile change. A new password is hashed
// before it is stored.
func (s *LedgerService) UpdateProfile(ctx context.Context, userId string, req models.ProfileUpdateRequest) (*models.UserProfile, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	params := store.UpdateUserParams{
		FullName: req.FullName,
		NickName: req.NickName,
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		encoded := string(hash)
		params.PasswordHash = &encoded
	}

	user, err := s.store.UpdateUser(ctx, userId, params)
	if err != nil {
		return nil, err
	}

	zap.L().Info("Profile updated", zap.String("user_id", userId))
	return toProfile(user), nil
}

// ProfileImagePath returns the storage path for an uploaded avatar. The
// extension of filename is kept as uploaded and the base name is replaced by
// the user id.
func (s *LedgerService) ProfileImagePath(userId, filename string) string {
	return fmt.Sprintf("uploads/user/%s%s", userId, filepath.Ext(filename))
}

// MediaFile resolves a stored image path against the media root
func (s *LedgerService) MediaFile(path string) string {
	return filepath.Join(s.mediaRoot, filepath.FromSlash(path))
}

// SetProfileImage records a new avatar path and returns the previous custom
// path so the file store can remove it. The default sentinel is never returned.
func (s *LedgerService) SetProfileImage(ctx context.Context, userId, path string) (string, error) {
	if path == "" {
		return "", store.MissingField("image")
	}
	return s.replaceImage(ctx, userId, path)
}

// ClearProfileImage restores the default avatar
func (s *LedgerService) ClearProfileImage(ctx context.Context, userId string) (string, error) {
	return s.replaceImage(ctx, userId, s.avatar)
}

func (s *LedgerService) replaceImage(ctx context.Context, userId, path string) (string, error) {
	var previous string
	err := s.store.Atomic(ctx, func(l store.Ledger) error {
		user, err := l.GetUserById(ctx, userId)
		if err != nil {
			return err
		}
		previous = user.ImagePath
		if previous == path {
			return nil
		}
		_, err = l.UpdateUser(ctx, userId, store.UpdateUserParams{ImagePath: &path})
		return err
	})
	if err != nil {
		return "", err
	}

	if previous == s.avatar || previous == path {
		return "", nil
	}
	zap.L().Info("Profile image replaced",
		zap.String("user_id", userId),
		zap.String("previous", previous),
		zap.String("current", path))
	return previous, nil
}

func toProfile(user *models.User) *models.UserProfile {
	return &models.UserProfile{
		Id:          user.Id,
		Email:       user.Email,
		FullName:    user.FullName,
		NickName:    user.NickName,
		DateOfBirth: user.DateOfBirth,
		ImagePath:   user.ImagePath,
	}
}
