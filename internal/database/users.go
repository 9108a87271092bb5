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

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bitchain-ledger-go/internal/models"
	"bitchain-ledger-go/internal/store"

	"go.uber.org/zap"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.Id, &user.Email, &user.PasswordHash, &user.FullName, &user.NickName,
		&user.DateOfBirth, &user.NationalId, &user.ImagePath, &user.IsActive, &user.IsStaff,
		&user.IsSuperuser, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (l *ledger) GetUsers(ctx context.Context) ([]models.User, error) {
	zap.L().Debug("Querying active users")

	rows, err := l.q.QueryContext(ctx, queryGetActiveUsers)
	if err != nil {
		zap.L().Error("Failed to query users", zap.Error(err))
		return nil, fmt.Errorf("unable to query users: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			zap.L().Error("Failed to scan user row", zap.Error(err))
			return nil, fmt.Errorf("unable to scan user row: %w", err)
		}

		users = append(users, *user)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		zap.L().Error("Error during user row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	zap.L().Info("Retrieved users", zap.Int("count", len(users)))
	return users, nil
}

func (l *ledger) GetUserById(ctx context.Context, userId string) (*models.User, error) {
	zap.L().Debug("Querying user by ID", zap.String("user_id", userId))

	user, err := scanUser(l.q.QueryRowContext(ctx, queryGetUserById, userId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", userId, store.ErrNotFound)
		}
		zap.L().Error("Failed to query user by ID", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query user by ID: %w", err)
	}

	zap.L().Debug("Retrieved user by ID", zap.String("user_id", userId), zap.String("nick_name", user.NickName))
	return user, nil
}

func (l *ledger) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	zap.L().Debug("Querying user by email", zap.String("email", email))

	user, err := scanUser(l.q.QueryRowContext(ctx, queryGetUserByEmail, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", email, store.ErrNotFound)
		}
		zap.L().Error("Failed to query user by email", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("unable to query user by email: %w", err)
	}

	zap.L().Debug("Retrieved user by email", zap.String("email", email), zap.String("nick_name", user.NickName))
	return user, nil
}

func (l *ledger) CreateUser(ctx context.Context, params store.CreateUserParams) (*models.User, error) {
	zap.L().Info("Creating user",
		zap.String("id", params.Id),
		zap.String("nick_name", params.NickName),
		zap.String("email", params.Email))

	now := time.Now().UTC()
	_, err := l.q.ExecContext(ctx, queryInsertUser,
		params.Id, params.Email, params.PasswordHash, params.FullName, params.NickName,
		params.DateOfBirth, params.NationalId, params.ImagePath, now, now)
	if err != nil {
		err = asConflict(err, map[string]string{
			"email":       params.Email,
			"nick_name":   params.NickName,
			"national_id": params.NationalId,
		})
		if errors.Is(err, store.ErrUniquenessConflict) {
			zap.L().Warn("User already exists", zap.String("email", params.Email), zap.Error(err))
			return nil, err
		}
		zap.L().Error("Failed to insert user", zap.String("email", params.Email), zap.Error(err))
		return nil, fmt.Errorf("unable to insert user: %w", err)
	}

	zap.L().Info("User created successfully", zap.String("id", params.Id), zap.String("email", params.Email))

	// Return the created user
	return l.GetUserById(ctx, params.Id)
}

func (l *ledger) UpdateUser(ctx context.Context, userId string, params store.UpdateUserParams) (*models.User, error) {
	zap.L().Info("Updating user", zap.String("user_id", userId))

	result, err := l.q.ExecContext(ctx, queryUpdateUser,
		params.FullName, params.NickName, params.PasswordHash, params.ImagePath, time.Now().UTC(), userId)
	if err != nil {
		values := map[string]string{}
		if params.NickName != nil {
			values["nick_name"] = *params.NickName
		}
		err = asConflict(err, values)
		if errors.Is(err, store.ErrUniquenessConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("unable to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("unable to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("user %s: %w", userId, store.ErrNotFound)
	}

	return l.GetUserById(ctx, userId)
}
