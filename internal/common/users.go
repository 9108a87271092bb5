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

package common

import (
	"context"
	"fmt"

	"bitchain-ledger-go/internal/api"
	"bitchain-ledger-go/internal/store"

	"go.uber.org/zap"
)

// UserInfo represents simplified user information for command-line utilities
type UserInfo struct {
	Id       string
	Name     string
	NickName string
	Email    string
}

// InitializeUsers retrieves users based on an optional email filter.
// If emailFilter is provided, returns a single user with that email.
// If emailFilter is empty, returns all active users.
func InitializeUsers(ctx context.Context, dbService store.Ledger, emailFilter string, logger *zap.Logger) ([]UserInfo, error) {
	var users []UserInfo

	if emailFilter != "" {
		email := api.NormalizeEmail(emailFilter)
		logger.Info("Looking up user by email", zap.String("email", email))
		user, err := dbService.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		users = append(users, UserInfo{
			Id:       user.Id,
			Name:     user.FullName,
			NickName: user.NickName,
			Email:    user.Email,
		})
	} else {
		allUsers, err := dbService.GetUsers(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get users: %w", err)
		}
		for _, u := range allUsers {
			users = append(users, UserInfo{
				Id:       u.Id,
				Name:     u.FullName,
				NickName: u.NickName,
				Email:    u.Email,
			})
		}
	}

	logger.Info("Retrieved users", zap.Int("count", len(users)))
	return users, nil
}

// RequireUser resolves a single user by email for tools that act on one account
func RequireUser(ctx context.Context, dbService store.Ledger, email string, logger *zap.Logger) (UserInfo, error) {
	if email == "" {
		return UserInfo{}, fmt.Errorf("--email is required")
	}
	users, err := InitializeUsers(ctx, dbService, email, logger)
	if err != nil {
		return UserInfo{}, err
	}
	return users[0], nil
}
