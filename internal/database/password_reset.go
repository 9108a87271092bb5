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

func (l *ledger) CreatePasswordResetToken(ctx context.Context, params store.CreatePasswordResetTokenParams) (*models.PasswordResetToken, error) {
	zap.L().Info("Issuing password reset token",
		zap.String("user_id", params.UserId),
		zap.Time("expires_at", params.ExpiresAt))

	now := time.Now().UTC()
	if _, err := l.q.ExecContext(ctx, queryInsertPasswordResetToken,
		params.Token, params.UserId, now, params.ExpiresAt.UTC()); err != nil {
		zap.L().Error("Failed to insert password reset token", zap.String("user_id", params.UserId), zap.Error(err))
		return nil, fmt.Errorf("unable to insert password reset token: %w", err)
	}

	return &models.PasswordResetToken{
		Token:     params.Token,
		UserId:    params.UserId,
		CreatedAt: now,
		ExpiresAt: params.ExpiresAt.UTC(),
	}, nil
}

func (l *ledger) GetPasswordResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	var (
		reset  models.PasswordResetToken
		usedAt sql.NullTime
	)
	err := l.q.QueryRowContext(ctx, queryGetPasswordResetToken, token).
		Scan(&reset.Token, &reset.UserId, &reset.CreatedAt, &reset.ExpiresAt, &usedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("password reset token: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("unable to query password reset token: %w", err)
	}
	if usedAt.Valid {
		reset.UsedAt = &usedAt.Time
	}
	return &reset, nil
}

// ConsumePasswordResetTokens marks every outstanding token of the user as
// used, so redeeming one token also retires any siblings.
func (l *ledger) ConsumePasswordResetTokens(ctx context.Context, userId string, usedAt time.Time) (int64, error) {
	result, err := l.q.ExecContext(ctx, queryConsumePasswordResetTokens, usedAt.UTC(), userId)
	if err != nil {
		return 0, fmt.Errorf("unable to consume password reset tokens: %w", err)
	}
	consumed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("unable to get rows affected: %w", err)
	}

	zap.L().Info("Consumed password reset tokens", zap.String("user_id", userId), zap.Int64("count", consumed))
	return consumed, nil
}
