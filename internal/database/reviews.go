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
	"unicode/utf8"

	"bitchain-ledger-go/internal/models"
	"bitchain-ledger-go/internal/store"

	"go.uber.org/zap"
)

const maxSymbolLength = 10

// GetOrCreateReview returns the counters for symbol, creating a zeroed row
// stamped with today on first access.
func (l *ledger) GetOrCreateReview(ctx context.Context, symbol, today string) (*models.CryptoReview, error) {
	review, err := l.getReview(ctx, symbol)
	if err == nil {
		return review, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	if utf8.RuneCountInString(symbol) > maxSymbolLength {
		return nil, fmt.Errorf("%w: %q exceeds %d characters", store.ErrSymbolTooLong, symbol, maxSymbolLength)
	}

	if _, err := l.q.ExecContext(ctx, queryInsertReview, symbol, today); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	zap.L().Info("Review created", zap.String("symbol", symbol), zap.String("last_reset_date", today))

	return l.getReview(ctx, symbol)
}

// IncrementReview bumps the good or bad counter in place
func (l *ledger) IncrementReview(ctx context.Context, symbol string, good bool) (*models.CryptoReview, error) {
	query := queryIncrementBad
	if good {
		query = queryIncrementGood
	}

	result, err := l.q.ExecContext(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to increment review: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("review %s: %w", symbol, store.ErrNotFound)
	}

	return l.getReview(ctx, symbol)
}

// ResetReviews zeroes every review not already reset on today and returns the
// number of rows touched. A second call on the same day touches nothing.
func (l *ledger) ResetReviews(ctx context.Context, today string) (int64, error) {
	result, err := l.q.ExecContext(ctx, queryResetReviews, today, today)
	if err != nil {
		return 0, fmt.Errorf("failed to reset reviews: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return rowsAffected, nil
}

func (l *ledger) getReview(ctx context.Context, symbol string) (*models.CryptoReview, error) {
	var review models.CryptoReview
	err := l.q.QueryRowContext(ctx, queryGetReview, symbol).
		Scan(&review.Symbol, &review.Good, &review.Bad, &review.LastResetDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("review %s: %w", symbol, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &review, nil
}
