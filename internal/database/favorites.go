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
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReplaceFavorites deletes the user's favorites and inserts one row per
// distinct symbol. Callers on the pool get this wrapped in a unit by Service.
func (l *ledger) ReplaceFavorites(ctx context.Context, userId string, symbols []string) ([]string, error) {
	zap.L().Info("Replacing favorites", zap.String("user_id", userId), zap.Strings("symbols", symbols))

	if _, err := l.q.ExecContext(ctx, queryDeleteFavorites, userId); err != nil {
		return nil, fmt.Errorf("failed to delete favorites: %w", err)
	}

	for _, symbol := range symbols {
		if _, err := l.q.ExecContext(ctx, queryInsertFavorite, uuid.New().String(), userId, symbol); err != nil {
			return nil, fmt.Errorf("failed to insert favorite %s: %w", symbol, err)
		}
	}

	return l.GetFavorites(ctx, userId)
}

func (l *ledger) GetFavorites(ctx context.Context, userId string) ([]string, error) {
	zap.L().Debug("Getting favorites", zap.String("user_id", userId))

	rows, err := l.q.QueryContext(ctx, queryGetFavorites, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to get favorites: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	favorites := []string{}
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorites = append(favorites, symbol)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorite rows: %w", err)
	}
	return favorites, nil
}
