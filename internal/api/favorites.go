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

	"bitchain-ledger-go/internal/store"

	"go.uber.org/zap"
)

// SetFavorites replaces the user's favorites with symbols. Duplicates collapse
// into one entry and the stored set is returned sorted.
func (s *LedgerService) SetFavorites(ctx context.Context, userId string, symbols []string) ([]string, error) {
	for _, symbol := range symbols {
		if err := validateSymbol("favorite_crypto_symbol", symbol); err != nil {
			return nil, err
		}
	}

	var favorites []string
	err := s.store.Atomic(ctx, func(l store.Ledger) error {
		var err error
		favorites, err = l.ReplaceFavorites(ctx, userId, symbols)
		return err
	})
	if err != nil {
		zap.L().Error("Failed to replace favorites", zap.String("user_id", userId), zap.Error(err))
		return nil, err
	}

	zap.L().Info("Favorites replaced",
		zap.String("user_id", userId),
		zap.Strings("symbols", favorites))
	return favorites, nil
}

func (s *LedgerService) GetFavorites(ctx context.Context, userId string) ([]string, error) {
	return s.store.GetFavorites(ctx, userId)
}
