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
	"errors"
	"fmt"

	"bitchain-ledger-go/internal/models"
	"bitchain-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	maxSymbolLength      = 10
	balanceDecimalPlaces = 10
)

// GetOrCreateWallet returns the user's wallet, creating it on first use
func (s *LedgerService) GetOrCreateWallet(ctx context.Context, userId string) (*models.Wallet, error) {
	if userId == "" {
		return nil, store.MissingField("user_id")
	}
	return s.store.GetOrCreateWallet(ctx, userId)
}

// AdjustBalance applies a signed delta to one symbol of the user's wallet.
// A delta that would leave the balance negative fails with
// store.ErrInsufficientFunds and changes nothing.
func (s *LedgerService) AdjustBalance(ctx context.Context, userId, symbol string, delta decimal.Decimal) (*models.UserBalance, error) {
	if err := validateSymbol("symbol", symbol); err != nil {
		return nil, err
	}
	if !delta.Equal(delta.Round(balanceDecimalPlaces)) {
		return nil, store.InvalidField("delta", "ensure that there are no more than 10 decimal places")
	}

	var balance *models.WalletBalance
	err := s.store.Atomic(ctx, func(l store.Ledger) error {
		wallet, err := l.GetOrCreateWallet(ctx, userId)
		if err != nil {
			return err
		}
		balance, err = l.AdjustBalance(ctx, store.AdjustBalanceParams{
			WalletId:  wallet.Id,
			Symbol:    symbol,
			Delta:     delta,
			Reference: "manual",
		})
		return err
	})
	if err != nil {
		if !errors.Is(err, store.ErrInsufficientFunds) {
			zap.L().Error("Failed to adjust balance",
				zap.String("user_id", userId),
				zap.String("symbol", symbol),
				zap.String("delta", delta.String()),
				zap.Error(err))
		}
		return nil, err
	}

	return &models.UserBalance{Symbol: balance.Symbol, Amount: balance.Amount}, nil
}

// GetBalance returns the current balance for a user and specific symbol
func (s *LedgerService) GetBalance(ctx context.Context, userId, symbol string) (decimal.Decimal, error) {
	if err := validateSymbol("symbol", symbol); err != nil {
		return decimal.Zero, err
	}

	wallet, err := s.GetOrCreateWallet(ctx, userId)
	if err != nil {
		return decimal.Zero, err
	}

	balance, err := s.store.GetBalance(ctx, wallet.Id, symbol)
	if err != nil {
		zap.L().Error("Failed to get balance",
			zap.String("user_id", userId),
			zap.String("symbol", symbol),
			zap.Error(err))
		return decimal.Zero, fmt.Errorf("failed to retrieve balance: %w", err)
	}
	return balance.Amount, nil
}

// GetBalances returns all non-zero balances for a user
func (s *LedgerService) GetBalances(ctx context.Context, userId string) ([]models.UserBalance, error) {
	wallet, err := s.GetOrCreateWallet(ctx, userId)
	if err != nil {
		return nil, err
	}

	balances, err := s.store.GetAllBalances(ctx, wallet.Id)
	if err != nil {
		zap.L().Error("Failed to get balances", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve balances: %w", err)
	}

	result := make([]models.UserBalance, len(balances))
	for i, balance := range balances {
		result[i] = models.UserBalance{
			Symbol: balance.Symbol,
			Amount: balance.Amount,
		}
	}
	return result, nil
}
