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

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GetOrCreateWallet returns the user's wallet, creating it on first use.
// INSERT OR IGNORE on the unique user_id keeps concurrent callers on one row.
func (l *ledger) GetOrCreateWallet(ctx context.Context, userId string) (*models.Wallet, error) {
	wallet, err := l.GetWalletByUser(ctx, userId)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	walletId := uuid.New().String()
	if _, err := l.q.ExecContext(ctx, queryInsertWallet, walletId, userId, time.Now().UTC()); err != nil {
		zap.L().Error("Failed to create wallet", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to create wallet: %w", err)
	}

	wallet, err = l.GetWalletByUser(ctx, userId)
	if err != nil {
		return nil, err
	}

	if wallet.Id == walletId {
		zap.L().Info("Wallet created", zap.String("user_id", userId), zap.String("wallet_id", walletId))
	}
	return wallet, nil
}

func (l *ledger) GetWalletByUser(ctx context.Context, userId string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := l.q.QueryRowContext(ctx, queryGetWalletByUser, userId).Scan(&wallet.Id, &wallet.UserId, &wallet.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("wallet for user %s: %w", userId, store.ErrNotFound)
		}
		return nil, fmt.Errorf("unable to query wallet: %w", err)
	}
	return &wallet, nil
}

// AdjustBalance applies a signed delta to one wallet/symbol balance and writes
// the audit row. The balance row is created at zero on first reference. A
// delta that would take the amount below zero fails with ErrInsufficientFunds.
// The update is guarded by the row version; a lost race returns
// ErrConcurrentModification so the enclosing unit can be retried.
func (l *ledger) AdjustBalance(ctx context.Context, params store.AdjustBalanceParams) (*models.WalletBalance, error) {
	zap.L().Info("Adjusting balance",
		zap.String("wallet_id", params.WalletId),
		zap.String("symbol", params.Symbol),
		zap.String("delta", params.Delta.String()),
		zap.String("reference", params.Reference))

	now := time.Now().UTC()
	if _, err := l.q.ExecContext(ctx, queryInsertWalletBalance, uuid.New().String(), params.WalletId, params.Symbol, now); err != nil {
		return nil, fmt.Errorf("failed to create wallet balance: %w", err)
	}

	balance, err := l.loadBalance(ctx, params.WalletId, params.Symbol)
	if err != nil {
		return nil, err
	}

	newAmount := balance.Amount.Add(params.Delta)
	if newAmount.IsNegative() {
		zap.L().Warn("Insufficient funds for adjustment",
			zap.String("wallet_id", params.WalletId),
			zap.String("symbol", params.Symbol),
			zap.String("current_amount", balance.Amount.String()),
			zap.String("delta", params.Delta.String()))
		return nil, &store.InsufficientFundsError{
			Symbol:    params.Symbol,
			Available: balance.Amount.String(),
			Requested: params.Delta.Abs().String(),
		}
	}

	adjustmentId := uuid.New().String()
	_, err = l.q.ExecContext(ctx, queryInsertBalanceAdjustment,
		adjustmentId, params.WalletId, params.Symbol, params.Delta.String(),
		balance.Amount.String(), newAmount.String(), params.Reference, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert balance adjustment: %w", err)
	}

	// Update balance (with optimistic locking)
	result, err := l.q.ExecContext(ctx, queryUpdateWalletBalance,
		newAmount.String(), adjustmentId, now, params.WalletId, params.Symbol, balance.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("balance update failed - %w", store.ErrConcurrentModification)
	}

	zap.L().Info("Balance adjusted",
		zap.String("wallet_id", params.WalletId),
		zap.String("symbol", params.Symbol),
		zap.String("old_amount", balance.Amount.String()),
		zap.String("new_amount", newAmount.String()))

	balance.Amount = newAmount
	balance.LastAdjustmentId = adjustmentId
	balance.Version++
	balance.UpdatedAt = now
	return balance, nil
}

func (l *ledger) loadBalance(ctx context.Context, walletId, symbol string) (*models.WalletBalance, error) {
	balance, err := scanBalance(l.q.QueryRowContext(ctx, queryGetWalletBalance, walletId, symbol))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("balance %s/%s: %w", walletId, symbol, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get current balance: %w", err)
	}
	return balance, nil
}

func scanBalance(row rowScanner) (*models.WalletBalance, error) {
	var balance models.WalletBalance
	var amountStr string
	err := row.Scan(&balance.Id, &balance.WalletId, &balance.Symbol, &amountStr,
		&balance.LastAdjustmentId, &balance.Version, &balance.UpdatedAt)
	if err != nil {
		return nil, err
	}

	balance.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance '%s': %w", amountStr, err)
	}
	return &balance, nil
}
