package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bitchain-ledger-go/internal/models"
	"bitchain-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GetBalance returns current balance for wallet/symbol (O(1) lookup)
func (l *ledger) GetBalance(ctx context.Context, walletId, symbol string) (*models.WalletBalance, error) {
	zap.L().Debug("Getting balance", zap.String("wallet_id", walletId), zap.String("symbol", symbol))

	balance, err := l.loadBalance(ctx, walletId, symbol)
	if errors.Is(err, store.ErrNotFound) {
		// No balance record means zero balance
		return &models.WalletBalance{WalletId: walletId, Symbol: symbol, Amount: decimal.Zero}, nil
	}
	if err != nil {
		zap.L().Error("Failed to get balance", zap.String("wallet_id", walletId), zap.String("symbol", symbol), zap.Error(err))
		return nil, err
	}

	zap.L().Debug("Retrieved balance", zap.String("wallet_id", walletId), zap.String("symbol", symbol), zap.String("amount", balance.Amount.String()))
	return balance, nil
}

// GetAllBalances returns all non-zero balances for a wallet
func (l *ledger) GetAllBalances(ctx context.Context, walletId string) ([]models.WalletBalance, error) {
	zap.L().Debug("Getting all balances", zap.String("wallet_id", walletId))

	rows, err := l.q.QueryContext(ctx, queryGetAllWalletBalances, walletId)
	if err != nil {
		zap.L().Error("Failed to get all balances", zap.String("wallet_id", walletId), zap.Error(err))
		return nil, fmt.Errorf("failed to get all balances: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var balances []models.WalletBalance
	for rows.Next() {
		balance, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balances = append(balances, *balance)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		zap.L().Error("Error during balance row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating balance rows: %w", err)
	}

	zap.L().Debug("Retrieved all balances", zap.String("wallet_id", walletId), zap.Int("count", len(balances)))
	return balances, nil
}

// ReconcileBalance verifies that current balance matches the sum of all adjustments
func (l *ledger) ReconcileBalance(ctx context.Context, walletId, symbol string) error {
	zap.L().Info("Reconciling balance", zap.String("wallet_id", walletId), zap.String("symbol", symbol))

	currentBalance, err := l.GetBalance(ctx, walletId, symbol)
	if err != nil {
		return fmt.Errorf("failed to get current balance: %w", err)
	}

	// Summed in Go; SQLite SUM over TEXT would go through float
	rows, err := l.q.QueryContext(ctx, queryGetAdjustmentDeltas, walletId, symbol)
	if err != nil {
		return fmt.Errorf("failed to load adjustments: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	calculated := decimal.Zero
	for rows.Next() {
		var deltaStr string
		if err := rows.Scan(&deltaStr); err != nil {
			return fmt.Errorf("failed to scan adjustment: %w", err)
		}
		delta, err := decimal.NewFromString(deltaStr)
		if err != nil {
			return fmt.Errorf("failed to parse delta '%s': %w", deltaStr, err)
		}
		calculated = calculated.Add(delta)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating adjustment rows: %w", err)
	}

	// Check if balances match (exact decimal comparison)
	if !currentBalance.Amount.Equal(calculated) {
		zap.L().Error("Balance reconciliation failed",
			zap.String("wallet_id", walletId),
			zap.String("symbol", symbol),
			zap.String("current_balance", currentBalance.Amount.String()),
			zap.String("calculated_balance", calculated.String()),
			zap.String("difference", currentBalance.Amount.Sub(calculated).String()))
		return fmt.Errorf("balance mismatch: current=%s, calculated=%s", currentBalance.Amount.String(), calculated.String())
	}

	zap.L().Info("Balance reconciliation successful",
		zap.String("wallet_id", walletId),
		zap.String("symbol", symbol),
		zap.String("balance", currentBalance.Amount.String()))
	return nil
}
