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

// InsertTransaction appends an immutable transaction record stamped with the
// server clock. There is no update or delete path for transactions.
func (l *ledger) InsertTransaction(ctx context.Context, params store.InsertTransactionParams) (*models.Transaction, error) {
	zap.L().Info("Recording transaction",
		zap.String("wallet_id", params.WalletId),
		zap.String("type", params.TransactionType),
		zap.Int64("amount", params.Amount),
		zap.String("currency", params.Currency),
		zap.String("price_usd", params.PriceUsd.String()))

	transaction := &models.Transaction{
		Id:              uuid.New().String(),
		WalletId:        params.WalletId,
		TransactionType: params.TransactionType,
		Amount:          params.Amount,
		Currency:        params.Currency,
		PriceUsd:        params.PriceUsd.Round(2),
		CreatedAt:       time.Now().UTC(),
	}

	result, err := l.q.ExecContext(ctx, queryInsertTransaction,
		transaction.Id, transaction.WalletId, transaction.TransactionType, transaction.Amount,
		transaction.Currency, transaction.PriceUsd.StringFixed(2), transaction.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	transaction.Seq, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read transaction sequence: %w", err)
	}

	zap.L().Info("Transaction recorded successfully",
		zap.String("transaction_id", transaction.Id),
		zap.Int64("seq", transaction.Seq),
		zap.String("wallet_id", params.WalletId))

	return transaction, nil
}

func (l *ledger) GetTransaction(ctx context.Context, walletId, transactionId string) (*models.Transaction, error) {
	tx, err := scanTransaction(l.q.QueryRowContext(ctx, queryGetTransaction, walletId, transactionId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transaction %s: %w", transactionId, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

// GetTransactionHistory returns paginated transaction history for a wallet, newest first
func (l *ledger) GetTransactionHistory(ctx context.Context, walletId string, limit, offset int) ([]models.Transaction, error) {
	zap.L().Debug("Getting transaction history",
		zap.String("wallet_id", walletId),
		zap.Int("limit", limit),
		zap.Int("offset", offset))

	rows, err := l.q.QueryContext(ctx, queryGetTransactionHistory, walletId, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var transactions []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *tx)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		zap.L().Error("Error during transaction row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return transactions, nil
}

func (l *ledger) CountTransactions(ctx context.Context, walletId string) (int64, error) {
	var count int64
	if err := l.q.QueryRowContext(ctx, queryCountTransactions, walletId).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var tx models.Transaction
	var priceStr string
	err := row.Scan(&tx.Seq, &tx.Id, &tx.WalletId, &tx.TransactionType,
		&tx.Amount, &tx.Currency, &priceStr, &tx.CreatedAt)
	if err != nil {
		return nil, err
	}

	tx.PriceUsd, err = decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price '%s': %w", priceStr, err)
	}
	return &tx, nil
}
