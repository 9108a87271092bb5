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
	"fmt"
	"strings"

	"bitchain-ledger-go/internal/models"
	"bitchain-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	TransactionBuy  = "buy"
	TransactionSell = "sell"

	// prices are stored with at most 16 digits, 2 of them after the point
	priceMaxIntegerDigits = 14
)

// RecordTransaction validates req and appends an immutable transaction to the
// user's wallet. Balances are not touched; see RecordTrade.
func (s *LedgerService) RecordTransaction(ctx context.Context, userId string, req models.TransactionRequest) (*models.TransactionRecord, error) {
	params, err := s.transactionParams(req)
	if err != nil {
		return nil, err
	}

	var tx *models.Transaction
	err = s.store.Atomic(ctx, func(l store.Ledger) error {
		wallet, err := l.GetOrCreateWallet(ctx, userId)
		if err != nil {
			return err
		}
		params.WalletId = wallet.Id
		tx, err = l.InsertTransaction(ctx, params)
		return err
	})
	if err != nil {
		zap.L().Error("Failed to record transaction",
			zap.String("user_id", userId),
			zap.String("type", req.Type),
			zap.Error(err))
		return nil, err
	}

	record := toRecord(tx)
	return &record, nil
}

// RecordTrade records a buy or sell and moves the wallet balance by the same
// amount in one unit. A sell larger than the balance fails with
// store.ErrInsufficientFunds and leaves no transaction behind.
func (s *LedgerService) RecordTrade(ctx context.Context, userId string, req models.TransactionRequest) (*models.TradeResult, error) {
	params, err := s.transactionParams(req)
	if err != nil {
		return nil, err
	}

	var delta decimal.Decimal
	switch params.TransactionType {
	case TransactionBuy:
		delta = decimal.NewFromInt(params.Amount)
	case TransactionSell:
		delta = decimal.NewFromInt(params.Amount).Neg()
	default:
		return nil, store.InvalidField("type", fmt.Sprintf("trade type must be %q or %q", TransactionBuy, TransactionSell))
	}

	var (
		tx      *models.Transaction
		balance *models.WalletBalance
	)
	err = s.store.Atomic(ctx, func(l store.Ledger) error {
		wallet, err := l.GetOrCreateWallet(ctx, userId)
		if err != nil {
			return err
		}
		params.WalletId = wallet.Id

		tx, err = l.InsertTransaction(ctx, params)
		if err != nil {
			return err
		}

		balance, err = l.AdjustBalance(ctx, store.AdjustBalanceParams{
			WalletId:  wallet.Id,
			Symbol:    params.Currency,
			Delta:     delta,
			Reference: tx.Id,
		})
		return err
	})
	if err != nil {
		zap.L().Warn("Trade rejected",
			zap.String("user_id", userId),
			zap.String("type", params.TransactionType),
			zap.Int64("amount", params.Amount),
			zap.String("currency", params.Currency),
			zap.Error(err))
		return nil, err
	}

	zap.L().Info("Trade recorded",
		zap.String("user_id", userId),
		zap.String("transaction_id", tx.Id),
		zap.String("balance", balance.Amount.String()))

	return &models.TradeResult{
		Transaction: toRecord(tx),
		Balance:     models.UserBalance{Symbol: balance.Symbol, Amount: balance.Amount},
	}, nil
}

// GetTransactionHistory returns paginated transaction history, newest first
func (s *LedgerService) GetTransactionHistory(ctx context.Context, userId string, limit, offset int) ([]models.TransactionRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	wallet, err := s.GetOrCreateWallet(ctx, userId)
	if err != nil {
		return nil, err
	}

	transactions, err := s.store.GetTransactionHistory(ctx, wallet.Id, limit, offset)
	if err != nil {
		zap.L().Error("Failed to get transaction history",
			zap.String("user_id", userId),
			zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve transaction history: %w", err)
	}

	result := make([]models.TransactionRecord, len(transactions))
	for i := range transactions {
		result[i] = toRecord(&transactions[i])
	}
	return result, nil
}

// GetTransaction returns one of the user's transactions
func (s *LedgerService) GetTransaction(ctx context.Context, userId, transactionId string) (*models.TransactionRecord, error) {
	if transactionId == "" {
		return nil, store.MissingField("id")
	}

	wallet, err := s.store.GetWalletByUser(ctx, userId)
	if err != nil {
		return nil, err
	}

	tx, err := s.store.GetTransaction(ctx, wallet.Id, transactionId)
	if err != nil {
		return nil, err
	}
	record := toRecord(tx)
	return &record, nil
}

func (s *LedgerService) transactionParams(req models.TransactionRequest) (store.InsertTransactionParams, error) {
	req.Type = strings.TrimSpace(req.Type)
	req.Currency = strings.TrimSpace(req.Currency)
	if err := s.validateRequest(req); err != nil {
		return store.InsertTransactionParams{}, err
	}

	price := *req.PriceUsd
	if price.IsNegative() {
		return store.InsertTransactionParams{}, store.InvalidField("price_usd", "ensure this value is greater than or equal to 0")
	}
	if !price.Equal(price.Round(2)) {
		return store.InsertTransactionParams{}, store.InvalidField("price_usd", "ensure that there are no more than 2 decimal places")
	}
	if len(price.Truncate(0).String()) > priceMaxIntegerDigits {
		return store.InsertTransactionParams{}, store.InvalidField("price_usd", "ensure that there are no more than 14 digits before the decimal point")
	}

	return store.InsertTransactionParams{
		TransactionType: strings.ToLower(req.Type),
		Amount:          *req.Amount,
		Currency:        req.Currency,
		PriceUsd:        price,
	}, nil
}

func toRecord(tx *models.Transaction) models.TransactionRecord {
	return models.TransactionRecord{
		Id:        tx.Id,
		Type:      tx.TransactionType,
		Amount:    tx.Amount,
		Currency:  tx.Currency,
		PriceUsd:  tx.PriceUsd,
		CreatedAt: tx.CreatedAt,
	}
}
