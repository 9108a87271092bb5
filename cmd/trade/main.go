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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"bitchain-ledger-go/internal/common"
	"bitchain-ledger-go/internal/config"
	"bitchain-ledger-go/internal/models"
	"bitchain-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func printHistory(records []models.TransactionRecord) {
	if len(records) == 0 {
		fmt.Println("No transactions recorded")
		return
	}
	for i, record := range records {
		fmt.Printf("%s %-4s %6d %-10s @ %14s USD  %s  %s\n",
			common.BoxPrefix(i == len(records)-1),
			record.Type,
			record.Amount,
			record.Currency,
			record.PriceUsd.StringFixed(2),
			record.CreatedAt.Format("2006-01-02 15:04:05"),
			common.TruncateId(record.Id))
	}
}

func buildRequest(kind, currency, price string, amount int64) (models.TransactionRequest, error) {
	req := models.TransactionRequest{
		Type:     kind,
		Currency: currency,
	}
	if amount != 0 {
		req.Amount = &amount
	}
	if price != "" {
		p, err := decimal.NewFromString(price)
		if err != nil {
			return req, fmt.Errorf("invalid price %q: %w", price, err)
		}
		req.PriceUsd = &p
	}
	return req, nil
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	emailFlag := flag.String("email", "", "User email (required)")
	typeFlag := flag.String("type", "", "Transaction type: buy or sell")
	amountFlag := flag.Int64("amount", 0, "Whole number of units")
	currencyFlag := flag.String("currency", "", "Currency symbol, e.g. BTC")
	priceFlag := flag.String("price", "", "Unit price in USD, up to 2 decimal places")
	adjustFlag := flag.Bool("adjust", false, "Also move the wallet balance by the traded amount")
	historyFlag := flag.Bool("history", false, "List the user's transactions instead of recording one")
	limitFlag := flag.Int("limit", 20, "History page size (max 100)")
	offsetFlag := flag.Int("offset", 0, "History offset")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg, false)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	user, err := common.RequireUser(ctx, services.DbService, *emailFlag, logger)
	if err != nil {
		logger.Fatal("Failed to resolve user", zap.Error(err))
	}

	if *historyFlag {
		records, err := services.ApiService.GetTransactionHistory(ctx, user.Id, *limitFlag, *offsetFlag)
		if err != nil {
			logger.Fatal("Failed to load history", zap.Error(err))
		}
		common.PrintHeader(fmt.Sprintf("TRANSACTIONS: %s", user.Email), common.DefaultWidth)
		printHistory(records)
		common.PrintSeparator("=", common.DefaultWidth)
		return
	}

	req, err := buildRequest(*typeFlag, *currencyFlag, *priceFlag, *amountFlag)
	if err != nil {
		common.PrintFailure("%v", err)
		os.Exit(1)
	}

	if !*adjustFlag {
		record, err := services.ApiService.RecordTransaction(ctx, user.Id, req)
		if err != nil {
			common.PrintFailure("Transaction rejected: %v", err)
			os.Exit(1)
		}
		common.PrintSuccess("Recorded %s %d %s @ %s USD (%s)",
			record.Type, record.Amount, record.Currency, record.PriceUsd.StringFixed(2), record.Id)
		return
	}

	result, err := services.ApiService.RecordTrade(ctx, user.Id, req)
	if err != nil {
		var funds *store.InsufficientFundsError
		if errors.As(err, &funds) {
			common.PrintFailure("Insufficient %s: available %s, requested %s", funds.Symbol, funds.Available, funds.Requested)
		} else {
			common.PrintFailure("Trade rejected: %v", err)
		}
		os.Exit(1)
	}

	common.PrintSuccess("Recorded %s %d %s @ %s USD (%s)",
		result.Transaction.Type, result.Transaction.Amount, result.Transaction.Currency,
		result.Transaction.PriceUsd.StringFixed(2), result.Transaction.Id)
	fmt.Printf("New %s balance: %s\n", result.Balance.Symbol, result.Balance.Amount.String())
}
