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
	"flag"
	"fmt"

	"bitchain-ledger-go/internal/common"
	"bitchain-ledger-go/internal/config"
	"bitchain-ledger-go/internal/database"
	"bitchain-ledger-go/internal/models"

	"go.uber.org/zap"
)

type balanceStats struct {
	totalUsers        int
	totalBalances     int
	usersWithBalances int
	mismatches        int
}

func printBalance(balance models.WalletBalance, isLast bool) {
	symbol := common.BoxPrefix(isLast)
	lastAdjustment := common.TruncateId(balance.LastAdjustmentId)

	fmt.Printf("%s %-10s: %24s (v%d, last_adj: %s, updated: %s)\n",
		symbol,
		balance.Symbol,
		balance.Amount.String(),
		balance.Version,
		lastAdjustment,
		balance.UpdatedAt.Format("2006-01-02 15:04:05"))
}

func printUserHeader(user common.UserInfo, wallet *models.Wallet, balanceCount int) {
	fmt.Printf("\n┌─ User: %s (%s)\n", user.Name, user.Email)
	fmt.Printf("│  ID: %s\n", user.Id)
	fmt.Printf("│  Wallet: %s\n", wallet.Id)
	fmt.Printf("│  Symbols: %d\n", balanceCount)
	common.PrintBoxSeparator(78)
}

func processUser(ctx context.Context, user common.UserInfo, dbService *database.Service, reconcile bool) (int, int, error) {
	wallet, err := dbService.GetOrCreateWallet(ctx, user.Id)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get wallet: %w", err)
	}

	balances, err := dbService.GetAllBalances(ctx, wallet.Id)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get balances: %w", err)
	}

	if len(balances) == 0 {
		return 0, 0, nil
	}

	printUserHeader(user, wallet, len(balances))
	mismatches := 0
	for i, balance := range balances {
		printBalance(balance, i == len(balances)-1)
		if !reconcile {
			continue
		}
		if err := dbService.ReconcileBalance(ctx, wallet.Id, balance.Symbol); err != nil {
			mismatches++
			common.PrintFailure("%s does not match its adjustment history: %v", balance.Symbol, err)
		}
	}

	return len(balances), mismatches, nil
}

func processUsersAndGenerateReport(ctx context.Context, users []common.UserInfo, dbService *database.Service, reconcile bool, logger *zap.Logger) balanceStats {
	stats := balanceStats{}

	for _, user := range users {
		stats.totalUsers++

		balanceCount, mismatches, err := processUser(ctx, user, dbService, reconcile)
		if err != nil {
			logger.Error("Failed to process user",
				zap.String("user_id", user.Id),
				zap.String("user_name", user.Name),
				zap.Error(err))
			continue
		}

		stats.mismatches += mismatches
		if balanceCount > 0 {
			stats.usersWithBalances++
			stats.totalBalances += balanceCount
		}
	}

	return stats
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	// Parse command line flags
	emailFlag := flag.String("email", "", "Filter by specific user email (optional)")
	reconcileFlag := flag.Bool("reconcile", false, "Check every balance against its adjustment history")
	flag.Parse()

	logger.Info("Starting balance query")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Connecting to database", zap.String("path", cfg.Database.Path))
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	// Initialize users based on filter
	users, err := common.InitializeUsers(ctx, dbService, *emailFlag, logger)
	if err != nil {
		logger.Fatal("Failed to initialize users", zap.Error(err))
	}

	common.PrintHeader("WALLET BALANCE REPORT", common.DefaultWidth)

	stats := processUsersAndGenerateReport(ctx, users, dbService, *reconcileFlag, logger)

	summary := fmt.Sprintf("SUMMARY: %d users with balances (%d total balances across %d users queried)",
		stats.usersWithBalances, stats.totalBalances, stats.totalUsers)
	common.PrintFooter(summary, common.DefaultWidth)

	if *reconcileFlag {
		if stats.mismatches == 0 {
			common.PrintSuccess("All balances reconcile with their adjustment history")
		} else {
			common.PrintFailure("%d balances do not reconcile", stats.mismatches)
		}
	}

	logger.Info("Balance query completed",
		zap.Int("users_queried", stats.totalUsers),
		zap.Int("users_with_balances", stats.usersWithBalances),
		zap.Int("total_balances", stats.totalBalances),
		zap.Int("mismatches", stats.mismatches))
}
