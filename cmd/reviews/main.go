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
	"os"
	"strings"

	"bitchain-ledger-go/internal/common"
	"bitchain-ledger-go/internal/config"
	"bitchain-ledger-go/internal/models"

	"go.uber.org/zap"
)

func printReview(review *models.ReviewSummary, isLast bool) {
	fmt.Printf("%s %-10s good: %6d  bad: %6d\n", common.BoxPrefix(isLast), review.Symbol, review.Good, review.Bad)
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	symbolFlag := flag.String("symbol", "", "Symbol to show or vote on")
	voteFlag := flag.String("vote", "", "Vote to apply: good or bad")
	seedFlag := flag.Bool("seed", false, "Create counters for every symbol in the symbols file")
	resetFlag := flag.Bool("reset", false, "Run today's reset now (no-op if already done)")
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

	service := services.ApiService
	symbol := strings.ToUpper(strings.TrimSpace(*symbolFlag))

	switch {
	case *resetFlag:
		reset, err := service.ResetAllReviews(ctx)
		if err != nil {
			common.PrintFailure("Reset failed: %v", err)
			os.Exit(1)
		}
		if reset == 0 {
			common.PrintWarning("Reviews already reset for %s", service.Today())
		} else {
			common.PrintSuccess("Reset %d review counters for %s", reset, service.Today())
		}

	case *seedFlag:
		symbols, err := common.LoadSymbols(cfg.Scheduler.SymbolsFile)
		if err != nil {
			logger.Fatal("Failed to load symbols", zap.String("file", cfg.Scheduler.SymbolsFile), zap.Error(err))
		}
		reviews, err := service.SeedReviews(ctx, symbols)
		if err != nil {
			common.PrintFailure("%v", err)
			os.Exit(1)
		}
		common.PrintHeader("REVIEW COUNTERS", common.DefaultWidth)
		for i := range reviews {
			printReview(&reviews[i], i == len(reviews)-1)
		}
		common.PrintSeparator("=", common.DefaultWidth)

	case *voteFlag != "":
		review, err := service.ApplyVote(ctx, symbol, strings.ToLower(*voteFlag))
		if err != nil {
			common.PrintFailure("%v", err)
			os.Exit(1)
		}
		common.PrintSuccess("Vote recorded")
		printReview(review, true)

	case symbol != "":
		review, err := service.GetOrCreateReview(ctx, symbol)
		if err != nil {
			common.PrintFailure("%v", err)
			os.Exit(1)
		}
		printReview(review, true)

	default:
		flag.Usage()
		os.Exit(2)
	}
}
