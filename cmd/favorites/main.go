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

	"go.uber.org/zap"
)

func parseSymbols(raw string) []string {
	var symbols []string
	for _, part := range strings.Split(raw, ",") {
		if symbol := strings.TrimSpace(part); symbol != "" {
			symbols = append(symbols, strings.ToUpper(symbol))
		}
	}
	return symbols
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	emailFlag := flag.String("email", "", "User email (required)")
	setFlag := flag.String("set", "", "Comma separated symbols replacing the current favorites")
	clearFlag := flag.Bool("clear", false, "Remove all favorites")
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

	var favorites []string
	switch {
	case *clearFlag:
		favorites, err = services.ApiService.SetFavorites(ctx, user.Id, nil)
	case *setFlag != "":
		favorites, err = services.ApiService.SetFavorites(ctx, user.Id, parseSymbols(*setFlag))
	default:
		favorites, err = services.ApiService.GetFavorites(ctx, user.Id)
	}
	if err != nil {
		common.PrintFailure("%v", err)
		os.Exit(1)
	}

	common.PrintHeader(fmt.Sprintf("FAVORITES: %s", user.Email), common.DefaultWidth)
	if len(favorites) == 0 {
		fmt.Println("No favorite cryptocurrencies")
	}
	for i, symbol := range favorites {
		fmt.Printf("%s %s\n", common.BoxPrefix(i == len(favorites)-1), symbol)
	}
	common.PrintSeparator("=", common.DefaultWidth)
}
