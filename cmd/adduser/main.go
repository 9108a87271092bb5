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

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	// Parse command line flags
	nameFlag := flag.String("name", "", "User's full name (required)")
	emailFlag := flag.String("email", "", "User's email address (required)")
	nickFlag := flag.String("nick", "", "Unique nickname (required)")
	dobFlag := flag.String("dob", "", "Date of birth, YYYY-MM-DD (required)")
	nationalIdFlag := flag.String("national-id", "", "11 digit national id (required)")
	flag.Parse()

	password, err := common.ReadPassword("Password: ")
	if err != nil {
		zap.L().Fatal("Unable to read password", zap.Error(err))
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	zap.L().Info("Initializing services")
	services, err := common.InitializeServices(ctx, cfg, false)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	profile, err := services.ApiService.SignUp(ctx, models.SignUpRequest{
		Email:       *emailFlag,
		Password:    password,
		FullName:    *nameFlag,
		NickName:    *nickFlag,
		DateOfBirth: *dobFlag,
		NationalId:  *nationalIdFlag,
	})
	if err != nil {
		var fieldErr *store.FieldError
		var conflict *store.ConflictError
		switch {
		case errors.As(err, &fieldErr):
			common.PrintFailure("%s", fieldErr.Error())
			flag.Usage()
		case errors.As(err, &conflict):
			common.PrintFailure("A user with this %s already exists", conflict.Field)
		default:
			zap.L().Error("Failed to create user", zap.Error(err))
			common.PrintFailure("Failed to create user: %v", err)
		}
		os.Exit(1)
	}

	wallet, err := services.DbService.GetWalletByUser(ctx, profile.Id)
	if err != nil {
		zap.L().Fatal("User created without wallet", zap.String("user_id", profile.Id), zap.Error(err))
	}

	common.PrintHeader("USER CREATED", common.DefaultWidth)
	fmt.Printf("ID:        %s\n", profile.Id)
	fmt.Printf("Name:      %s\n", profile.FullName)
	fmt.Printf("Nickname:  %s\n", profile.NickName)
	fmt.Printf("Email:     %s\n", profile.Email)
	fmt.Printf("Wallet:    %s\n", wallet.Id)
	common.PrintSeparator("=", common.DefaultWidth)
	common.PrintSuccess("User and wallet created successfully")

	zap.L().Info("User created successfully",
		zap.String("id", profile.Id),
		zap.String("wallet_id", wallet.Id))
}
