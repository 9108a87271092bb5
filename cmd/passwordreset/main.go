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
	"bitchain-ledger-go/internal/store"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	emailFlag := flag.String("email", "", "Issue a reset token for this email address")
	tokenFlag := flag.String("token", "", "Redeem a reset token; the new password is read from stdin")
	flag.Parse()

	if (*emailFlag == "") == (*tokenFlag == "") {
		common.PrintFailure("Exactly one of -email or -token is required")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg, false)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if *emailFlag != "" {
		token, err := services.ApiService.RequestPasswordReset(ctx, *emailFlag)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				common.PrintFailure("No active user with email %s", *emailFlag)
			} else {
				common.PrintFailure("Failed to issue reset token: %v", err)
			}
			os.Exit(1)
		}
		fmt.Println(token)
		common.PrintSuccess("Reset token valid for %s", cfg.Ledger.PasswordResetTTL)
		return
	}

	password, err := common.ReadPassword("New password: ")
	if err != nil {
		zap.L().Fatal("Unable to read password", zap.Error(err))
	}

	if err := services.ApiService.ConfirmPasswordReset(ctx, *tokenFlag, password); err != nil {
		var fieldErr *store.FieldError
		switch {
		case errors.As(err, &fieldErr):
			common.PrintFailure("%s", fieldErr.Error())
		case errors.Is(err, store.ErrInvalidResetToken):
			common.PrintFailure("Reset token is invalid or expired")
		default:
			common.PrintFailure("Failed to reset password: %v", err)
		}
		os.Exit(1)
	}
	common.PrintSuccess("Password updated")
}
