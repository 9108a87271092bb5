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
	"os"
	"os/signal"
	"syscall"
	"time"

	"bitchain-ledger-go/internal/common"
	"bitchain-ledger-go/internal/config"
	"bitchain-ledger-go/internal/scheduler"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg, true)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	// Make sure every tracked symbol has a counter before the first reset
	if symbols, err := common.LoadSymbols(cfg.Scheduler.SymbolsFile); err != nil {
		logger.Warn("No symbols seeded", zap.String("file", cfg.Scheduler.SymbolsFile), zap.Error(err))
	} else if _, err := services.ApiService.SeedReviews(ctx, symbols); err != nil {
		logger.Fatal("Failed to seed reviews", zap.Error(err))
	}

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		logger.Fatal("Invalid reset time zone", zap.String("timezone", cfg.Scheduler.Timezone), zap.Error(err))
	}

	resetScheduler := scheduler.NewReviewResetScheduler(scheduler.ReviewResetSchedulerConfig{
		Resetter: services.ApiService,
		Guard:    services.ResetGuard,
		Location: location,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		resetScheduler.Start(gctx)
		<-resetScheduler.Done()
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := services.ApiService.HealthCheck(gctx); err != nil {
					logger.Warn("Health check failed", zap.Error(err))
				}
			}
		}
	})

	logger.Info("Review resetter running, press Ctrl+C to stop")

	if err := g.Wait(); err != nil {
		logger.Error("Resetter stopped with error", zap.Error(err))
	}
	logger.Info("Review resetter stopped")
}
