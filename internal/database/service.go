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

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bitchain-ledger-go/internal/models"
	"bitchain-ledger-go/internal/store"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.LedgerStore.
var _ store.LedgerStore = (*Service)(nil)

type Service struct {
	*ledger
	db           *sql.DB
	maxRetries   int
	retryBackoff time.Duration
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max retries cannot be negative, got %d", cfg.MaxRetries)
	}

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000&_foreign_keys=on&_txlock=immediate&_busy_timeout=%d",
		cfg.Path, cfg.BusyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// Set connection timeouts and limits
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test connection with timeout
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			zap.L().Warn("Failed to close database after ping failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := newService(db, cfg.MaxRetries, cfg.RetryBackoff)
	if err := service.initSchema(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			zap.L().Warn("Failed to close database after schema failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Database service initialized successfully")
	return service, nil
}

func newService(db *sql.DB, maxRetries int, retryBackoff time.Duration) *Service {
	return &Service{
		ledger:       newLedger(db),
		db:           db,
		maxRetries:   maxRetries,
		retryBackoff: retryBackoff,
	}
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Service) initSchema(ctx context.Context) error {
	schema := `
	-- Create users table
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		full_name TEXT NOT NULL,
		nick_name TEXT NOT NULL UNIQUE,
		date_of_birth TEXT NOT NULL,
		national_id TEXT NOT NULL UNIQUE,
		image_path TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		is_staff BOOLEAN NOT NULL DEFAULT 0,
		is_superuser BOOLEAN NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	-- Create index on active users
	CREATE INDEX IF NOT EXISTS idx_users_active ON users(is_active);

	-- Favorite cryptocurrencies, replaced as a whole set
	CREATE TABLE IF NOT EXISTS favorite_cryptocurrencies (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		symbol TEXT NOT NULL CHECK (length(symbol) <= 10),
		UNIQUE(user_id, symbol)
	);

	-- Daily crowd-sourced review counters
	CREATE TABLE IF NOT EXISTS crypto_reviews (
		symbol TEXT PRIMARY KEY CHECK (length(symbol) <= 10),
		good INTEGER NOT NULL DEFAULT 0,
		bad INTEGER NOT NULL DEFAULT 0,
		last_reset_date TEXT NOT NULL
	);

	-- Single-use password reset tokens
	CREATE TABLE IF NOT EXISTS password_reset_tokens (
		token TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP NOT NULL,
		expires_at TIMESTAMP NOT NULL,
		used_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_password_reset_tokens_user ON password_reset_tokens(user_id);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return err
	}

	// Wallet, balance and transaction tables
	if err := initLedgerSchema(ctx, s.db); err != nil {
		return fmt.Errorf("unable to initialize ledger schema: %w", err)
	}
	return nil
}

// Atomic runs fn in one database transaction. The transaction is retried when
// fn reports a lost optimistic update or SQLite reports the database busy.
func (s *Service) Atomic(ctx context.Context, fn func(store.Ledger) error) error {
	var err error
	attempts := s.maxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		err = s.runInTx(ctx, fn)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}

		zap.L().Warn("Ledger unit conflicted, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(err))

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * s.retryBackoff):
		}
	}
	return fmt.Errorf("ledger unit failed after %d attempts: %w", attempts, err)
}

func (s *Service) runInTx(ctx context.Context, fn func(store.Ledger) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(newLedger(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isRetryable(err error) bool {
	if errors.Is(err, store.ErrConcurrentModification) {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

// Multi-statement operations always run in their own unit when called on the
// pool rather than on a transaction-bound ledger.

func (s *Service) AdjustBalance(ctx context.Context, params store.AdjustBalanceParams) (*models.WalletBalance, error) {
	var balance *models.WalletBalance
	err := s.Atomic(ctx, func(l store.Ledger) error {
		var err error
		balance, err = l.AdjustBalance(ctx, params)
		return err
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

func (s *Service) ReplaceFavorites(ctx context.Context, userId string, symbols []string) ([]string, error) {
	var favorites []string
	err := s.Atomic(ctx, func(l store.Ledger) error {
		var err error
		favorites, err = l.ReplaceFavorites(ctx, userId, symbols)
		return err
	})
	if err != nil {
		return nil, err
	}
	return favorites, nil
}
