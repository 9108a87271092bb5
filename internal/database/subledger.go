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

	"bitchain-ledger-go/internal/store"
)

// Compile-time check: *ledger must satisfy store.Ledger.
var _ store.Ledger = (*ledger)(nil)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ledger runs record operations against a connection pool or a single
// transaction, whichever it was built with
type ledger struct {
	q querier
}

func newLedger(q querier) *ledger {
	return &ledger{q: q}
}

func initLedgerSchema(ctx context.Context, q querier) error {
	schema := `
	-- Wallets (one per user)
	CREATE TABLE IF NOT EXISTS wallets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP NOT NULL
	);

	-- Wallet Balances (Current State - Hot Data)
	CREATE TABLE IF NOT EXISTS wallet_balances (
		id TEXT PRIMARY KEY,
		wallet_id TEXT NOT NULL REFERENCES wallets(id) ON DELETE CASCADE,
		symbol TEXT NOT NULL CHECK (length(symbol) <= 10),
		amount TEXT NOT NULL DEFAULT '0',
		last_adjustment_id TEXT,
		version INTEGER NOT NULL DEFAULT 1,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE(wallet_id, symbol)
	);

	-- Balance Adjustments (Audit Trail)
	CREATE TABLE IF NOT EXISTS balance_adjustments (
		id TEXT PRIMARY KEY,
		wallet_id TEXT NOT NULL REFERENCES wallets(id) ON DELETE CASCADE,
		symbol TEXT NOT NULL,
		delta TEXT NOT NULL,
		balance_before TEXT NOT NULL,
		balance_after TEXT NOT NULL,
		reference TEXT,
		created_at TIMESTAMP NOT NULL
	);

	-- Transactions (immutable, append only)
	CREATE TABLE IF NOT EXISTS transactions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		wallet_id TEXT NOT NULL REFERENCES wallets(id) ON DELETE CASCADE,
		transaction_type TEXT NOT NULL CHECK (length(transaction_type) <= 10),
		amount INTEGER NOT NULL,
		currency TEXT NOT NULL CHECK (length(currency) <= 10),
		price_usd TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_wallet_balances_wallet_id ON wallet_balances(wallet_id);
	CREATE INDEX IF NOT EXISTS idx_balance_adjustments_wallet_symbol ON balance_adjustments(wallet_id, symbol);
	CREATE INDEX IF NOT EXISTS idx_transactions_wallet_id ON transactions(wallet_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at);
	`

	_, err := q.ExecContext(ctx, schema)
	return err
}
