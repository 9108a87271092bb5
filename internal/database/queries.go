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

const (
	// User queries
	queryInsertUser = `
		INSERT INTO users (
			id, email, password_hash, full_name, nick_name, date_of_birth, national_id,
			image_path, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetActiveUsers = `
		SELECT id, email, password_hash, full_name, nick_name, date_of_birth, national_id,
		       image_path, is_active, is_staff, is_superuser, created_at, updated_at
		FROM users
		WHERE is_active = 1
		ORDER BY created_at`

	queryGetUserById = `
		SELECT id, email, password_hash, full_name, nick_name, date_of_birth, national_id,
		       image_path, is_active, is_staff, is_superuser, created_at, updated_at
		FROM users
		WHERE id = ?`

	queryGetUserByEmail = `
		SELECT id, email, password_hash, full_name, nick_name, date_of_birth, national_id,
		       image_path, is_active, is_staff, is_superuser, created_at, updated_at
		FROM users
		WHERE email = ?`

	queryUpdateUser = `
		UPDATE users
		SET full_name = COALESCE(?, full_name),
		    nick_name = COALESCE(?, nick_name),
		    password_hash = COALESCE(?, password_hash),
		    image_path = COALESCE(?, image_path),
		    updated_at = ?
		WHERE id = ?`

	// Wallet queries
	queryInsertWallet = `
		INSERT OR IGNORE INTO wallets (id, user_id, created_at) VALUES (?, ?, ?)`

	queryGetWalletByUser = `
		SELECT id, user_id, created_at
		FROM wallets
		WHERE user_id = ?`

	// Balance queries
	queryInsertWalletBalance = `
		INSERT OR IGNORE INTO wallet_balances (id, wallet_id, symbol, amount, version, updated_at)
		VALUES (?, ?, ?, '0', 1, ?)`

	queryGetWalletBalance = `
		SELECT id, wallet_id, symbol, amount, COALESCE(last_adjustment_id, ''), version, updated_at
		FROM wallet_balances
		WHERE wallet_id = ? AND symbol = ?`

	queryGetAllWalletBalances = `
		SELECT id, wallet_id, symbol, amount, COALESCE(last_adjustment_id, ''), version, updated_at
		FROM wallet_balances
		WHERE wallet_id = ? AND amount != '0'
		ORDER BY symbol`

	queryUpdateWalletBalance = `
		UPDATE wallet_balances
		SET amount = ?, last_adjustment_id = ?, version = version + 1, updated_at = ?
		WHERE wallet_id = ? AND symbol = ? AND version = ?`

	queryInsertBalanceAdjustment = `
		INSERT INTO balance_adjustments (
			id, wallet_id, symbol, delta, balance_before, balance_after, reference, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetAdjustmentDeltas = `
		SELECT delta
		FROM balance_adjustments
		WHERE wallet_id = ? AND symbol = ?`

	// Transaction queries
	queryInsertTransaction = `
		INSERT INTO transactions (id, wallet_id, transaction_type, amount, currency, price_usd, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryGetTransaction = `
		SELECT seq, id, wallet_id, transaction_type, amount, currency, price_usd, created_at
		FROM transactions
		WHERE wallet_id = ? AND id = ?`

	queryGetTransactionHistory = `
		SELECT seq, id, wallet_id, transaction_type, amount, currency, price_usd, created_at
		FROM transactions
		WHERE wallet_id = ?
		ORDER BY seq DESC
		LIMIT ? OFFSET ?`

	queryCountTransactions = `
		SELECT COUNT(*) FROM transactions WHERE wallet_id = ?`

	// Favorite queries
	queryDeleteFavorites = `
		DELETE FROM favorite_cryptocurrencies WHERE user_id = ?`

	queryInsertFavorite = `
		INSERT OR IGNORE INTO favorite_cryptocurrencies (id, user_id, symbol) VALUES (?, ?, ?)`

	queryGetFavorites = `
		SELECT symbol
		FROM favorite_cryptocurrencies
		WHERE user_id = ?
		ORDER BY symbol`

	// Review queries
	queryGetReview = `
		SELECT symbol, good, bad, last_reset_date
		FROM crypto_reviews
		WHERE symbol = ?`

	queryInsertReview = `
		INSERT OR IGNORE INTO crypto_reviews (symbol, good, bad, last_reset_date) VALUES (?, 0, 0, ?)`

	queryIncrementGood = `
		UPDATE crypto_reviews SET good = good + 1 WHERE symbol = ?`

	queryIncrementBad = `
		UPDATE crypto_reviews SET bad = bad + 1 WHERE symbol = ?`

	queryResetReviews = `
		UPDATE crypto_reviews
		SET good = 0, bad = 0, last_reset_date = ?
		WHERE last_reset_date != ?`

	// Password reset tokens
	queryInsertPasswordResetToken = `
		INSERT INTO password_reset_tokens (token, user_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)`

	queryGetPasswordResetToken = `
		SELECT token, user_id, created_at, expires_at, used_at
		FROM password_reset_tokens
		WHERE token = ?`

	queryConsumePasswordResetTokens = `
		UPDATE password_reset_tokens
		SET used_at = ?
		WHERE user_id = ? AND used_at IS NULL`
)
