package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents an account holder. Credentials and role flags live on the
// same row; authorization decisions are made by the api layer.
type User struct {
	Id           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	FullName     string    `db:"full_name"`
	NickName     string    `db:"nick_name"`
	DateOfBirth  string    `db:"date_of_birth"`
	NationalId   string    `db:"national_id"`
	ImagePath    string    `db:"image_path"`
	IsActive     bool      `db:"is_active"`
	IsStaff      bool      `db:"is_staff"`
	IsSuperuser  bool      `db:"is_superuser"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Wallet is owned by exactly one user
type Wallet struct {
	Id        string    `db:"id"`
	UserId    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

// WalletBalance represents current holdings of one symbol (hot data)
type WalletBalance struct {
	Id               string          `db:"id"`
	WalletId         string          `db:"wallet_id"`
	Symbol           string          `db:"symbol"`
	Amount           decimal.Decimal `db:"amount"`
	LastAdjustmentId string          `db:"last_adjustment_id"`
	Version          int64           `db:"version"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

// BalanceAdjustment is the audit trail entry written for every balance change
type BalanceAdjustment struct {
	Id            string          `db:"id"`
	WalletId      string          `db:"wallet_id"`
	Symbol        string          `db:"symbol"`
	Delta         decimal.Decimal `db:"delta"`
	BalanceBefore decimal.Decimal `db:"balance_before"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	Reference     string          `db:"reference"`
	CreatedAt     time.Time       `db:"created_at"`
}

// Transaction represents an immutable buy/sell record (cold data)
type Transaction struct {
	Seq             int64           `db:"seq"`
	Id              string          `db:"id"`
	WalletId        string          `db:"wallet_id"`
	TransactionType string          `db:"transaction_type"`
	Amount          int64           `db:"amount"`
	Currency        string          `db:"currency"`
	PriceUsd        decimal.Decimal `db:"price_usd"`
	CreatedAt       time.Time       `db:"created_at"`
}

// FavoriteCryptocurrency is one member of a user's favorites set
type FavoriteCryptocurrency struct {
	Id     string `db:"id"`
	UserId string `db:"user_id"`
	Symbol string `db:"symbol"`
}

// CryptoReview holds the crowd-sourced daily counters for a symbol
type CryptoReview struct {
	Symbol        string `db:"symbol"`
	Good          int64  `db:"good"`
	Bad           int64  `db:"bad"`
	LastResetDate string `db:"last_reset_date"`
}

// PasswordResetToken is a single-use credential for setting a new password.
// UsedAt stays nil until the token is redeemed.
type PasswordResetToken struct {
	Token     string     `db:"token"`
	UserId    string     `db:"user_id"`
	CreatedAt time.Time  `db:"created_at"`
	ExpiresAt time.Time  `db:"expires_at"`
	UsedAt    *time.Time `db:"used_at"`
}
