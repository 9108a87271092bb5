package store

import (
	"context"
	"time"

	"bitchain-ledger-go/internal/models"

	"github.com/shopspring/decimal"
)

// CreateUserParams contains the parameters for inserting a user row.
type CreateUserParams struct {
	Id           string
	Email        string
	PasswordHash string
	FullName     string
	NickName     string
	DateOfBirth  string
	NationalId   string
	ImagePath    string
}

// UpdateUserParams holds optional profile changes; nil fields are left as-is.
type UpdateUserParams struct {
	FullName     *string
	NickName     *string
	PasswordHash *string
	ImagePath    *string
}

// AdjustBalanceParams describes a single signed balance change.
type AdjustBalanceParams struct {
	WalletId  string
	Symbol    string
	Delta     decimal.Decimal
	Reference string // free text stored on the audit row, e.g. the transaction id
}

// InsertTransactionParams contains the parameters for appending a transaction.
type InsertTransactionParams struct {
	WalletId        string
	TransactionType string
	Amount          int64
	Currency        string
	PriceUsd        decimal.Decimal
}

// CreatePasswordResetTokenParams contains the parameters for issuing a reset token.
type CreatePasswordResetTokenParams struct {
	Token     string
	UserId    string
	ExpiresAt time.Time
}

// Ledger is the set of record operations a backend exposes. Implementations
// bound to a database transaction run every call inside that transaction.
type Ledger interface {
	// --- Users ---
	CreateUser(ctx context.Context, params CreateUserParams) (*models.User, error)
	GetUserById(ctx context.Context, userId string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, userId string, params UpdateUserParams) (*models.User, error)

	// --- Password reset ---
	CreatePasswordResetToken(ctx context.Context, params CreatePasswordResetTokenParams) (*models.PasswordResetToken, error)
	GetPasswordResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error)
	ConsumePasswordResetTokens(ctx context.Context, userId string, usedAt time.Time) (int64, error)

	// --- Wallets & balances ---
	GetOrCreateWallet(ctx context.Context, userId string) (*models.Wallet, error)
	GetWalletByUser(ctx context.Context, userId string) (*models.Wallet, error)
	AdjustBalance(ctx context.Context, params AdjustBalanceParams) (*models.WalletBalance, error)
	GetBalance(ctx context.Context, walletId, symbol string) (*models.WalletBalance, error)
	GetAllBalances(ctx context.Context, walletId string) ([]models.WalletBalance, error)
	ReconcileBalance(ctx context.Context, walletId, symbol string) error

	// --- Transactions ---
	InsertTransaction(ctx context.Context, params InsertTransactionParams) (*models.Transaction, error)
	GetTransaction(ctx context.Context, walletId, transactionId string) (*models.Transaction, error)
	GetTransactionHistory(ctx context.Context, walletId string, limit, offset int) ([]models.Transaction, error)
	CountTransactions(ctx context.Context, walletId string) (int64, error)

	// --- Favorites ---
	ReplaceFavorites(ctx context.Context, userId string, symbols []string) ([]string, error)
	GetFavorites(ctx context.Context, userId string) ([]string, error)

	// --- Reviews ---
	GetOrCreateReview(ctx context.Context, symbol, today string) (*models.CryptoReview, error)
	IncrementReview(ctx context.Context, symbol string, good bool) (*models.CryptoReview, error)
	ResetReviews(ctx context.Context, today string) (int64, error)
}

// LedgerStore defines the contract that every backend must satisfy.
type LedgerStore interface {
	Ledger

	// Atomic runs fn inside one serializable unit. fn must only use the
	// Ledger it is handed. Conflicting updates are retried by the store.
	Atomic(ctx context.Context, fn func(Ledger) error) error

	// --- Lifecycle ---
	Ping(ctx context.Context) error
	Close()
}
