package database

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"bitchain-ledger-go/internal/models"
	"bitchain-ledger-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

func setupBalanceTestDB(t *testing.T) (*Service, *models.Wallet, func()) {
	service, cleanup := setupTestDb(t)

	wallet, err := service.GetOrCreateWallet(context.Background(), "user1")
	if err != nil {
		cleanup()
		t.Fatalf("Failed to create test wallet: %v", err)
	}

	return service, wallet, cleanup
}

func adjust(t *testing.T, service *Service, walletId, symbol, delta string) *models.WalletBalance {
	t.Helper()
	balance, err := service.AdjustBalance(context.Background(), store.AdjustBalanceParams{
		WalletId: walletId,
		Symbol:   symbol,
		Delta:    decimal.RequireFromString(delta),
	})
	if err != nil {
		t.Fatalf("AdjustBalance %s %s failed: %v", symbol, delta, err)
	}
	return balance
}

func TestGetOrCreateWallet_Idempotent(t *testing.T) {
	service, wallet, cleanup := setupBalanceTestDB(t)
	defer cleanup()

	again, err := service.GetOrCreateWallet(context.Background(), "user1")
	if err != nil {
		t.Fatalf("GetOrCreateWallet failed: %v", err)
	}
	if again.Id != wallet.Id {
		t.Errorf("Expected wallet %s, got %s", wallet.Id, again.Id)
	}
}

func TestGetBalance_NoBalance(t *testing.T) {
	service, wallet, cleanup := setupBalanceTestDB(t)
	defer cleanup()

	balance, err := service.GetBalance(context.Background(), wallet.Id, "BTC")
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}

	if !balance.Amount.Equal(decimal.Zero) {
		t.Errorf("Expected balance 0, got %s", balance.Amount.String())
	}
}

func TestAdjustBalance_CreatesRowOnFirstReference(t *testing.T) {
	service, wallet, cleanup := setupBalanceTestDB(t)
	defer cleanup()

	balance := adjust(t, service, wallet.Id, "BTC", "5")
	if !balance.Amount.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Expected balance 5, got %s", balance.Amount.String())
	}
	if balance.Version != 2 {
		t.Errorf("Expected version 2 after first adjustment, got %d", balance.Version)
	}

	stored, err := service.GetBalance(context.Background(), wallet.Id, "BTC")
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !stored.Amount.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Expected stored balance 5, got %s", stored.Amount.String())
	}
}

func TestAdjustBalance_InsufficientFunds(t *testing.T) {
	service, wallet, cleanup := setupBalanceTestDB(t)
	defer cleanup()

	ctx := context.Background()
	adjust(t, service, wallet.Id, "BTC", "3")

	_, err := service.AdjustBalance(ctx, store.AdjustBalanceParams{
		WalletId: wallet.Id,
		Symbol:   "BTC",
		Delta:    decimal.NewFromInt(-5),
	})
	if !errors.Is(err, store.ErrInsufficientFunds) {
		t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
	}

	balance, err := service.GetBalance(ctx, wallet.Id, "BTC")
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Amount.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Expected balance to stay 3, got %s", balance.Amount.String())
	}
}

func TestAdjustBalance_DrainToZero(t *testing.T) {
	service, wallet, cleanup := setupBalanceTestDB(t)
	defer cleanup()

	adjust(t, service, wallet.Id, "ETH", "1.25")
	balance := adjust(t, service, wallet.Id, "ETH", "-1.25")
	if !balance.Amount.IsZero() {
		t.Errorf("Expected zero balance, got %s", balance.Amount.String())
	}

	balances, err := service.GetAllBalances(context.Background(), wallet.Id)
	if err != nil {
		t.Fatalf("GetAllBalances failed: %v", err)
	}
	if len(balances) != 0 {
		t.Errorf("Expected zero balances to be omitted, got %d", len(balances))
	}
}

func TestGetAllBalances(t *testing.T) {
	service, wallet, cleanup := setupBalanceTestDB(t)
	defer cleanup()

	adjust(t, service, wallet.Id, "BTC", "1.0")
	adjust(t, service, wallet.Id, "ETH", "10.0")

	balances, err := service.GetAllBalances(context.Background(), wallet.Id)
	if err != nil {
		t.Fatalf("GetAllBalances failed: %v", err)
	}

	if len(balances) != 2 {
		t.Fatalf("Expected 2 balances, got %d", len(balances))
	}

	found := make(map[string]decimal.Decimal)
	for _, balance := range balances {
		found[balance.Symbol] = balance.Amount
	}

	expectedBTC := decimal.NewFromFloat(1.0)
	if !found["BTC"].Equal(expectedBTC) {
		t.Errorf("Expected BTC balance %s, got %s", expectedBTC.String(), found["BTC"].String())
	}
	expectedETH := decimal.NewFromFloat(10.0)
	if !found["ETH"].Equal(expectedETH) {
		t.Errorf("Expected ETH balance %s, got %s", expectedETH.String(), found["ETH"].String())
	}
}

func TestReconcileBalance(t *testing.T) {
	service, wallet, cleanup := setupBalanceTestDB(t)
	defer cleanup()

	adjust(t, service, wallet.Id, "BTC", "0.1")
	adjust(t, service, wallet.Id, "BTC", "0.2")
	adjust(t, service, wallet.Id, "BTC", "-0.05")

	if err := service.ReconcileBalance(context.Background(), wallet.Id, "BTC"); err != nil {
		t.Errorf("ReconcileBalance failed: %v", err)
	}

	// Tamper with the hot balance; reconciliation must notice
	if _, err := service.db.Exec(`UPDATE wallet_balances SET amount = '9' WHERE wallet_id = ? AND symbol = 'BTC'`, wallet.Id); err != nil {
		t.Fatalf("Failed to tamper balance: %v", err)
	}
	if err := service.ReconcileBalance(context.Background(), wallet.Id, "BTC"); err == nil {
		t.Errorf("Expected reconciliation mismatch")
	}
}

func TestAdjustBalance_ConcurrentDebitsOnFile(t *testing.T) {
	ctx := context.Background()
	service, err := NewService(ctx, models.DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "ledger.db"),
		MaxOpenConns: 8,
		MaxIdleConns: 8,
		PingTimeout:  time.Second,
		BusyTimeout:  5 * time.Second,
		MaxRetries:   5,
		RetryBackoff: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	defer service.Close()

	if _, err := service.CreateUser(ctx, newUserParams("u1", "test@example.com", "tester", "90010100000")); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	wallet, err := service.GetOrCreateWallet(ctx, "u1")
	if err != nil {
		t.Fatalf("GetOrCreateWallet failed: %v", err)
	}
	adjust(t, service, wallet.Id, "BTC", "3")

	const debits = 8
	var wg sync.WaitGroup
	errs := make([]error, debits)
	start := make(chan struct{})
	for i := 0; i < debits; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = service.AdjustBalance(ctx, store.AdjustBalanceParams{
				WalletId: wallet.Id,
				Symbol:   "BTC",
				Delta:    decimal.NewFromInt(-2),
			})
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case !errors.Is(err, store.ErrInsufficientFunds):
			t.Errorf("Expected ErrInsufficientFunds, got %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("Expected exactly one debit to succeed, got %d", succeeded)
	}

	balance, err := service.GetBalance(ctx, wallet.Id, "BTC")
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Amount.Equal(decimal.NewFromInt(1)) {
		t.Errorf("Expected balance 1, got %s", balance.Amount)
	}
}
