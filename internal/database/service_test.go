package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"bitchain-ledger-go/internal/models"
	"bitchain-ledger-go/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomic_CommitsOnSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newService(db, 2, 0)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err = service.Atomic(context.Background(), func(l store.Ledger) error { return nil })
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAtomic_RetriesThenCommits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newService(db, 2, 0)

	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	calls := 0
	err = service.Atomic(context.Background(), func(l store.Ledger) error {
		calls++
		if calls == 1 {
			return store.ErrConcurrentModification
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAtomic_GivesUpAfterMaxRetries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newService(db, 1, time.Millisecond)

	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}

	err = service.Atomic(context.Background(), func(l store.Ledger) error {
		return store.ErrConcurrentModification
	})
	assert.ErrorIs(t, err, store.ErrConcurrentModification)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAtomic_DoesNotRetryInsufficientFunds(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newService(db, 3, 0)

	mock.ExpectBegin()
	mock.ExpectRollback()

	calls := 0
	err = service.Atomic(context.Background(), func(l store.Ledger) error {
		calls++
		return &store.InsufficientFundsError{Symbol: "BTC", Available: "3", Requested: "5"}
	})
	assert.ErrorIs(t, err, store.ErrInsufficientFunds)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAtomic_BeginFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newService(db, 0, 0)

	mock.ExpectBegin().WillReturnError(errors.New("no connection"))

	err = service.Atomic(context.Background(), func(l store.Ledger) error { return nil })
	assert.ErrorContains(t, err, "failed to begin transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, isRetryable(store.ErrConcurrentModification))
	assert.True(t, isRetryable(sqlite3.Error{Code: sqlite3.ErrBusy}))
	assert.True(t, isRetryable(sqlite3.Error{Code: sqlite3.ErrLocked}))
	assert.False(t, isRetryable(sqlite3.Error{Code: sqlite3.ErrConstraint}))
	assert.False(t, isRetryable(store.ErrInsufficientFunds))
}

func TestNewService_ValidatesConfig(t *testing.T) {
	valid := models.DatabaseConfig{
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		PingTimeout:  time.Second,
	}

	tests := []struct {
		name   string
		mutate func(*models.DatabaseConfig)
	}{
		{"empty path", func(c *models.DatabaseConfig) { c.Path = "" }},
		{"zero open conns", func(c *models.DatabaseConfig) { c.MaxOpenConns = 0 }},
		{"negative idle conns", func(c *models.DatabaseConfig) { c.MaxIdleConns = -1 }},
		{"zero ping timeout", func(c *models.DatabaseConfig) { c.PingTimeout = 0 }},
		{"negative retries", func(c *models.DatabaseConfig) { c.MaxRetries = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			_, err := NewService(context.Background(), cfg)
			assert.Error(t, err)
		})
	}

	service, err := NewService(context.Background(), valid)
	require.NoError(t, err)
	defer service.Close()
	assert.NoError(t, service.Ping(context.Background()))
}
