package api

import (
	"context"
	"testing"
	"time"

	"bitchain-ledger-go/internal/database"
	"bitchain-ledger-go/internal/models"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func setupTestService(t *testing.T) (*LedgerService, *fixedClock) {
	t.Helper()

	db, err := database.NewService(context.Background(), models.DatabaseConfig{
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		PingTimeout:  time.Second,
		MaxRetries:   2,
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	clock := &fixedClock{now: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
	service := NewLedgerService(db, models.LedgerConfig{BcryptCost: bcrypt.MinCost},
		WithClock(clock.Now),
		WithLocation(time.UTC))
	return service, clock
}

func validSignUp() models.SignUpRequest {
	return models.SignUpRequest{
		Email:       "Satoshi@Example.COM",
		Password:    "correct horse",
		FullName:    "Satoshi Nakamoto",
		NickName:    "satoshi",
		DateOfBirth: "1975-04-05",
		NationalId:  "75040500000",
	}
}

func signUp(t *testing.T, service *LedgerService) *models.UserProfile {
	t.Helper()
	profile, err := service.SignUp(context.Background(), validSignUp())
	require.NoError(t, err)
	return profile
}

func TestHealthCheck(t *testing.T) {
	service, _ := setupTestService(t)
	require.NoError(t, service.HealthCheck(context.Background()))
}

func TestToday_UsesLocation(t *testing.T) {
	service, clock := setupTestService(t)
	clock.now = time.Date(2026, 10, 19, 23, 30, 0, 0, time.UTC)

	tokyo := time.FixedZone("JST", 9*60*60)
	WithLocation(tokyo)(service)

	require.Equal(t, "2026-10-20", service.Today())
}
