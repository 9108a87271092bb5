package api

import (
	"context"
	"strings"
	"testing"
	"time"

	"bitchain-ledger-go/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateReview_SymbolTooLong(t *testing.T) {
	service, _ := setupTestService(t)

	_, err := service.GetOrCreateReview(context.Background(), "ELEVENCHARS")
	assert.ErrorIs(t, err, store.ErrSymbolTooLong)

	review, err := service.GetOrCreateReview(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Zero(t, review.Good)
	assert.Zero(t, review.Bad)
}

func TestApplyVote(t *testing.T) {
	service, _ := setupTestService(t)
	ctx := context.Background()

	_, err := service.ApplyVote(ctx, "ETH", VoteGood)
	require.NoError(t, err)
	review, err := service.ApplyVote(ctx, "ETH", VoteGood)
	require.NoError(t, err)
	assert.Equal(t, int64(2), review.Good)

	review, err = service.ApplyVote(ctx, "ETH", VoteBad)
	require.NoError(t, err)
	assert.Equal(t, int64(1), review.Bad)

	_, err = service.ApplyVote(ctx, "ETH", "")
	assert.ErrorIs(t, err, store.ErrMissingField)

	_, err = service.ApplyVote(ctx, "ETH", "meh")
	assert.ErrorIs(t, err, store.ErrInvalidField)
}

func TestApplyVote_EmptySymbolCreatesNoRow(t *testing.T) {
	service, clock := setupTestService(t)
	ctx := context.Background()

	_, err := service.ApplyVote(ctx, "", VoteGood)
	require.ErrorIs(t, err, store.ErrMissingField)

	var fieldErr *store.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "symbol", fieldErr.Field)

	// Any stored counter would be picked up by tomorrow's reset
	clock.now = clock.now.Add(24 * time.Hour)
	reset, err := service.ResetAllReviews(ctx)
	require.NoError(t, err)
	assert.Zero(t, reset)
}

func TestApplyVote_MultibyteSymbol(t *testing.T) {
	service, _ := setupTestService(t)
	ctx := context.Background()

	review, err := service.ApplyVote(ctx, "ÅÅÅÅÅÅ", VoteGood)
	require.NoError(t, err)
	assert.Equal(t, "ÅÅÅÅÅÅ", review.Symbol)
	assert.Equal(t, int64(1), review.Good)

	review, err = service.ApplyVote(ctx, strings.Repeat("Å", 10), VoteBad)
	require.NoError(t, err)
	assert.Equal(t, int64(1), review.Bad)

	_, err = service.ApplyVote(ctx, strings.Repeat("Å", 11), VoteGood)
	assert.ErrorIs(t, err, store.ErrSymbolTooLong)
}

func TestResetAllReviews_IdempotentPerDay(t *testing.T) {
	service, clock := setupTestService(t)
	ctx := context.Background()

	_, err := service.ApplyVote(ctx, "BTC", VoteGood)
	require.NoError(t, err)

	// Counters created today are already considered reset for today
	reset, err := service.ResetAllReviews(ctx)
	require.NoError(t, err)
	assert.Zero(t, reset)

	clock.now = clock.now.Add(24 * time.Hour)
	reset, err = service.ResetAllReviews(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reset)

	_, err = service.ApplyVote(ctx, "BTC", VoteBad)
	require.NoError(t, err)

	reset, err = service.ResetAllReviews(ctx)
	require.NoError(t, err)
	assert.Zero(t, reset)

	review, err := service.GetOrCreateReview(ctx, "BTC")
	require.NoError(t, err)
	assert.Zero(t, review.Good)
	assert.Equal(t, int64(1), review.Bad)
}

func TestSeedReviews(t *testing.T) {
	service, _ := setupTestService(t)

	reviews, err := service.SeedReviews(context.Background(), []string{"BTC", "ETH", "SOL"})
	require.NoError(t, err)
	assert.Len(t, reviews, 3)

	_, err = service.SeedReviews(context.Background(), []string{"BTC", "NOTASYMBOL1"})
	assert.ErrorIs(t, err, store.ErrSymbolTooLong)
}
