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

package api

import (
	"context"
	"fmt"

	"bitchain-ledger-go/internal/models"
	"bitchain-ledger-go/internal/store"

	"go.uber.org/zap"
)

const (
	VoteGood = "good"
	VoteBad  = "bad"
)

// GetOrCreateReview returns the counters for symbol, creating them on first
// access. Symbols longer than 10 characters fail with store.ErrSymbolTooLong.
func (s *LedgerService) GetOrCreateReview(ctx context.Context, symbol string) (*models.ReviewSummary, error) {
	if symbol == "" {
		return nil, store.MissingField("symbol")
	}

	review, err := s.store.GetOrCreateReview(ctx, symbol, s.Today())
	if err != nil {
		return nil, err
	}
	return toSummary(review), nil
}

// ApplyVote increments the good or bad counter of symbol by one
func (s *LedgerService) ApplyVote(ctx context.Context, symbol, vote string) (*models.ReviewSummary, error) {
	if symbol == "" {
		return nil, store.MissingField("symbol")
	}

	var good bool
	switch vote {
	case VoteGood:
		good = true
	case VoteBad:
		good = false
	case "":
		return nil, store.MissingField("action")
	default:
		return nil, store.InvalidField("action", fmt.Sprintf("must be %q or %q", VoteGood, VoteBad))
	}

	var review *models.CryptoReview
	err := s.store.Atomic(ctx, func(l store.Ledger) error {
		if _, err := l.GetOrCreateReview(ctx, symbol, s.Today()); err != nil {
			return err
		}
		var err error
		review, err = l.IncrementReview(ctx, symbol, good)
		return err
	})
	if err != nil {
		return nil, err
	}

	zap.L().Debug("Vote applied", zap.String("symbol", symbol), zap.String("vote", vote))
	return toSummary(review), nil
}

// ResetAllReviews zeroes every counter not yet reset today. Calling it again
// on the same day is a no-op and returns 0.
func (s *LedgerService) ResetAllReviews(ctx context.Context) (int64, error) {
	today := s.Today()
	reset, err := s.store.ResetReviews(ctx, today)
	if err != nil {
		zap.L().Error("Failed to reset reviews", zap.String("date", today), zap.Error(err))
		return 0, err
	}

	zap.L().Info("Reviews reset", zap.String("date", today), zap.Int64("reset", reset))
	return reset, nil
}

// SeedReviews makes sure a counter exists for every tracked symbol
func (s *LedgerService) SeedReviews(ctx context.Context, symbols []string) ([]models.ReviewSummary, error) {
	result := make([]models.ReviewSummary, 0, len(symbols))
	for _, symbol := range symbols {
		review, err := s.GetOrCreateReview(ctx, symbol)
		if err != nil {
			return nil, fmt.Errorf("failed to seed review for %s: %w", symbol, err)
		}
		result = append(result, *review)
	}
	return result, nil
}

func toSummary(review *models.CryptoReview) *models.ReviewSummary {
	return &models.ReviewSummary{
		Symbol: review.Symbol,
		Good:   review.Good,
		Bad:    review.Bad,
	}
}
