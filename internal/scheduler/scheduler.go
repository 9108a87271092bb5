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

package scheduler

import (
	"context"
	"time"

	"bitchain-ledger-go/internal/coordination"

	"go.uber.org/zap"
)

// Resetter is the ledger operation the scheduler drives
type Resetter interface {
	ResetAllReviews(ctx context.Context) (int64, error)
	Today() string
}

// ReviewResetSchedulerConfig contains configuration for ReviewResetScheduler
type ReviewResetSchedulerConfig struct {
	Resetter Resetter
	Guard    coordination.ResetGuard
	Location *time.Location
}

// ReviewResetScheduler resets review counters once at start-up and again at
// every local midnight.
type ReviewResetScheduler struct {
	resetter Resetter
	guard    coordination.ResetGuard
	location *time.Location

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	// Control channels
	stopChan chan struct{}
	doneChan chan struct{}
}

func NewReviewResetScheduler(cfg ReviewResetSchedulerConfig) *ReviewResetScheduler {
	guard := cfg.Guard
	if guard == nil {
		guard = coordination.NoopResetGuard{}
	}
	location := cfg.Location
	if location == nil {
		location = time.Local
	}

	return &ReviewResetScheduler{
		resetter: cfg.Resetter,
		guard:    guard,
		location: location,
		now:      time.Now,
		after:    time.After,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start runs the start-up reset and launches the midnight loop
func (s *ReviewResetScheduler) Start(ctx context.Context) {
	zap.L().Info("Starting review reset scheduler", zap.String("timezone", s.location.String()))

	s.runReset(ctx)

	go s.resetLoop(ctx)
}

// Stop gracefully stops the scheduler
func (s *ReviewResetScheduler) Stop() {
	zap.L().Info("Stopping review reset scheduler")
	close(s.stopChan)
	<-s.doneChan
	zap.L().Info("Review reset scheduler stopped")
}

// Done is closed once the loop has exited
func (s *ReviewResetScheduler) Done() <-chan struct{} {
	return s.doneChan
}

func (s *ReviewResetScheduler) resetLoop(ctx context.Context) {
	defer close(s.doneChan)

	for {
		now := s.now()
		wait := nextMidnight(now, s.location).Sub(now)
		zap.L().Debug("Next review reset scheduled", zap.Duration("in", wait))

		select {
		case <-s.after(wait):
			s.runReset(ctx)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *ReviewResetScheduler) runReset(ctx context.Context) {
	today := s.resetter.Today()

	acquired, err := s.guard.Acquire(ctx, today)
	if err != nil {
		// the reset is idempotent per day, so run it anyway
		zap.L().Warn("Reset guard unavailable, resetting locally",
			zap.String("date", today),
			zap.Error(err))
	} else if !acquired {
		zap.L().Info("Review reset already claimed by another process", zap.String("date", today))
		return
	}

	reset, err := s.resetter.ResetAllReviews(ctx)
	if err != nil {
		zap.L().Error("Review reset failed", zap.String("date", today), zap.Error(err))
		if acquired {
			// hand the date back so a peer or the next run can retry it
			if releaseErr := s.guard.Release(ctx, today); releaseErr != nil {
				zap.L().Warn("Failed to release reset guard",
					zap.String("date", today),
					zap.Error(releaseErr))
			}
		}
		return
	}
	zap.L().Info("Review reset completed", zap.String("date", today), zap.Int64("reset", reset))
}

// nextMidnight returns the first midnight in loc strictly after now
func nextMidnight(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	year, month, day := local.Date()
	return time.Date(year, month, day+1, 0, 0, 0, 0, loc)
}
