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
	"time"

	"bitchain-ledger-go/internal/models"
	"bitchain-ledger-go/internal/store"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
	dateLayout          = "2006-01-02"
	defaultResetTTL     = 24 * time.Hour
)

// LedgerService is the operation surface consumed by the web layer and the
// command-line tools. Callers pass an already authenticated user id.
type LedgerService struct {
	store      store.LedgerStore
	validate   *validator.Validate
	bcryptCost int
	avatar     string
	mediaRoot  string
	resetTTL   time.Duration
	now        func() time.Time
	location   *time.Location
}

// Option customises a LedgerService
type Option func(*LedgerService)

// WithClock replaces the wall clock used for review dates
func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) {
		s.now = now
	}
}

// WithLocation sets the time zone that decides which calendar day it is
func WithLocation(loc *time.Location) Option {
	return func(s *LedgerService) {
		if loc != nil {
			s.location = loc
		}
	}
}

func NewLedgerService(ledgerStore store.LedgerStore, cfg models.LedgerConfig, opts ...Option) *LedgerService {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	avatar := cfg.DefaultAvatarPath
	if avatar == "" {
		avatar = DefaultImagePath
	}
	resetTTL := cfg.PasswordResetTTL
	if resetTTL <= 0 {
		resetTTL = defaultResetTTL
	}

	s := &LedgerService{
		store:      ledgerStore,
		validate:   newValidator(),
		bcryptCost: cost,
		avatar:     avatar,
		mediaRoot:  cfg.MediaRoot,
		resetTTL:   resetTTL,
		now:        time.Now,
		location:   time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LedgerService) HealthCheck(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Today returns the current calendar date in the service's time zone
func (s *LedgerService) Today() string {
	return s.now().In(s.location).Format(dateLayout)
}
