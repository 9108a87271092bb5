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

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SignUpRequest is the payload accepted when creating a user
type SignUpRequest struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	FullName    string `json:"full_name" validate:"required,max=255"`
	NickName    string `json:"nick_name" validate:"required,max=255"`
	DateOfBirth string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	NationalId  string `json:"national_id" validate:"required,len=11,digits"`
}

// ProfileUpdateRequest carries the fields a user may change; nil means unchanged
type ProfileUpdateRequest struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,min=1,max=255"`
	NickName *string `json:"nick_name,omitempty" validate:"omitempty,min=1,max=255"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=128"`
}

// PasswordResetConfirmRequest redeems a reset token for a new password
type PasswordResetConfirmRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// TransactionRequest is the payload for recording a buy or sell
type TransactionRequest struct {
	Type     string           `json:"type" validate:"required,max=10"`
	Amount   *int64           `json:"amount" validate:"required,gt=0"`
	Currency string           `json:"currency" validate:"required,max=10"`
	PriceUsd *decimal.Decimal `json:"price_usd" validate:"required"`
}

// UserProfile is the public view of a user
type UserProfile struct {
	Id          string `json:"id"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	NickName    string `json:"nick_name"`
	DateOfBirth string `json:"date_of_birth"`
	ImagePath   string `json:"image"`
}

// UserBalance represents a wallet's holding of a specific symbol
type UserBalance struct {
	Symbol string          `json:"symbol"`
	Amount decimal.Decimal `json:"amount"`
}

// TransactionRecord represents a transaction in the user's history
type TransactionRecord struct {
	Id        string          `json:"id"`
	Type      string          `json:"type"`
	Amount    int64           `json:"amount"`
	Currency  string          `json:"currency"`
	PriceUsd  decimal.Decimal `json:"price_usd"`
	CreatedAt time.Time       `json:"created_at"`
}

// TradeResult is returned when a transaction is recorded together with its
// balance adjustment
type TradeResult struct {
	Transaction TransactionRecord `json:"transaction"`
	Balance     UserBalance       `json:"balance"`
}

// ReviewSummary is the public view of a review counter
type ReviewSummary struct {
	Symbol string `json:"symbol"`
	Good   int64  `json:"good"`
	Bad    int64  `json:"bad"`
}
