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

package database

import (
	"errors"
	"strings"

	"bitchain-ledger-go/internal/store"

	"github.com/mattn/go-sqlite3"
)

// asConflict converts a SQLite unique constraint violation into a
// store.ConflictError naming the offending column. Other errors pass through.
func asConflict(err error, values map[string]string) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique {
		return err
	}

	// "UNIQUE constraint failed: users.email"
	field := "record"
	if idx := strings.LastIndex(sqliteErr.Error(), ": "); idx >= 0 {
		columns := strings.Split(sqliteErr.Error()[idx+2:], ",")
		column := strings.TrimSpace(columns[len(columns)-1])
		if dot := strings.LastIndex(column, "."); dot >= 0 {
			column = column[dot+1:]
		}
		if column != "" {
			field = column
		}
	}

	return &store.ConflictError{Field: field, Value: values[field]}
}
