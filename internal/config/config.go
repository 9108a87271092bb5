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

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"bitchain-ledger-go/internal/models"
)

func Load() (*models.Config, error) {
	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	busyTimeout, err := getEnvDuration("DB_BUSY_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	retryBackoff, err := getEnvDuration("LEDGER_RETRY_BACKOFF", 25*time.Millisecond)
	if err != nil {
		return nil, err
	}

	resetTTL, err := getEnvDuration("PASSWORD_RESET_TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	timezone := getEnvString("RESET_TIMEZONE", "Local")
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, fmt.Errorf("invalid time zone for RESET_TIMEZONE: %q (%w)", timezone, err)
	}

	return &models.Config{
		Database: models.DatabaseConfig{
			Path:            getEnvString("DATABASE_PATH", "bitchain.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
			PingTimeout:     pingTimeout,
			BusyTimeout:     busyTimeout,
			MaxRetries:      getEnvInt("LEDGER_MAX_RETRIES", 3),
			RetryBackoff:    retryBackoff,
		},
		Ledger: models.LedgerConfig{
			MediaRoot:         getEnvString("MEDIA_ROOT", "media"),
			DefaultAvatarPath: getEnvString("DEFAULT_AVATAR_PATH", "uploads/user/default.jpg"),
			BcryptCost:        getEnvInt("BCRYPT_COST", 10),
			PasswordResetTTL:  resetTTL,
		},
		Scheduler: models.SchedulerConfig{
			Timezone:    timezone,
			SymbolsFile: getEnvString("SYMBOLS_FILE", "symbols.yaml"),
		},
		Redis: models.RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
		},
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
