package models

import "time"

// Config represents the application configuration
type Config struct {
	Database  DatabaseConfig
	Ledger    LedgerConfig
	Scheduler SchedulerConfig
	Redis     RedisConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	BusyTimeout     time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
}

// LedgerConfig holds account and media settings used by the ledger service
type LedgerConfig struct {
	MediaRoot         string
	DefaultAvatarPath string
	BcryptCost        int
	PasswordResetTTL  time.Duration
}

// SchedulerConfig holds review reset scheduling settings
type SchedulerConfig struct {
	Timezone    string
	SymbolsFile string
}

// RedisConfig is optional; an empty Addr disables the shared reset guard
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}
