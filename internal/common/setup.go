package common

import (
	"context"
	"log"
	"os"
	"strings"

	"bitchain-ledger-go/internal/api"
	"bitchain-ledger-go/internal/coordination"
	"bitchain-ledger-go/internal/database"
	"bitchain-ledger-go/internal/models"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Try to load .env file - if it doesn't exist, that's okay
	// Environment variables can be set via other means (shell export, docker, etc.)
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	DbService  *database.Service
	ApiService *api.LedgerService
	ResetGuard coordination.ResetGuard
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeServices opens the database and builds the ledger service. The
// Redis reset guard is only connected when withGuard is set and REDIS_ADDR is
// configured; otherwise a no-op guard is used.
func InitializeServices(ctx context.Context, cfg *models.Config, withGuard bool) (*Services, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	location, err := loadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		dbService.Close()
		return nil, err
	}

	services := &Services{
		DbService:  dbService,
		ApiService: api.NewLedgerService(dbService, cfg.Ledger, api.WithLocation(location)),
		ResetGuard: coordination.NoopResetGuard{},
	}

	if withGuard && cfg.Redis.Addr != "" {
		hostname, _ := os.Hostname()
		guard, err := coordination.NewRedisResetGuard(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, hostname)
		if err != nil {
			dbService.Close()
			return nil, err
		}
		services.ResetGuard = guard
	} else if withGuard {
		zap.L().Info("REDIS_ADDR not set, review resets are not coordinated across processes")
	}

	return services, nil
}

func (cs *Services) Close() {
	if cs.ResetGuard != nil {
		if err := cs.ResetGuard.Close(); err != nil {
			zap.L().Warn("Failed to close reset guard", zap.Error(err))
		}
	}
	if cs.DbService != nil {
		cs.DbService.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
