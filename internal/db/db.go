package db

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/models"
)

// Connect opens the postgres pool and waits for it with exponential backoff.
func Connect(ctx context.Context, dsn string, retries int, log *zap.Logger) (*gorm.DB, error) {
	return Open(ctx, postgres.Open(dsn), retries, log)
}

// Open is Connect for an arbitrary dialector.
func Open(ctx context.Context, dialector gorm.Dialector, retries int, log *zap.Logger) (*gorm.DB, error) {
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxElapsedTime = 30 * time.Second
	if retries < 0 {
		retries = 0
	}

	err = backoff.RetryNotify(
		func() error { return sqlDB.PingContext(ctx) },
		backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx),
		func(err error, wait time.Duration) {
			log.Warn("database not reachable, retrying", zap.Error(err), zap.Duration("wait", wait))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return gdb, nil
}

// Models lists every table owned by the service.
func Models() []any {
	return []any{
		&models.User{},
		&models.Job{},
		&models.Message{},
		&models.Review{},
		&models.Payment{},
	}
}

func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
