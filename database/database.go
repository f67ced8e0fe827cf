// Package database opens the postgres connection and migrates the schema.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/junaidrashid-git/canteen-api/models"
)

const (
	maxRetries = 10
	retryDelay = 2 * time.Second
	pingTTL    = 5 * time.Second
)

// ConnectDB opens a pgx-backed *sql.DB, retrying the ping until the server answers
// or ctx is done.
func ConnectDB(ctx context.Context, dsn string, log *zap.Logger) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	for i := 1; i <= maxRetries; i++ {
		db, err = sql.Open("pgx", dsn)
		if err == nil {
			pctx, cancel := context.WithTimeout(ctx, pingTTL)
			err = db.PingContext(pctx)
			cancel()
			if err == nil {
				return db, nil
			}
			_ = db.Close()
		}

		log.Warn("database not reachable, retrying",
			zap.Int("attempt", i), zap.Duration("delay", retryDelay), zap.Error(err))

		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			return nil, fmt.Errorf("db connect canceled: %w", ctx.Err())
		}
	}
	return nil, fmt.Errorf("database unreachable after %d attempts: %w", maxRetries, err)
}

// Open connects to postgres and wraps the pool in gorm.
func Open(ctx context.Context, dsn string, log *zap.Logger) (*gorm.DB, error) {
	sqlDB, err := ConnectDB(ctx, dsn, log)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("gorm open: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.MenuItem{},
		&models.Cart{},
		&models.CartLine{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusChange{},
		&models.QRTable{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
