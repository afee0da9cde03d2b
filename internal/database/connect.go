package database

import (
	"fmt"
	"time"

	"github.com/xpanvictor/xarvis/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// InitDB opens the GORM connection and tunes the underlying pool: at most
// 10 idle connections, PoolSize as the open-conn ceiling, and a one-hour
// connection lifetime so stale connections behind a load balancer get
// recycled.
func InitDB(cfg *config.Settings) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DB.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	poolSize := cfg.DB.PoolSize
	if poolSize <= 0 {
		poolSize = 10
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(poolSize)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}
