package db

import (
	"fmt"

	"storefront/internal/config"
	"storefront/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.PostgresConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	// DATABASE_URL があれば最優先で使う
	if cfg.URL != "" {
		return gorm.Open(postgres.Open(cfg.URL), gormCfg)
	}

	return gorm.Open(postgres.Open(DSN(cfg)), gormCfg)
}

func DSN(cfg config.PostgresConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DB, cfg.SSLMode,
	)
}

// cart_sessions を作る
func Migrate(gormDB *gorm.DB) error {
	return gormDB.AutoMigrate(&model.CartSession{})
}
