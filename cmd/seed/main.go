package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"item-catalog/internal/core/config"
	"item-catalog/internal/core/database"
	"item-catalog/internal/core/logger"
	"item-catalog/internal/seed"
)

// 清空三张表并写入演示数据
func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	if err := database.ResetSchema(db); err != nil {
		log.Fatal("reset schema", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := seed.Load(ctx, db); err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
	log.Info("item catalog seeded",
		zap.Int("categories", len(seed.Categories)),
		zap.Int("items", len(seed.Items)),
	)
}
