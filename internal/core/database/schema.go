package database

import (
	"fmt"

	"gorm.io/gorm"

	"item-catalog/internal/domain"
)

// InitSchema 建表（已存在则跳过），可重复调用
func InitSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// ResetSchema 删表后重建，仅供 seed 使用
func ResetSchema(db *gorm.DB) error {
	models := domain.Models()
	// 逆序删除，先删引用方
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(models[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return InitSchema(db)
}
