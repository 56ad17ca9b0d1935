package database

import (
	"strings"

	"gorm.io/gorm"
)

// MemoryOpts 独立命名的内存 sqlite，用于测试和本地演示
func MemoryOpts(name string) Opts {
	name = strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(name)
	return Opts{
		Driver:       "sqlite",
		DSN:          "file:" + name + "?mode=memory&cache=shared&_foreign_keys=on",
		MaxOpenConns: 1,
		LogLevel:     "silent",
	}
}

// OpenMemory 打开内存库并建表
func OpenMemory(name string) (*gorm.DB, error) {
	db, err := NewGorm(MemoryOpts(name))
	if err != nil {
		return nil, err
	}
	if err := InitSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}
