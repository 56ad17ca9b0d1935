package domain

import "time"

// User 通过 OAuth 首次登录时创建，之后不再修改
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:250;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:250;not null" json:"email"`
	Image     string    `gorm:"size:250" json:"image"`
	CreatedAt time.Time `json:"-"`
}

func (User) TableName() string { return "users" }

// Category 名称全局唯一（不按 owner 划分）
type Category struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:250;not null;uniqueIndex"`
	UserID    uint      `gorm:"not null;index"`
	User      User      `gorm:"constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT;"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Category) TableName() string { return "category" }

func (c Category) OwnedBy(userID uint) bool { return userID != 0 && c.UserID == userID }

type Item struct {
	ID          uint     `gorm:"primaryKey"`
	Name        string   `gorm:"size:250;not null;uniqueIndex"`
	Description string   `gorm:"size:250"`
	Picture     string   `gorm:"size:250"`
	CategoryID  uint     `gorm:"not null;index"`
	Category    Category `gorm:"constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT;"`
	UserID      uint     `gorm:"not null;index"`
	User        User     `gorm:"constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT;"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Item) TableName() string { return "item" }

func (i Item) OwnedBy(userID uint) bool { return userID != 0 && i.UserID == userID }

// Models 参与建表的全部模型，顺序即依赖顺序
func Models() []any { return []any{&User{}, &Category{}, &Item{}} }
