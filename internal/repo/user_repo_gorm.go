package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"item-catalog/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	return mapErr(r.db.WithContext(ctx).Create(u).Error, "create user")
}

func (r *UserRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, mapErr(err, "find user")
	}
	return &u, nil
}

// FindByEmail 查不到返回 nil, nil
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, mapErr(err, "find user by email")
	}
	return &u, nil
}

// FindOrCreate 按 email 查找，不存在则创建；created 表示是否新建
func (r *UserRepo) FindOrCreate(ctx context.Context, u *domain.User) (out *domain.User, created bool, err error) {
	found, err := r.FindByEmail(ctx, u.Email)
	if err != nil {
		return nil, false, err
	}
	if found != nil {
		return found, false, nil
	}
	if err := r.Create(ctx, u); err != nil {
		// 并发兜底：唯一冲突 → 再查一次
		if errors.Is(err, domain.ErrConflict) {
			if found, e2 := r.FindByEmail(ctx, u.Email); e2 == nil && found != nil {
				return found, false, nil
			}
		}
		return nil, false, err
	}
	return u, true, nil
}
