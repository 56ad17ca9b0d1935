package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"item-catalog/internal/domain"
)

type CategoryRepo struct{ db *gorm.DB }

func NewCategoryRepo(db *gorm.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	return mapErr(r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error, "create category")
}

func (r *CategoryRepo) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	var c domain.Category
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&c).Error; err != nil {
		return nil, mapErr(err, "category "+name)
	}
	return &c, nil
}

// List 按名称升序
func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	var cs []domain.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&cs).Error; err != nil {
		return nil, mapErr(err, "list categories")
	}
	return cs, nil
}

func (r *CategoryRepo) Rename(ctx context.Context, c *domain.Category, newName string) error {
	err := r.db.WithContext(ctx).Model(c).Omit(clause.Associations).Update("name", newName).Error
	return mapErr(err, "rename category")
}

func (r *CategoryRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Category{}, id)
	if res.Error != nil {
		return mapErr(res.Error, "delete category")
	}
	if res.RowsAffected == 0 {
		return mapErr(gorm.ErrRecordNotFound, "delete category")
	}
	return nil
}
