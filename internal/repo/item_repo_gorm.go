package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"item-catalog/internal/domain"
)

type ItemRepo struct{ db *gorm.DB }

func NewItemRepo(db *gorm.DB) *ItemRepo { return &ItemRepo{db: db} }

func (r *ItemRepo) Create(ctx context.Context, it *domain.Item) error {
	return mapErr(r.db.WithContext(ctx).Omit(clause.Associations).Create(it).Error, "create item")
}

// FindByName item 名称全局唯一
func (r *ItemRepo) FindByName(ctx context.Context, name string) (*domain.Item, error) {
	var it domain.Item
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&it).Error; err != nil {
		return nil, mapErr(err, "item "+name)
	}
	return &it, nil
}

func (r *ItemRepo) FindInCategory(ctx context.Context, categoryID uint, name string) (*domain.Item, error) {
	var it domain.Item
	err := r.db.WithContext(ctx).Where("name = ? AND category_id = ?", name, categoryID).First(&it).Error
	if err != nil {
		return nil, mapErr(err, "item "+name)
	}
	return &it, nil
}

// List 按名称升序，附带所属分类（首页要拼链接）
func (r *ItemRepo) List(ctx context.Context) ([]domain.Item, error) {
	var items []domain.Item
	if err := r.db.WithContext(ctx).Preload("Category").Order("name ASC").Find(&items).Error; err != nil {
		return nil, mapErr(err, "list items")
	}
	return items, nil
}

func (r *ItemRepo) ListByCategory(ctx context.Context, categoryID uint) ([]domain.Item, error) {
	var items []domain.Item
	err := r.db.WithContext(ctx).Where("category_id = ?", categoryID).Order("name ASC").Find(&items).Error
	if err != nil {
		return nil, mapErr(err, "list category items")
	}
	return items, nil
}

func (r *ItemRepo) CountByCategory(ctx context.Context, categoryID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Item{}).Where("category_id = ?", categoryID).Count(&n).Error
	return n, mapErr(err, "count category items")
}

// Update 只写 fields 中给出的列
func (r *ItemRepo) Update(ctx context.Context, it *domain.Item, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(it).Omit(clause.Associations).Updates(fields).Error
	return mapErr(err, "update item")
}

func (r *ItemRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Item{}, id)
	if res.Error != nil {
		return mapErr(res.Error, "delete item")
	}
	if res.RowsAffected == 0 {
		return mapErr(gorm.ErrRecordNotFound, "delete item")
	}
	return nil
}

func (r *ItemRepo) DeleteByCategory(ctx context.Context, categoryID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("category_id = ?", categoryID).Delete(&domain.Item{})
	return res.RowsAffected, mapErr(res.Error, "delete category items")
}
