package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"item-catalog/internal/domain"
	"item-catalog/internal/repo"
)

// CatalogService 分类/条目的增删改查与 owner 校验。
// 读操作直接走连接池；写操作每次调用各开一个事务。
type CatalogService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCatalogService(db *gorm.DB, l *zap.Logger) *CatalogService {
	if l == nil {
		l = zap.NewNop()
	}
	return &CatalogService{db: db, log: l}
}

type Catalog struct {
	Categories []domain.Category
	Items      []domain.Item
}

type CategoryListing struct {
	Category domain.Category
	Items    []domain.Item
	Count    int64
	OwnerID  uint
}

type ItemDetail struct {
	Item     domain.Item
	Category domain.Category
	OwnerID  uint
}

type CategoryDeletePreview struct {
	Category domain.Category
	Items    []domain.Item
}

type ItemDeletePreview struct {
	Item     domain.Item
	Category domain.Category
}

type ItemInput struct {
	Name        string
	Description string
	Picture     string
}

// ItemPatch 空值字段保持不变
type ItemPatch struct {
	Name        string
	Description string
	Picture     string
	Category    string
}

func (s *CatalogService) tx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

func (s *CatalogService) read() *gorm.DB { return s.db }

func (s *CatalogService) ListCatalog(ctx context.Context) (*Catalog, error) {
	cats, err := repo.NewCategoryRepo(s.read()).List(ctx)
	if err != nil {
		return nil, err
	}
	items, err := repo.NewItemRepo(s.read()).List(ctx)
	if err != nil {
		return nil, err
	}
	return &Catalog{Categories: cats, Items: items}, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return repo.NewCategoryRepo(s.read()).List(ctx)
}

func (s *CatalogService) ListCategoryItems(ctx context.Context, categoryName string) (*CategoryListing, error) {
	cat, err := repo.NewCategoryRepo(s.read()).FindByName(ctx, categoryName)
	if err != nil {
		return nil, err
	}
	items := repo.NewItemRepo(s.read())
	list, err := items.ListByCategory(ctx, cat.ID)
	if err != nil {
		return nil, err
	}
	n, err := items.CountByCategory(ctx, cat.ID)
	if err != nil {
		return nil, err
	}
	return &CategoryListing{Category: *cat, Items: list, Count: n, OwnerID: cat.UserID}, nil
}

// GetItem 条目按名称查找（全局唯一）；categoryName 只用于展示
func (s *CatalogService) GetItem(ctx context.Context, categoryName, itemName string) (*ItemDetail, error) {
	it, err := repo.NewItemRepo(s.read()).FindByName(ctx, itemName)
	if err != nil {
		return nil, err
	}
	var cat domain.Category
	if err := s.read().WithContext(ctx).First(&cat, it.CategoryID).Error; err != nil {
		return nil, fmt.Errorf("category of item %s: %w", itemName, err)
	}
	return &ItemDetail{Item: *it, Category: cat, OwnerID: it.UserID}, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string, ownerID uint) (*domain.Category, error) {
	if ownerID == 0 {
		return nil, domain.ErrUnauthorized
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("category name: %w", domain.ErrInvalidInput)
	}
	cat := &domain.Category{Name: name, UserID: ownerID}
	if err := s.tx(ctx, func(tx *gorm.DB) error {
		return repo.NewCategoryRepo(tx).Create(ctx, cat)
	}); err != nil {
		return nil, err
	}
	s.log.Info("category created", zap.Uint("id", cat.ID), zap.String("name", cat.Name), zap.Uint("user_id", ownerID))
	return cat, nil
}

// RenameCategory newName 为空时不做修改
func (s *CatalogService) RenameCategory(ctx context.Context, categoryName, newName string, requesterID uint) (*domain.Category, error) {
	var cat *domain.Category
	err := s.tx(ctx, func(tx *gorm.DB) error {
		cats := repo.NewCategoryRepo(tx)
		c, err := cats.FindByName(ctx, categoryName)
		if err != nil {
			return err
		}
		if !c.OwnedBy(requesterID) {
			return fmt.Errorf("edit category %s: %w", categoryName, domain.ErrForbidden)
		}
		cat = c
		if newName = strings.TrimSpace(newName); newName == "" || newName == c.Name {
			return nil
		}
		if err := cats.Rename(ctx, c, newName); err != nil {
			return err
		}
		c.Name = newName
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("category edited", zap.Uint("id", cat.ID), zap.String("name", cat.Name))
	return cat, nil
}

func (s *CatalogService) PreviewCategoryDelete(ctx context.Context, categoryName string, requesterID uint) (*CategoryDeletePreview, error) {
	cat, err := repo.NewCategoryRepo(s.read()).FindByName(ctx, categoryName)
	if err != nil {
		return nil, err
	}
	if !cat.OwnedBy(requesterID) {
		return nil, fmt.Errorf("delete category %s: %w", categoryName, domain.ErrForbidden)
	}
	items, err := repo.NewItemRepo(s.read()).ListByCategory(ctx, cat.ID)
	if err != nil {
		return nil, err
	}
	return &CategoryDeletePreview{Category: *cat, Items: items}, nil
}

// DeleteCategory 先删该分类下全部条目再删分类，同一事务
func (s *CatalogService) DeleteCategory(ctx context.Context, categoryName string, requesterID uint) (int64, error) {
	var removed int64
	var catID uint
	err := s.tx(ctx, func(tx *gorm.DB) error {
		cat, err := repo.NewCategoryRepo(tx).FindByName(ctx, categoryName)
		if err != nil {
			return err
		}
		if !cat.OwnedBy(requesterID) {
			return fmt.Errorf("delete category %s: %w", categoryName, domain.ErrForbidden)
		}
		catID = cat.ID
		if removed, err = repo.NewItemRepo(tx).DeleteByCategory(ctx, cat.ID); err != nil {
			return err
		}
		return repo.NewCategoryRepo(tx).Delete(ctx, cat.ID)
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("category deleted", zap.Uint("id", catID), zap.String("name", categoryName), zap.Int64("items", removed))
	return removed, nil
}

func (s *CatalogService) CreateItem(ctx context.Context, in ItemInput, categoryName string, ownerID uint) (*domain.Item, error) {
	if ownerID == 0 {
		return nil, domain.ErrUnauthorized
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, fmt.Errorf("item name: %w", domain.ErrInvalidInput)
	}
	var it *domain.Item
	err := s.tx(ctx, func(tx *gorm.DB) error {
		cat, err := repo.NewCategoryRepo(tx).FindByName(ctx, categoryName)
		if err != nil {
			return err
		}
		it = &domain.Item{
			Name:        in.Name,
			Description: in.Description,
			Picture:     in.Picture,
			CategoryID:  cat.ID,
			UserID:      ownerID,
		}
		if err := repo.NewItemRepo(tx).Create(ctx, it); err != nil {
			return err
		}
		it.Category = *cat
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("item created", zap.Uint("id", it.ID), zap.String("name", it.Name), zap.String("category", categoryName))
	return it, nil
}

// UpdateItem 部分更新：只应用非空字段
func (s *CatalogService) UpdateItem(ctx context.Context, itemName string, patch ItemPatch, requesterID uint) (*domain.Item, error) {
	var it *domain.Item
	err := s.tx(ctx, func(tx *gorm.DB) error {
		items := repo.NewItemRepo(tx)
		cats := repo.NewCategoryRepo(tx)
		found, err := items.FindByName(ctx, itemName)
		if err != nil {
			return err
		}
		if !found.OwnedBy(requesterID) {
			return fmt.Errorf("edit item %s: %w", itemName, domain.ErrForbidden)
		}
		fields := map[string]any{}
		if v := strings.TrimSpace(patch.Name); v != "" {
			fields["name"] = v
		}
		if patch.Description != "" {
			fields["description"] = patch.Description
		}
		if patch.Picture != "" {
			fields["picture"] = patch.Picture
		}
		var cat *domain.Category
		if patch.Category != "" {
			if cat, err = cats.FindByName(ctx, patch.Category); err != nil {
				return err
			}
			fields["category_id"] = cat.ID
		} else {
			var current domain.Category
			if err := tx.WithContext(ctx).First(&current, found.CategoryID).Error; err != nil {
				return fmt.Errorf("category of item %s: %w", itemName, err)
			}
			cat = &current
		}
		if err := items.Update(ctx, found, fields); err != nil {
			return err
		}
		applyFields(found, fields)
		found.Category = *cat
		it = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("item edited", zap.Uint("id", it.ID), zap.String("name", it.Name))
	return it, nil
}

func applyFields(it *domain.Item, fields map[string]any) {
	if v, ok := fields["name"].(string); ok {
		it.Name = v
	}
	if v, ok := fields["description"].(string); ok {
		it.Description = v
	}
	if v, ok := fields["picture"].(string); ok {
		it.Picture = v
	}
	if v, ok := fields["category_id"].(uint); ok {
		it.CategoryID = v
	}
}

// 删除条目校验的是分类 owner 而非条目 owner，保留既有行为
func (s *CatalogService) authorizeItemDelete(ctx context.Context, db *gorm.DB, categoryName, itemName string, requesterID uint) (*domain.Item, *domain.Category, error) {
	it, err := repo.NewItemRepo(db).FindByName(ctx, itemName)
	if err != nil {
		return nil, nil, err
	}
	cat, err := repo.NewCategoryRepo(db).FindByName(ctx, categoryName)
	if err != nil {
		return nil, nil, err
	}
	if !cat.OwnedBy(requesterID) {
		return nil, nil, fmt.Errorf("delete item %s: %w", itemName, domain.ErrForbidden)
	}
	return it, cat, nil
}

func (s *CatalogService) PreviewItemDelete(ctx context.Context, categoryName, itemName string, requesterID uint) (*ItemDeletePreview, error) {
	it, cat, err := s.authorizeItemDelete(ctx, s.read(), categoryName, itemName, requesterID)
	if err != nil {
		return nil, err
	}
	return &ItemDeletePreview{Item: *it, Category: *cat}, nil
}

func (s *CatalogService) DeleteItem(ctx context.Context, itemName, categoryName string, requesterID uint) (*domain.Category, error) {
	var cat *domain.Category
	err := s.tx(ctx, func(tx *gorm.DB) error {
		it, c, err := s.authorizeItemDelete(ctx, tx, categoryName, itemName, requesterID)
		if err != nil {
			return err
		}
		cat = c
		return repo.NewItemRepo(tx).Delete(ctx, it.ID)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("item deleted", zap.String("name", itemName), zap.String("category", categoryName))
	return cat, nil
}

// ExportCatalog 每个分类带上其条目，没有条目则省略 Item 字段
func (s *CatalogService) ExportCatalog(ctx context.Context) (*domain.CatalogExport, error) {
	var cats []domain.Category
	if err := s.read().WithContext(ctx).Order("id ASC").Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("export categories: %w", err)
	}
	var items []domain.Item
	if err := s.read().WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("export items: %w", err)
	}
	byCat := make(map[uint][]domain.ItemView, len(cats))
	for _, it := range items {
		byCat[it.CategoryID] = append(byCat[it.CategoryID], it.View())
	}
	out := &domain.CatalogExport{Category: make([]domain.CategoryView, 0, len(cats))}
	for _, c := range cats {
		v := c.View()
		v.Items = byCat[c.ID]
		out.Category = append(out.Category, v)
	}
	return out, nil
}

func (s *CatalogService) ExportCategory(ctx context.Context, categoryName string) (*domain.ItemsExport, error) {
	cat, err := repo.NewCategoryRepo(s.read()).FindByName(ctx, categoryName)
	if err != nil {
		return nil, err
	}
	var items []domain.Item
	if err := s.read().WithContext(ctx).Where("category_id = ?", cat.ID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("export category items: %w", err)
	}
	return &domain.ItemsExport{Items: domain.ItemViews(items)}, nil
}

func (s *CatalogService) ExportItems(ctx context.Context) (*domain.ItemsExport, error) {
	var items []domain.Item
	if err := s.read().WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("export items: %w", err)
	}
	return &domain.ItemsExport{Items: domain.ItemViews(items)}, nil
}

// ExportItem 条目必须属于给定分类
func (s *CatalogService) ExportItem(ctx context.Context, categoryName, itemName string) (*domain.ItemExport, error) {
	cat, err := repo.NewCategoryRepo(s.read()).FindByName(ctx, categoryName)
	if err != nil {
		return nil, err
	}
	it, err := repo.NewItemRepo(s.read()).FindInCategory(ctx, cat.ID, itemName)
	if err != nil {
		return nil, err
	}
	return &domain.ItemExport{Item: []domain.ItemView{it.View()}}, nil
}
