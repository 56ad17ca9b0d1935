package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"item-catalog/internal/domain"
	"item-catalog/internal/service"
	mdw "item-catalog/internal/transport/http/middleware"
	"item-catalog/internal/transport/http/view"
)

const (
	denyEditCategory   = "You do not have the privilege to edit this category!"
	denyDeleteCategory = "You do not have the privilege to delete this category!"
	denyEditItem       = "You do not have the privilege to edit this item!"
	denyDeleteItem     = "You do not have the privilege to delete this item!"
)

type CatalogHandler struct {
	svc *service.CatalogService
	log *zap.Logger
}

func NewCatalogHandler(svc *service.CatalogService, l *zap.Logger) *CatalogHandler {
	if l == nil {
		l = zap.NewNop()
	}
	return &CatalogHandler{svc: svc, log: l}
}

// itemForm 表单回填
type itemForm struct {
	Name        string
	Description string
	Picture     string
	Category    string
}

func readItemForm(c *gin.Context) itemForm {
	return itemForm{
		Name:        strings.TrimSpace(c.PostForm("name")),
		Description: c.PostForm("description"),
		Picture:     strings.TrimSpace(c.PostForm("picture")),
		Category:    c.PostForm("category"),
	}
}

// formError 冲突/校验失败时回显表单，其余错误返回 false
func formError(err error) (int, string, bool) {
	switch {
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "That name is already taken.", true
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "Name is required.", true
	}
	return 0, "", false
}

func (h *CatalogHandler) ShowCatalog(c *gin.Context) {
	cat, err := h.svc.ListCatalog(c.Request.Context())
	if err != nil {
		fail(c, h.log, err, "")
		return
	}
	render(c, http.StatusOK, view.Catalog, gin.H{"Categories": cat.Categories, "Items": cat.Items})
}

func (h *CatalogHandler) ShowCategory(c *gin.Context) {
	ctx := c.Request.Context()
	l, err := h.svc.ListCategoryItems(ctx, c.Param("category"))
	if err != nil {
		fail(c, h.log, err, "")
		return
	}
	cats, err := h.svc.ListCategories(ctx)
	if err != nil {
		fail(c, h.log, err, "")
		return
	}
	render(c, http.StatusOK, view.Category, gin.H{
		"Title":      l.Category.Name,
		"Categories": cats,
		"Category":   l.Category,
		"Items":      l.Items,
		"Count":      l.Count,
		"Owner":      l.Category.OwnedBy(mdw.SessionFrom(c).UserID()),
	})
}

func (h *CatalogHandler) ShowItem(c *gin.Context) {
	ctx := c.Request.Context()
	d, err := h.svc.GetItem(ctx, c.Param("category"), c.Param("item"))
	if err != nil {
		fail(c, h.log, err, "")
		return
	}
	cats, err := h.svc.ListCategories(ctx)
	if err != nil {
		fail(c, h.log, err, "")
		return
	}
	render(c, http.StatusOK, view.Item, gin.H{
		"Title":      d.Item.Name,
		"Categories": cats,
		"Item":       d.Item,
		"Category":   d.Category,
		"Owner":      d.Item.OwnedBy(mdw.SessionFrom(c).UserID()),
	})
}

func (h *CatalogHandler) NewCategoryForm(c *gin.Context) {
	render(c, http.StatusOK, view.CategoryForm, gin.H{"Title": "Add Category", "Category": nil, "Name": "", "Error": ""})
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	if !parseForm(c) {
		return
	}
	name := strings.TrimSpace(c.PostForm("name"))
	cat, err := h.svc.CreateCategory(c.Request.Context(), name, mdw.SessionFrom(c).UserID())
	if err != nil {
		if status, msg, ok := formError(err); ok {
			render(c, status, view.CategoryForm, gin.H{"Title": "Add Category", "Category": nil, "Name": name, "Error": msg})
			return
		}
		fail(c, h.log, err, "")
		return
	}
	redirectFlash(c, "/catalog/", fmt.Sprintf("New category %s has been successfully created!", cat.Name))
}

func (h *CatalogHandler) EditCategoryForm(c *gin.Context) {
	l, err := h.svc.ListCategoryItems(c.Request.Context(), c.Param("category"))
	if err != nil {
		fail(c, h.log, err, denyEditCategory)
		return
	}
	if !l.Category.OwnedBy(mdw.SessionFrom(c).UserID()) {
		redirectFlash(c, "/catalog/", denyEditCategory)
		return
	}
	render(c, http.StatusOK, view.CategoryForm, gin.H{"Title": "Edit Category", "Category": l.Category, "Name": l.Category.Name, "Error": ""})
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	if !parseForm(c) {
		return
	}
	current := c.Param("category")
	cat, err := h.svc.RenameCategory(c.Request.Context(), current, c.PostForm("name"), mdw.SessionFrom(c).UserID())
	if err != nil {
		if status, msg, ok := formError(err); ok {
			render(c, status, view.CategoryForm, gin.H{
				"Title":    "Edit Category",
				"Category": domain.Category{Name: current},
				"Name":     c.PostForm("name"),
				"Error":    msg,
			})
			return
		}
		fail(c, h.log, err, denyEditCategory)
		return
	}
	redirectFlash(c, "/catalog/", fmt.Sprintf("The category %s has been successfully edited!", cat.Name))
}

func (h *CatalogHandler) DeleteCategoryForm(c *gin.Context) {
	p, err := h.svc.PreviewCategoryDelete(c.Request.Context(), c.Param("category"), mdw.SessionFrom(c).UserID())
	if err != nil {
		fail(c, h.log, err, denyDeleteCategory)
		return
	}
	render(c, http.StatusOK, view.CategoryDelete, gin.H{"Title": "Delete Category", "Category": p.Category, "Items": p.Items})
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	name := c.Param("category")
	if _, err := h.svc.DeleteCategory(c.Request.Context(), name, mdw.SessionFrom(c).UserID()); err != nil {
		fail(c, h.log, err, denyDeleteCategory)
		return
	}
	redirectFlash(c, "/catalog/", fmt.Sprintf("The category %s has been successfully deleted", name))
}

func (h *CatalogHandler) renderItemForm(c *gin.Context, status int, item *domain.Item, categoryName string, form itemForm, errMsg string) {
	cats, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		fail(c, h.log, err, "")
		return
	}
	title := "Add Item"
	if item != nil {
		title = "Edit Item"
	}
	render(c, status, view.ItemForm, gin.H{
		"Title":        title,
		"Item":         item,
		"CategoryName": categoryName,
		"Categories":   cats,
		"Form":         form,
		"Error":        errMsg,
	})
}

func (h *CatalogHandler) NewItemForm(c *gin.Context) {
	h.renderItemForm(c, http.StatusOK, nil, "", itemForm{}, "")
}

func (h *CatalogHandler) CreateItem(c *gin.Context) {
	if !parseForm(c) {
		return
	}
	form := readItemForm(c)
	it, err := h.svc.CreateItem(c.Request.Context(), service.ItemInput{
		Name:        form.Name,
		Description: form.Description,
		Picture:     form.Picture,
	}, form.Category, mdw.SessionFrom(c).UserID())
	if err != nil {
		if status, msg, ok := formError(err); ok {
			h.renderItemForm(c, status, nil, "", form, msg)
			return
		}
		if errors.Is(err, domain.ErrNotFound) {
			h.renderItemForm(c, http.StatusBadRequest, nil, "", form, "Please choose an existing category.")
			return
		}
		fail(c, h.log, err, "")
		return
	}
	redirectFlash(c, categoryPath(it.Category.Name), fmt.Sprintf("The item %s has been successfully added!", it.Name))
}

func (h *CatalogHandler) EditItemForm(c *gin.Context) {
	d, err := h.svc.GetItem(c.Request.Context(), c.Param("category"), c.Param("item"))
	if err != nil {
		fail(c, h.log, err, denyEditItem)
		return
	}
	if !d.Item.OwnedBy(mdw.SessionFrom(c).UserID()) {
		redirectFlash(c, "/catalog/", denyEditItem)
		return
	}
	form := itemForm{Name: d.Item.Name, Description: d.Item.Description, Picture: d.Item.Picture}
	h.renderItemForm(c, http.StatusOK, &d.Item, c.Param("category"), form, "")
}

func (h *CatalogHandler) UpdateItem(c *gin.Context) {
	if !parseForm(c) {
		return
	}
	form := readItemForm(c)
	name := c.Param("item")
	it, err := h.svc.UpdateItem(c.Request.Context(), name, service.ItemPatch{
		Name:        form.Name,
		Description: form.Description,
		Picture:     form.Picture,
		Category:    form.Category,
	}, mdw.SessionFrom(c).UserID())
	if err != nil {
		if status, msg, ok := formError(err); ok {
			h.renderItemForm(c, status, &domain.Item{Name: name}, c.Param("category"), form, msg)
			return
		}
		fail(c, h.log, err, denyEditItem)
		return
	}
	redirectFlash(c, categoryPath(it.Category.Name), fmt.Sprintf("The item %s has been successfully edited!", it.Name))
}

func (h *CatalogHandler) DeleteItemForm(c *gin.Context) {
	p, err := h.svc.PreviewItemDelete(c.Request.Context(), c.Param("category"), c.Param("item"), mdw.SessionFrom(c).UserID())
	if err != nil {
		fail(c, h.log, err, denyDeleteItem)
		return
	}
	render(c, http.StatusOK, view.ItemDelete, gin.H{"Title": "Delete Item", "Item": p.Item, "Category": p.Category})
}

func (h *CatalogHandler) DeleteItem(c *gin.Context) {
	name := c.Param("item")
	cat, err := h.svc.DeleteItem(c.Request.Context(), name, c.Param("category"), mdw.SessionFrom(c).UserID())
	if err != nil {
		fail(c, h.log, err, denyDeleteItem)
		return
	}
	redirectFlash(c, categoryPath(cat.Name), fmt.Sprintf("The item %s has been successfully deleted", name))
}
