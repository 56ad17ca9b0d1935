package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"item-catalog/internal/transport/http/handler"
	mdw "item-catalog/internal/transport/http/middleware"
)

type authModule struct{ h *handler.AuthHandler }

func (m authModule) Mount(g *gin.RouterGroup) {
	g.GET("/login", m.h.ShowLogin)
	g.POST("/gconnect", m.h.GConnect)
	g.POST("/fbconnect", m.h.FBConnect)
	g.GET("/gdisconnect", m.h.GDisconnect)
	g.GET("/fbdisconnect", m.h.FBDisconnect)
	g.GET("/disconnect", m.h.Disconnect)
}

type catalogModule struct{ h *handler.CatalogHandler }

func (m catalogModule) Mount(g *gin.RouterGroup) {
	g.GET("/", m.h.ShowCatalog)
	g.GET("/catalog/", m.h.ShowCatalog)
	g.GET("/catalog/:category/", m.h.ShowCategory)
	g.GET("/catalog/:category/items/", m.h.ShowCategory)
	g.GET("/catalog/:category/:item/", m.h.ShowItem)

	// 以下需要登录
	owner := g.Group("", mdw.RequireLogin())
	owner.GET("/catalog/addCategory/", m.h.NewCategoryForm)
	owner.POST("/catalog/addCategory/", m.h.CreateCategory)
	owner.GET("/catalog/:category/edit/", m.h.EditCategoryForm)
	owner.POST("/catalog/:category/edit/", m.h.UpdateCategory)
	owner.GET("/catalog/:category/delete/", m.h.DeleteCategoryForm)
	owner.POST("/catalog/:category/delete/", m.h.DeleteCategory)
	owner.GET("/catalog/addItem/", m.h.NewItemForm)
	owner.POST("/catalog/addItem/", m.h.CreateItem)
	owner.GET("/catalog/:category/:item/edit/", m.h.EditItemForm)
	owner.POST("/catalog/:category/:item/edit/", m.h.UpdateItem)
	owner.GET("/catalog/:category/:item/delete/", m.h.DeleteItemForm)
	owner.POST("/catalog/:category/:item/delete/", m.h.DeleteItem)
}

// exportModule 挂在 /catalog 分组下
type exportModule struct{ h *handler.ExportHandler }

func (m exportModule) Mount(g *gin.RouterGroup) {
	g.GET("/JSON", m.h.Catalog)
	g.GET("/items/JSON", m.h.Items)
	g.GET("/:category/JSON", m.h.Category)
	g.GET("/:category/items/JSON", m.h.Category)
	g.GET("/:category/:item/JSON", m.h.Item)
}

// opsModule 健康检查与指标，最先挂
type opsModule struct{}

func (opsModule) Priority() int { return 0 }

func (opsModule) Mount(g *gin.RouterGroup) {
	g.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	g.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
