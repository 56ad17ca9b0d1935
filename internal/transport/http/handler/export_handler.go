package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"item-catalog/internal/service"
)

// ExportHandler 公开的只读 JSON，不读会话
type ExportHandler struct {
	svc *service.CatalogService
	log *zap.Logger
}

func NewExportHandler(svc *service.CatalogService, l *zap.Logger) *ExportHandler {
	if l == nil {
		l = zap.NewNop()
	}
	return &ExportHandler{svc: svc, log: l}
}

func (h *ExportHandler) Catalog(c *gin.Context) {
	out, err := h.svc.ExportCatalog(c.Request.Context())
	if err != nil {
		failJSON(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ExportHandler) Category(c *gin.Context) {
	out, err := h.svc.ExportCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		failJSON(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ExportHandler) Items(c *gin.Context) {
	out, err := h.svc.ExportItems(c.Request.Context())
	if err != nil {
		failJSON(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ExportHandler) Item(c *gin.Context) {
	out, err := h.svc.ExportItem(c.Request.Context(), c.Param("category"), c.Param("item"))
	if err != nil {
		failJSON(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
