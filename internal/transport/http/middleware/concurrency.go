package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "item-catalog/internal/transport/http/response"
)

// ConcurrencyLimit 限制同时在处理的请求数（保护 DB 和 OAuth 回源）
func ConcurrencyLimit(max int64) gin.HandlerFunc {
	if max <= 0 {
		max = 300
	}
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if err := sem.Acquire(c.Request.Context(), 1); err != nil {
			resp.Abort(c, resp.CodeBusy, "server busy")
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}
