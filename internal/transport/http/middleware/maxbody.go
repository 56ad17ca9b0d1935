package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	resp "item-catalog/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
		if c.Writer.Written() {
			return
		}
		var tooLarge *http.MaxBytesError
		for _, e := range c.Errors {
			if errors.As(e.Err, &tooLarge) {
				resp.Abort(c, resp.CodeTooLarge, "request body too large")
				return
			}
		}
	}
}
