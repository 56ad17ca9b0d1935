package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"item-catalog/internal/domain"
	mdw "item-catalog/internal/transport/http/middleware"
	resp "item-catalog/internal/transport/http/response"
	"item-catalog/internal/transport/http/view"
)

// render 补齐所有页面共用的 User/Flashes；flash 只展示一次
func render(c *gin.Context, status int, name string, data gin.H) {
	st := mdw.SessionFrom(c)
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["Title"]; !ok {
		data["Title"] = ""
	}
	data["User"] = st.Identity
	data["Flashes"] = st.PopFlashes()
	c.HTML(status, name, data)
}

// NotFoundPage 也用作 engine 的 NoRoute
func NotFoundPage(c *gin.Context) {
	render(c, http.StatusNotFound, view.Error, gin.H{"Title": "Not Found", "Status": http.StatusNotFound, "Message": "The page you requested does not exist."})
}

func redirectFlash(c *gin.Context, to, msg string) {
	mdw.SessionFrom(c).AddFlash(msg)
	c.Redirect(http.StatusFound, to)
}

func categoryPath(name string) string { return "/catalog/" + url.PathEscape(name) + "/" }

// fail HTML 页面的统一错误出口；denyMsg 为越权时的提示
func fail(c *gin.Context, l *zap.Logger, err error, denyMsg string) {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		redirectFlash(c, "/catalog/", denyMsg)
	case errors.Is(err, domain.ErrUnauthorized):
		c.Redirect(http.StatusFound, "/login")
	case errors.Is(err, domain.ErrNotFound):
		NotFoundPage(c)
	default:
		_ = c.Error(err)
		l.Error("request failed", zap.String("rid", c.GetString(mdw.CtxRequestID)), zap.String("path", c.FullPath()), zap.Error(err))
		render(c, http.StatusInternalServerError, view.Error, gin.H{"Title": "Error", "Status": http.StatusInternalServerError, "Message": "Something went wrong."})
	}
}

// failJSON JSON 接口的统一错误出口
func failJSON(c *gin.Context, l *zap.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		resp.Abort(c, resp.CodeNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		resp.Abort(c, resp.CodeUnauthorized, "")
	default:
		_ = c.Error(err)
		l.Error("request failed", zap.String("rid", c.GetString(mdw.CtxRequestID)), zap.String("path", c.FullPath()), zap.Error(err))
		resp.Abort(c, resp.CodeServerError, "")
	}
}

// parseForm 超出 MaxBodyBytes 时交给中间件输出 413
func parseForm(c *gin.Context) bool {
	if err := c.Request.ParseForm(); err != nil {
		_ = c.Error(err)
		var tooLarge *http.MaxBytesError
		if !errors.As(err, &tooLarge) {
			resp.Abort(c, resp.CodeBadRequest, "invalid form")
		}
		return false
	}
	return true
}
