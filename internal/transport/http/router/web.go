package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"item-catalog/internal/core/auth"
	"item-catalog/internal/core/server"
	"item-catalog/internal/core/session"
	"item-catalog/internal/service"
	"item-catalog/internal/transport/http/handler"
	mdw "item-catalog/internal/transport/http/middleware"
	"item-catalog/internal/transport/http/view"
)

type Deps struct {
	Log      *zap.Logger
	Catalog  *service.CatalogService
	Auth     *service.AuthService
	Sessions session.Store
	Signer   *auth.JWTer
	Cookie   mdw.CookieOpts
	Login    handler.LoginOpts

	RequestTimeout time.Duration
	MaxConcurrent  int64
	MaxBodyBytes   int64
}

func NewWebEngine(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.MaxBodyBytes <= 0 {
		d.MaxBodyBytes = 1 << 20
	}
	r := server.NewRouter(d.Log)
	r.SetHTMLTemplate(view.Templates())

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.ConcurrencyLimit(d.MaxConcurrent),
		mdw.MaxBodyBytes(d.MaxBodyBytes),
		mdw.Timeout(d.RequestTimeout),
		mdw.Recovery(d.Log),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
	)
	r.NoRoute(handler.NotFoundPage)

	MountAll(&r.RouterGroup, opsModule{})

	// HTML 页面与登录：需要会话
	web := r.Group("", mdw.Session(d.Sessions, d.Signer, d.Cookie, d.Log))
	MountAll(web,
		authModule{h: handler.NewAuthHandler(d.Auth, d.Login, d.Log)},
		catalogModule{h: handler.NewCatalogHandler(d.Catalog, d.Log)},
	)

	// 公开 JSON：不读会话，允许跨域
	api := r.Group("/catalog", cors.Default())
	MountAll(api, exportModule{h: handler.NewExportHandler(d.Catalog, d.Log)})

	return r
}
