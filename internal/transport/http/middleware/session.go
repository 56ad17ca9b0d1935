package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"item-catalog/internal/core/auth"
	"item-catalog/internal/core/session"
	resp "item-catalog/internal/transport/http/response"
)

const ctxSession = "session"

type CookieOpts struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// Session 从 cookie 中的签名 sid 加载会话；请求内有改动则写回 store
func Session(store session.Store, signer *auth.JWTer, opt CookieOpts, l *zap.Logger) gin.HandlerFunc {
	if opt.Name == "" {
		opt.Name = "catalog_session"
	}
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		sid := ""
		if raw, err := c.Cookie(opt.Name); err == nil {
			if s, err := signer.Parse(raw); err == nil {
				sid = s
			}
		}
		if sid == "" {
			sid = uuid.NewString()
			tok, err := signer.Issue(sid)
			if err != nil {
				l.Error("session cookie sign failed", zap.Error(err))
				resp.Abort(c, resp.CodeServerError, "session unavailable")
				return
			}
			// 必须在 handler 写响应之前设置
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(opt.Name, tok, int(opt.MaxAge/time.Second), "/", "", opt.Secure, true)
		}

		st, err := store.Load(ctx, sid)
		if err != nil {
			l.Error("session load failed", zap.String("rid", c.GetString(CtxRequestID)), zap.Error(err))
			resp.Abort(c, resp.CodeServerError, "session unavailable")
			return
		}
		c.Set(ctxSession, st)

		c.Next()

		if st.Dirty() {
			// 请求 ctx 可能已超时，写回不受其影响
			if err := store.Save(context.WithoutCancel(ctx), sid, st); err != nil {
				l.Error("session save failed", zap.String("rid", c.GetString(CtxRequestID)), zap.Error(err))
			}
		}
	}
}

// SessionFrom 未挂 Session 中间件时返回匿名空会话
func SessionFrom(c *gin.Context) *session.State {
	if v, ok := c.Get(ctxSession); ok {
		if st, ok := v.(*session.State); ok {
			return st
		}
	}
	return &session.State{}
}

// RequireLogin 匿名访问受保护页面时跳转 /login
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !SessionFrom(c).Authenticated() {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}
