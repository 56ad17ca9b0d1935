package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"item-catalog/internal/domain"
	"item-catalog/internal/identity"
	"item-catalog/internal/service"
	mdw "item-catalog/internal/transport/http/middleware"
	resp "item-catalog/internal/transport/http/response"
	"item-catalog/internal/transport/http/view"
)

// LoginOpts 登录页前端 SDK 需要的公开 id
type LoginOpts struct {
	GoogleClientID string
	FacebookAppID  string
}

type AuthHandler struct {
	svc  *service.AuthService
	opts LoginOpts
	log  *zap.Logger
}

func NewAuthHandler(svc *service.AuthService, opts LoginOpts, l *zap.Logger) *AuthHandler {
	if l == nil {
		l = zap.NewNop()
	}
	return &AuthHandler{svc: svc, opts: opts, log: l}
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	state, err := h.svc.BeginLogin(mdw.SessionFrom(c))
	if err != nil {
		fail(c, h.log, err, "")
		return
	}
	render(c, http.StatusOK, view.Login, gin.H{
		"Title":          "Login",
		"State":          state,
		"GoogleClientID": h.opts.GoogleClientID,
		"FacebookAppID":  h.opts.FacebookAppID,
	})
}

func (h *AuthHandler) GConnect(c *gin.Context) { h.connect(c, "google", "you are now logged in as %s") }

func (h *AuthHandler) FBConnect(c *gin.Context) { h.connect(c, "facebook", "Now logged in as %s") }

// connect 请求体即授权码（Facebook 为短期 token），state 走 query
func (h *AuthHandler) connect(c *gin.Context, provider, flashFmt string) {
	body, err := c.GetRawData()
	if err != nil {
		_ = c.Error(err)
		var tooLarge *http.MaxBytesError
		if !errors.As(err, &tooLarge) {
			resp.Abort(c, resp.CodeBadRequest, "")
		}
		return
	}
	st := mdw.SessionFrom(c)
	res, err := h.svc.CompleteLogin(c.Request.Context(), st, provider, strings.TrimSpace(string(body)), c.Query("state"))
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			mdw.ObserveLogin(provider, "denied")
			resp.Abort(c, resp.CodeUnauthorized, loginFailure(err))
			return
		}
		mdw.ObserveLogin(provider, "error")
		failJSON(c, h.log, err)
		return
	}
	if res.AlreadyConnected {
		mdw.ObserveLogin(provider, "connected")
		c.JSON(http.StatusOK, resp.New(resp.CodeOK, "Current user is already connected.", nil))
		return
	}
	mdw.ObserveLogin(provider, "ok")
	st.AddFlash(fmt.Sprintf(flashFmt, res.Identity.Username))
	c.HTML(http.StatusOK, view.Welcome, res.Identity)
}

func loginFailure(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidState):
		return "Invalid state parameter."
	case errors.Is(err, identity.ErrExchange):
		return "Failed to upgrade the authorization code."
	case errors.Is(err, identity.ErrTokenCheck):
		return "Token doesn't match the given user or application."
	}
	return "Login failed."
}

func (h *AuthHandler) GDisconnect(c *gin.Context) { h.disconnectJSON(c) }

func (h *AuthHandler) FBDisconnect(c *gin.Context) { h.disconnectJSON(c) }

func (h *AuthHandler) disconnectJSON(c *gin.Context) {
	res, err := h.svc.EndLogin(c.Request.Context(), mdw.SessionFrom(c))
	if err != nil {
		if errors.Is(err, domain.ErrNotConnected) {
			resp.Abort(c, resp.CodeUnauthorized, "Current user not connected.")
			return
		}
		failJSON(c, h.log, err)
		return
	}
	// 本地会话已清空，吊销失败仅告知
	if res.RevokeErr != nil {
		resp.Abort(c, resp.CodeBadRequest, "Failed to revoke token for given user.")
		return
	}
	c.JSON(http.StatusOK, resp.New(resp.CodeOK, "Successfully disconnected.", nil))
}

func (h *AuthHandler) Disconnect(c *gin.Context) {
	_, err := h.svc.EndLogin(c.Request.Context(), mdw.SessionFrom(c))
	switch {
	case errors.Is(err, domain.ErrNotConnected):
		redirectFlash(c, "/catalog/", "You were not logged in!")
	case err != nil:
		fail(c, h.log, err, "")
	default:
		redirectFlash(c, "/catalog/", "You have successfully been logged out.")
	}
}
