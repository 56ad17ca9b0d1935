// Package identity 第三方登录：用授权码换 token、校验 token、拉取资料、吊销。
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

var (
	ErrExchange   = errors.New("failed to upgrade the authorization code")
	ErrTokenCheck = errors.New("token check failed")
	ErrRevoke     = errors.New("failed to revoke token for given user")
)

// Token 换票结果；Subject 为 provider 侧用户 id（Google 取自 id_token.sub）
type Token struct {
	AccessToken string
	Subject     string
}

type TokenInfo struct {
	UserID string
	AppID  string
}

type Profile struct {
	ID      string
	Name    string
	Email   string
	Picture string
}

// Provider 登录流程只依赖这组能力
type Provider interface {
	Name() string
	ExchangeCode(ctx context.Context, code string) (*Token, error)
	IntrospectToken(ctx context.Context, tok *Token) (*TokenInfo, error)
	FetchProfile(ctx context.Context, tok *Token) (*Profile, error)
	Revoke(ctx context.Context, accessToken, providerUserID string) error
}

// Registry 按名称查找
type Registry map[string]Provider

func NewRegistry(ps ...Provider) Registry {
	r := Registry{}
	for _, p := range ps {
		if p != nil {
			r[p.Name()] = p
		}
	}
	return r
}

func (r Registry) Get(name string) (Provider, bool) {
	p, ok := r[name]
	return p, ok
}

// NewHTTPClient 所有 provider 调用共用，单次调用不重试
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func withClient(ctx context.Context, c *http.Client) context.Context {
	if c == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, c)
}

// getJSON 发请求并解码 JSON；非 2xx 视为失败
func getJSON(ctx context.Context, c *http.Client, method, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: status %d: %s", method, req.URL.Path, resp.StatusCode, string(body))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}
