package identity

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleAPIBase      = "https://www.googleapis.com"
	googleAccountsBase = "https://accounts.google.com"
)

type Google struct {
	Conf   *oauth2.Config
	Client *http.Client
	// 测试覆盖；tokeninfo / userinfo 走 APIBase，revoke 走 AccountsBase
	APIBase      string
	AccountsBase string
}

// NewGoogle baseURL 非空时所有端点（含 token 端点）都指向它
func NewGoogle(clientID, clientSecret, baseURL string, client *http.Client) *Google {
	ep := google.Endpoint
	api, accounts := googleAPIBase, googleAccountsBase
	if baseURL != "" {
		baseURL = strings.TrimRight(baseURL, "/")
		ep = oauth2.Endpoint{AuthURL: baseURL + "/o/oauth2/auth", TokenURL: baseURL + "/token", AuthStyle: oauth2.AuthStyleInParams}
		api, accounts = baseURL, baseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Google{
		Conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     ep,
			RedirectURL:  "postmessage",
		},
		Client:       client,
		APIBase:      api,
		AccountsBase: accounts,
	}
}

func (g *Google) Name() string { return "google" }

func (g *Google) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: empty code", ErrExchange)
	}
	t, err := g.Conf.Exchange(withClient(ctx, g.Client), code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchange, err)
	}
	raw, _ := t.Extra("id_token").(string)
	sub, err := idTokenSubject(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchange, err)
	}
	return &Token{AccessToken: t.AccessToken, Subject: sub}, nil
}

// idTokenSubject id_token 直接来自 token 端点的 TLS 响应，这里只取 sub
func idTokenSubject(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("missing id_token")
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return "", fmt.Errorf("parse id_token: %w", err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("id_token without sub")
	}
	return claims.Subject, nil
}

type googleTokenInfo struct {
	UserID   string `json:"user_id"`
	IssuedTo string `json:"issued_to"`
	Error    string `json:"error"`
}

func (g *Google) IntrospectToken(ctx context.Context, tok *Token) (*TokenInfo, error) {
	var info googleTokenInfo
	u := g.APIBase + "/oauth2/v1/tokeninfo?access_token=" + url.QueryEscape(tok.AccessToken)
	if err := getJSON(ctx, g.Client, http.MethodGet, u, &info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenCheck, err)
	}
	if info.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrTokenCheck, info.Error)
	}
	if info.UserID != tok.Subject {
		return nil, fmt.Errorf("%w: token's user ID doesn't match given user ID", ErrTokenCheck)
	}
	if info.IssuedTo != g.Conf.ClientID {
		return nil, fmt.Errorf("%w: token's client ID does not match app's", ErrTokenCheck)
	}
	return &TokenInfo{UserID: info.UserID, AppID: info.IssuedTo}, nil
}

func (g *Google) FetchProfile(ctx context.Context, tok *Token) (*Profile, error) {
	var data struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture string `json:"picture"`
	}
	q := url.Values{"access_token": {tok.AccessToken}, "alt": {"json"}}
	if err := getJSON(ctx, g.Client, http.MethodGet, g.APIBase+"/oauth2/v1/userinfo?"+q.Encode(), &data); err != nil {
		return nil, fmt.Errorf("google userinfo: %w", err)
	}
	id := data.ID
	if id == "" {
		id = tok.Subject
	}
	return &Profile{ID: id, Name: data.Name, Email: data.Email, Picture: data.Picture}, nil
}

func (g *Google) Revoke(ctx context.Context, accessToken, _ string) error {
	u := g.AccountsBase + "/o/oauth2/revoke?token=" + url.QueryEscape(accessToken)
	if err := getJSON(ctx, g.Client, http.MethodGet, u, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrRevoke, err)
	}
	return nil
}
