package identity

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
)

const facebookGraphBase = "https://graph.facebook.com"

// Facebook 客户端 SDK 直接给出短期 user token，这里换成长期 token
type Facebook struct {
	Conf      *oauth2.Config
	Client    *http.Client
	GraphBase string
}

func NewFacebook(appID, appSecret, baseURL string, client *http.Client) *Facebook {
	graph := facebookGraphBase
	if baseURL != "" {
		graph = strings.TrimRight(baseURL, "/")
	}
	ep := facebook.Endpoint
	ep.TokenURL = graph + "/oauth/access_token"
	ep.AuthStyle = oauth2.AuthStyleInParams
	if client == nil {
		client = http.DefaultClient
	}
	return &Facebook{
		Conf:      &oauth2.Config{ClientID: appID, ClientSecret: appSecret, Endpoint: ep},
		Client:    client,
		GraphBase: graph,
	}
}

func (f *Facebook) Name() string { return "facebook" }

func (f *Facebook) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: empty token", ErrExchange)
	}
	t, err := f.Conf.Exchange(withClient(ctx, f.Client), "",
		oauth2.SetAuthURLParam("grant_type", "fb_exchange_token"),
		oauth2.SetAuthURLParam("fb_exchange_token", code),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchange, err)
	}
	return &Token{AccessToken: t.AccessToken}, nil
}

type fbDebugToken struct {
	Data struct {
		AppID   string `json:"app_id"`
		UserID  string `json:"user_id"`
		IsValid bool   `json:"is_valid"`
	} `json:"data"`
}

func (f *Facebook) IntrospectToken(ctx context.Context, tok *Token) (*TokenInfo, error) {
	q := url.Values{
		"input_token":  {tok.AccessToken},
		"access_token": {f.Conf.ClientID + "|" + f.Conf.ClientSecret},
	}
	var dbg fbDebugToken
	if err := getJSON(ctx, f.Client, http.MethodGet, f.GraphBase+"/debug_token?"+q.Encode(), &dbg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenCheck, err)
	}
	if !dbg.Data.IsValid {
		return nil, fmt.Errorf("%w: token is not valid", ErrTokenCheck)
	}
	if dbg.Data.AppID != f.Conf.ClientID {
		return nil, fmt.Errorf("%w: token's app ID does not match app's", ErrTokenCheck)
	}
	if tok.Subject != "" && dbg.Data.UserID != tok.Subject {
		return nil, fmt.Errorf("%w: token's user ID doesn't match given user ID", ErrTokenCheck)
	}
	tok.Subject = dbg.Data.UserID
	return &TokenInfo{UserID: dbg.Data.UserID, AppID: dbg.Data.AppID}, nil
}

func (f *Facebook) FetchProfile(ctx context.Context, tok *Token) (*Profile, error) {
	var me struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	q := url.Values{"access_token": {tok.AccessToken}, "fields": {"name,id,email"}}
	if err := getJSON(ctx, f.Client, http.MethodGet, f.GraphBase+"/v2.8/me?"+q.Encode(), &me); err != nil {
		return nil, fmt.Errorf("facebook me: %w", err)
	}
	var pic struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	pq := url.Values{"access_token": {tok.AccessToken}, "redirect": {"0"}, "height": {"200"}, "width": {"200"}}
	if err := getJSON(ctx, f.Client, http.MethodGet, f.GraphBase+"/v2.8/me/picture?"+pq.Encode(), &pic); err != nil {
		return nil, fmt.Errorf("facebook picture: %w", err)
	}
	return &Profile{ID: me.ID, Name: me.Name, Email: me.Email, Picture: pic.Data.URL}, nil
}

func (f *Facebook) Revoke(ctx context.Context, accessToken, providerUserID string) error {
	u := fmt.Sprintf("%s/%s/permissions?access_token=%s", f.GraphBase, url.PathEscape(providerUserID), url.QueryEscape(accessToken))
	if err := getJSON(ctx, f.Client, http.MethodDelete, u, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrRevoke, err)
	}
	return nil
}
