package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func signedIDToken(t *testing.T, sub string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: sub}).SignedString([]byte("x"))
	require.NoError(t, err)
	return s
}

type fakeGoogle struct {
	idToken  string
	userID   string
	issuedTo string
	revoked  []string
}

func (f *fakeGoogle) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		require.Equal(t, "postmessage", r.Form.Get("redirect_uri"))
		writeJSON(w, map[string]any{"access_token": "g-at", "token_type": "Bearer", "id_token": f.idToken})
	})
	mux.HandleFunc("/oauth2/v1/tokeninfo", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_token") != "g-at" {
			writeJSON(w, map[string]any{"error": "invalid_token"})
			return
		}
		writeJSON(w, map[string]any{"user_id": f.userID, "issued_to": f.issuedTo})
	})
	mux.HandleFunc("/oauth2/v1/userinfo", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "json", r.URL.Query().Get("alt"))
		writeJSON(w, map[string]any{"id": f.userID, "name": "Bob Wang", "email": "bob@example.com", "picture": "https://pic/bob"})
	})
	mux.HandleFunc("/o/oauth2/revoke", func(w http.ResponseWriter, r *http.Request) {
		tok := r.URL.Query().Get("token")
		if tok != "g-at" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.revoked = append(f.revoked, tok)
	})
	return mux
}

func TestGoogle_FullFlow(t *testing.T) {
	f := &fakeGoogle{idToken: signedIDToken(t, "g-123"), userID: "g-123", issuedTo: "client-1"}
	srv := httptest.NewServer(f.handler(t))
	defer srv.Close()

	ctx := context.Background()
	g := NewGoogle("client-1", "secret", srv.URL, srv.Client())
	require.Equal(t, "google", g.Name())

	tok, err := g.ExchangeCode(ctx, "good-code")
	require.NoError(t, err)
	require.Equal(t, "g-at", tok.AccessToken)
	require.Equal(t, "g-123", tok.Subject)

	info, err := g.IntrospectToken(ctx, tok)
	require.NoError(t, err)
	require.Equal(t, "g-123", info.UserID)

	p, err := g.FetchProfile(ctx, tok)
	require.NoError(t, err)
	require.Equal(t, "bob@example.com", p.Email)
	require.Equal(t, "Bob Wang", p.Name)
	require.Equal(t, "https://pic/bob", p.Picture)

	require.NoError(t, g.Revoke(ctx, tok.AccessToken, ""))
	require.Equal(t, []string{"g-at"}, f.revoked)
	require.ErrorIs(t, g.Revoke(ctx, "stale", ""), ErrRevoke)
}

func TestGoogle_ExchangeFailures(t *testing.T) {
	f := &fakeGoogle{idToken: "", userID: "g-123", issuedTo: "client-1"}
	srv := httptest.NewServer(f.handler(t))
	defer srv.Close()
	g := NewGoogle("client-1", "secret", srv.URL, srv.Client())

	_, err := g.ExchangeCode(context.Background(), "bad-code")
	require.ErrorIs(t, err, ErrExchange)

	_, err = g.ExchangeCode(context.Background(), "  ")
	require.ErrorIs(t, err, ErrExchange)

	// token 端点没给 id_token
	_, err = g.ExchangeCode(context.Background(), "good-code")
	require.ErrorIs(t, err, ErrExchange)
}

func TestGoogle_IntrospectMismatch(t *testing.T) {
	ctx := context.Background()
	cases := map[string]struct {
		userID, issuedTo string
		tok              *Token
	}{
		"wrong user":     {userID: "someone-else", issuedTo: "client-1", tok: &Token{AccessToken: "g-at", Subject: "g-123"}},
		"wrong audience": {userID: "g-123", issuedTo: "other-app", tok: &Token{AccessToken: "g-at", Subject: "g-123"}},
		"error field":    {userID: "g-123", issuedTo: "client-1", tok: &Token{AccessToken: "nope", Subject: "g-123"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := &fakeGoogle{userID: tc.userID, issuedTo: tc.issuedTo}
			srv := httptest.NewServer(f.handler(t))
			defer srv.Close()
			g := NewGoogle("client-1", "secret", srv.URL, srv.Client())

			_, err := g.IntrospectToken(ctx, tc.tok)
			require.ErrorIs(t, err, ErrTokenCheck)
		})
	}
}

type fakeFacebook struct {
	appID   string
	valid   bool
	revoked []string
}

func (f *fakeFacebook) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "fb_exchange_token", r.Form.Get("grant_type"))
		require.Equal(t, "app-1", r.Form.Get("client_id"))
		if r.Form.Get("fb_exchange_token") != "short-lived" {
			http.Error(w, `{"error":{"message":"bad token"}}`, http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"access_token": "fb-long", "token_type": "bearer", "expires_in": 5183999})
	})
	mux.HandleFunc("/debug_token", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "app-1|shh", r.URL.Query().Get("access_token"))
		writeJSON(w, map[string]any{"data": map[string]any{"app_id": f.appID, "user_id": "fb-9", "is_valid": f.valid}})
	})
	mux.HandleFunc("/v2.8/me", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "name,id,email", r.URL.Query().Get("fields"))
		writeJSON(w, map[string]any{"id": "fb-9", "name": "Ann", "email": "ann@example.com"})
	})
	mux.HandleFunc("/v2.8/me/picture", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "0", r.URL.Query().Get("redirect"))
		writeJSON(w, map[string]any{"data": map[string]any{"url": "https://pic/ann"}})
	})
	mux.HandleFunc("/fb-9/permissions", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		f.revoked = append(f.revoked, r.URL.Query().Get("access_token"))
		writeJSON(w, map[string]any{"success": true})
	})
	return mux
}

func TestFacebook_FullFlow(t *testing.T) {
	f := &fakeFacebook{appID: "app-1", valid: true}
	srv := httptest.NewServer(f.handler(t))
	defer srv.Close()

	ctx := context.Background()
	fb := NewFacebook("app-1", "shh", srv.URL, srv.Client())
	require.Equal(t, "facebook", fb.Name())

	tok, err := fb.ExchangeCode(ctx, "short-lived")
	require.NoError(t, err)
	require.Equal(t, "fb-long", tok.AccessToken)

	info, err := fb.IntrospectToken(ctx, tok)
	require.NoError(t, err)
	require.Equal(t, "fb-9", info.UserID)
	require.Equal(t, "fb-9", tok.Subject)

	p, err := fb.FetchProfile(ctx, tok)
	require.NoError(t, err)
	require.Equal(t, &Profile{ID: "fb-9", Name: "Ann", Email: "ann@example.com", Picture: "https://pic/ann"}, p)

	require.NoError(t, fb.Revoke(ctx, tok.AccessToken, "fb-9"))
	require.Equal(t, []string{"fb-long"}, f.revoked)
}

func TestFacebook_Failures(t *testing.T) {
	ctx := context.Background()

	f := &fakeFacebook{appID: "app-1", valid: true}
	srv := httptest.NewServer(f.handler(t))
	defer srv.Close()
	fb := NewFacebook("app-1", "shh", srv.URL, srv.Client())
	_, err := fb.ExchangeCode(ctx, "forged")
	require.ErrorIs(t, err, ErrExchange)

	for name, ff := range map[string]*fakeFacebook{
		"invalid":   {appID: "app-1", valid: false},
		"other app": {appID: "app-2", valid: true},
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(ff.handler(t))
			defer srv.Close()
			fb := NewFacebook("app-1", "shh", srv.URL, srv.Client())
			_, err := fb.IntrospectToken(ctx, &Token{AccessToken: "fb-long"})
			require.ErrorIs(t, err, ErrTokenCheck)
		})
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(NewGoogle("a", "b", "", nil), nil, NewFacebook("c", "d", "", nil))
	_, ok := r.Get("google")
	require.True(t, ok)
	_, ok = r.Get("facebook")
	require.True(t, ok)
	_, ok = r.Get("github")
	require.False(t, ok)
}
