package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"item-catalog/internal/core/session"
	"item-catalog/internal/domain"
	"item-catalog/internal/identity"
	"item-catalog/internal/repo"
)

type fakeProvider struct {
	name    string
	calls   []string
	userID  string
	profile identity.Profile

	exchangeErr error
	checkErr    error
	revokeErr   error
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) ExchangeCode(_ context.Context, code string) (*identity.Token, error) {
	p.calls = append(p.calls, "exchange:"+code)
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return &identity.Token{AccessToken: "at-" + code, Subject: p.userID}, nil
}

func (p *fakeProvider) IntrospectToken(_ context.Context, tok *identity.Token) (*identity.TokenInfo, error) {
	p.calls = append(p.calls, "introspect")
	if p.checkErr != nil {
		return nil, p.checkErr
	}
	return &identity.TokenInfo{UserID: p.userID}, nil
}

func (p *fakeProvider) FetchProfile(_ context.Context, _ *identity.Token) (*identity.Profile, error) {
	p.calls = append(p.calls, "profile")
	prof := p.profile
	return &prof, nil
}

func (p *fakeProvider) Revoke(_ context.Context, accessToken, providerUserID string) error {
	p.calls = append(p.calls, "revoke:"+accessToken+":"+providerUserID)
	return p.revokeErr
}

func newAuth(t *testing.T, ps ...identity.Provider) (*AuthService, *fixture) {
	f := setup(t)
	return NewAuthService(f.db, identity.NewRegistry(ps...), nil), f
}

func googleFake() *fakeProvider {
	return &fakeProvider{
		name:    "google",
		userID:  "g-1",
		profile: identity.Profile{ID: "g-1", Name: "Ann", Email: "ann@example.com", Picture: "https://pic/ann"},
	}
}

func TestBeginLogin_StoresToken(t *testing.T) {
	svc, _ := newAuth(t)
	st := &session.State{}
	tok, err := svc.BeginLogin(st)
	require.NoError(t, err)
	require.Len(t, tok, 32)
	require.Equal(t, tok, st.StateToken)
	require.True(t, st.Dirty())

	next, err := svc.BeginLogin(st)
	require.NoError(t, err)
	require.NotEqual(t, tok, next)
	require.Equal(t, next, st.StateToken)
}

func TestCompleteLogin_StateMismatchSkipsProvider(t *testing.T) {
	g := googleFake()
	svc, _ := newAuth(t, g)

	for name, presented := range map[string]string{"wrong": "forged", "empty": ""} {
		t.Run(name, func(t *testing.T) {
			st := &session.State{StateToken: "expected"}
			_, err := svc.CompleteLogin(context.Background(), st, "google", "code", presented)
			require.ErrorIs(t, err, domain.ErrUnauthorized)
			require.ErrorIs(t, err, ErrInvalidState)
			require.Nil(t, st.Identity)
		})
	}
	// 会话里没有 token 时同样拒绝
	_, err := svc.CompleteLogin(context.Background(), &session.State{}, "google", "code", "")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	require.Empty(t, g.calls)
}

func TestCompleteLogin_CreatesUserOnce(t *testing.T) {
	g := googleFake()
	svc, f := newAuth(t, g)
	ctx := context.Background()

	st := &session.State{StateToken: "s1"}
	res, err := svc.CompleteLogin(ctx, st, "google", "c1", "s1")
	require.NoError(t, err)
	require.True(t, res.Created)
	require.False(t, res.AlreadyConnected)
	require.Equal(t, []string{"exchange:c1", "introspect", "profile"}, g.calls)

	require.True(t, st.Authenticated())
	require.Equal(t, &session.Identity{
		UserID:         res.User.ID,
		Username:       "Ann",
		Email:          "ann@example.com",
		Picture:        "https://pic/ann",
		Provider:       "google",
		AccessToken:    "at-c1",
		ProviderUserID: "g-1",
	}, st.Identity)

	// 另一个会话用同一邮箱登录，复用已有用户
	other := &session.State{StateToken: "s2"}
	again, err := svc.CompleteLogin(ctx, other, "google", "c2", "s2")
	require.NoError(t, err)
	require.False(t, again.Created)
	require.Equal(t, res.User.ID, again.User.ID)

	u, err := repo.NewUserRepo(f.db).FindByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	require.Equal(t, res.User.ID, u.ID)
	var n int64
	require.NoError(t, f.db.Model(&domain.User{}).Where("email = ?", "ann@example.com").Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestCompleteLogin_AlreadyConnected(t *testing.T) {
	g := googleFake()
	svc, _ := newAuth(t, g)
	ctx := context.Background()

	st := &session.State{StateToken: "s1"}
	first, err := svc.CompleteLogin(ctx, st, "google", "c1", "s1")
	require.NoError(t, err)
	g.calls = nil

	res, err := svc.CompleteLogin(ctx, st, "google", "c2", "s1")
	require.NoError(t, err)
	require.True(t, res.AlreadyConnected)
	require.Equal(t, []string{"exchange:c2", "introspect"}, g.calls)
	require.Equal(t, first.Identity, st.Identity)
	require.Equal(t, "at-c1", st.Identity.AccessToken)
}

func TestCompleteLogin_FailuresLeaveSessionUntouched(t *testing.T) {
	ctx := context.Background()
	prev := &session.Identity{UserID: 7, Provider: "facebook", ProviderUserID: "fb-1", AccessToken: "old"}

	cases := map[string]*fakeProvider{
		"exchange": {name: "google", exchangeErr: identity.ErrExchange},
		"check":    {name: "google", checkErr: identity.ErrTokenCheck},
		"no email": {name: "google", userID: "g-9", profile: identity.Profile{ID: "g-9", Name: "Nobody"}},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			svc, _ := newAuth(t, p)
			id := *prev
			st := &session.State{StateToken: "s", Identity: &id}
			_, err := svc.CompleteLogin(ctx, st, "google", "c", "s")
			require.ErrorIs(t, err, domain.ErrUnauthorized)
			if p.exchangeErr != nil {
				require.ErrorIs(t, err, identity.ErrExchange)
			}
			require.Equal(t, prev, st.Identity)
		})
	}

	svc, _ := newAuth(t)
	_, err := svc.CompleteLogin(ctx, &session.State{StateToken: "s"}, "github", "c", "s")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestEndLogin(t *testing.T) {
	ctx := context.Background()
	g := googleFake()
	svc, _ := newAuth(t, g)

	_, err := svc.EndLogin(ctx, &session.State{})
	require.ErrorIs(t, err, domain.ErrNotConnected)
	require.Empty(t, g.calls)

	st := &session.State{Identity: &session.Identity{UserID: 1, Provider: "google", AccessToken: "at", ProviderUserID: "g-1"}}
	res, err := svc.EndLogin(ctx, st)
	require.NoError(t, err)
	require.NoError(t, res.RevokeErr)
	require.Equal(t, "google", res.Provider)
	require.Equal(t, []string{"revoke:at:g-1"}, g.calls)
	require.False(t, st.Authenticated())
}

func TestEndLogin_RevokeFailureStillClears(t *testing.T) {
	ctx := context.Background()
	g := googleFake()
	g.revokeErr = errors.New("revoke down")
	svc, _ := newAuth(t, g)

	st := &session.State{Identity: &session.Identity{UserID: 1, Provider: "google", AccessToken: "at"}}
	res, err := svc.EndLogin(ctx, st)
	require.NoError(t, err)
	require.Error(t, res.RevokeErr)
	require.Nil(t, st.Identity)
	require.True(t, st.Dirty())
}
