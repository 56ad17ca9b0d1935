package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"item-catalog/internal/core/session"
	"item-catalog/internal/domain"
	"item-catalog/internal/identity"
	"item-catalog/internal/repo"
	"item-catalog/pkg/utils"
)

var ErrInvalidState = errors.New("invalid state parameter")

// AuthService 把第三方授权码换成本地身份并写进会话
type AuthService struct {
	db        *gorm.DB
	providers identity.Registry
	log       *zap.Logger
	newToken  func() (string, error)
}

func NewAuthService(db *gorm.DB, providers identity.Registry, l *zap.Logger) *AuthService {
	if l == nil {
		l = zap.NewNop()
	}
	return &AuthService{db: db, providers: providers, log: l, newToken: utils.NewStateToken}
}

type LoginResult struct {
	User             *domain.User
	Identity         *session.Identity
	AlreadyConnected bool
	Created          bool
}

type LogoutResult struct {
	Provider string
	// 吊销失败不影响本地退出
	RevokeErr error
}

// BeginLogin 生成 anti-forgery token 并写入会话
func (s *AuthService) BeginLogin(st *session.State) (string, error) {
	tok, err := s.newToken()
	if err != nil {
		return "", fmt.Errorf("state token: %w", err)
	}
	st.SetStateToken(tok)
	return tok, nil
}

func (s *AuthService) CompleteLogin(ctx context.Context, st *session.State, providerName, code, presentedState string) (*LoginResult, error) {
	if st.StateToken == "" || subtle.ConstantTimeCompare([]byte(st.StateToken), []byte(presentedState)) != 1 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidState, domain.ErrUnauthorized)
	}
	p, ok := s.providers.Get(providerName)
	if !ok {
		return nil, fmt.Errorf("unknown provider %q: %w", providerName, domain.ErrUnauthorized)
	}

	tok, err := p.ExchangeCode(ctx, code)
	if err != nil {
		s.log.Warn("code exchange failed", zap.String("provider", providerName), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", err, domain.ErrUnauthorized)
	}
	info, err := p.IntrospectToken(ctx, tok)
	if err != nil {
		s.log.Warn("token check failed", zap.String("provider", providerName), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", err, domain.ErrUnauthorized)
	}

	if cur := st.Identity; cur != nil && cur.Provider == providerName && cur.ProviderUserID == info.UserID {
		return &LoginResult{Identity: cur, AlreadyConnected: true}, nil
	}

	prof, err := p.FetchProfile(ctx, tok)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w: %w", err, domain.ErrUnauthorized)
	}
	if prof.Email == "" {
		return nil, fmt.Errorf("profile without email: %w", domain.ErrUnauthorized)
	}

	// 不包事务：唯一冲突后需要再查一次
	u, created, err := repo.NewUserRepo(s.db).FindOrCreate(ctx, &domain.User{
		Name:  prof.Name,
		Email: prof.Email,
		Image: prof.Picture,
	})
	if err != nil {
		return nil, err
	}

	id := &session.Identity{
		UserID:         u.ID,
		Username:       prof.Name,
		Email:          prof.Email,
		Picture:        prof.Picture,
		Provider:       providerName,
		AccessToken:    tok.AccessToken,
		ProviderUserID: info.UserID,
	}
	st.SetIdentity(id)
	s.log.Info("login completed",
		zap.String("provider", providerName),
		zap.Uint("user_id", u.ID),
		zap.Bool("new_user", created),
	)
	return &LoginResult{User: u, Identity: id, Created: created}, nil
}

// EndLogin 尽力吊销 provider token，然后清空本地身份
func (s *AuthService) EndLogin(ctx context.Context, st *session.State) (*LogoutResult, error) {
	if !st.Authenticated() {
		return nil, domain.ErrNotConnected
	}
	id := st.Identity
	res := &LogoutResult{Provider: id.Provider}
	if id.AccessToken != "" {
		if p, ok := s.providers.Get(id.Provider); ok {
			res.RevokeErr = p.Revoke(ctx, id.AccessToken, id.ProviderUserID)
		} else {
			res.RevokeErr = fmt.Errorf("unknown provider %q", id.Provider)
		}
		if res.RevokeErr != nil {
			s.log.Warn("token revoke failed", zap.String("provider", id.Provider), zap.Error(res.RevokeErr))
		}
	}
	st.ClearIdentity()
	s.log.Info("logout", zap.String("provider", id.Provider), zap.Uint("user_id", id.UserID))
	return res, nil
}
