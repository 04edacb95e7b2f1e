package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thepenbook/backend/internal/pkg/auth"
	"github.com/thepenbook/backend/internal/pkg/cache"
	"k8s.io/klog/v2"
)

const revokedTokenPrefix = "revoked:"

// Session 管理员登录结果
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AuthService struct {
	jwt      *auth.JWT
	password *auth.PasswordChecker
	store    cache.Store
}

func NewAuthService(jwt *auth.JWT, password *auth.PasswordChecker, store cache.Store) *AuthService {
	return &AuthService{jwt: jwt, password: password, store: store}
}

func (s *AuthService) Login(ctx context.Context, password string) (*Session, error) {
	if err := s.password.Check(password); err != nil {
		klog.Warningf("管理员登录失败")
		return nil, ErrInvalidPassword
	}
	token, claims, err := s.jwt.Sign()
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	klog.V(6).Infof("管理员已登录: jti=%s", claims.ID)
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify 校验令牌签名、有效期以及是否已注销
func (s *AuthService) Verify(ctx context.Context, token string) (auth.Claims, error) {
	claims, err := s.jwt.Verify(token)
	if err != nil {
		return auth.Claims{}, ErrUnauthorized
	}
	_, revoked, err := s.store.Get(ctx, revokedTokenPrefix+claims.ID)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("check revoked token: %w", err)
	}
	if revoked {
		return auth.Claims{}, ErrUnauthorized
	}
	return claims, nil
}

// Logout 注销令牌直到其自然过期
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.jwt.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return ErrUnauthorized
		}
		return err
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.store.Set(ctx, revokedTokenPrefix+claims.ID, []byte{1}, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	klog.V(6).Infof("管理员已注销: jti=%s", claims.ID)
	return nil
}
