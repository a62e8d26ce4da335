// Package auth 管理登录会话：签发双 Token、刷新 Access Token 和注销
// Refresh Token 的 tokenID 存在缓存中，新的登录会覆盖旧值，实现单点互踢
package auth

import (
	"context"

	myredis "family_hub_server/internal/dao/redis"
	"family_hub_server/internal/dto/respond"
	"family_hub_server/pkg/errorx"
	"family_hub_server/pkg/util/jwt"

	"go.uber.org/zap"
)

// Service 认证服务实现
type Service struct {
	cache myredis.CacheService
}

// NewAuthService 创建认证服务实例
func NewAuthService(cache myredis.CacheService) *Service {
	return &Service{cache: cache}
}

// IssueTokens 为用户签发 Access Token 和 Refresh Token
func (s *Service) IssueTokens(ctx context.Context, userID string) (accessToken, refreshToken string, err error) {
	accessToken, err = jwt.GenerateAccessToken(userID)
	if err != nil {
		return "", "", errorx.Wrap(err, errorx.CodeServerBusy, "generate access token")
	}
	refreshToken, tokenID, err := jwt.GenerateRefreshToken(userID)
	if err != nil {
		return "", "", errorx.Wrap(err, errorx.CodeServerBusy, "generate refresh token")
	}
	if err := s.cache.Set(ctx, myredis.KeyUserToken+userID, tokenID, jwt.RefreshExpiry()); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// Refresh 校验 Refresh Token 并签发新的 Access Token
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*respond.TokenRespond, error) {
	claims, err := jwt.ParseToken(refreshToken)
	if err != nil || claims.Subject != jwt.SubjectRefreshToken {
		return nil, errorx.New(errorx.CodeUnauthorized, "Invalid refresh token")
	}

	valid, err := s.ValidateTokenID(ctx, claims.UserID, claims.TokenID)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, errorx.New(errorx.CodeUnauthorized, "Refresh token has been revoked, please log in again")
	}

	accessToken, err := jwt.GenerateAccessToken(claims.UserID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "generate access token")
	}
	parsed, err := jwt.ParseToken(accessToken)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "parse issued access token")
	}
	return &respond.TokenRespond{Token: accessToken, ExpiresAt: parsed.ExpiresAt.Time}, nil
}

// ValidateTokenID 验证 tokenID 是否为该用户当前有效的会话
func (s *Service) ValidateTokenID(ctx context.Context, userID, tokenID string) (bool, error) {
	validTokenID, err := s.cache.Get(ctx, myredis.KeyUserToken+userID)
	if err != nil {
		return false, err
	}
	if validTokenID == "" {
		return false, nil
	}
	return tokenID == validTokenID, nil
}

// Revoke 注销用户会话，之后该用户的 Refresh Token 全部失效
func (s *Service) Revoke(ctx context.Context, userID string) error {
	if err := s.cache.Delete(ctx, myredis.KeyUserToken+userID); err != nil {
		zap.L().Error("revoke user session failed", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}
