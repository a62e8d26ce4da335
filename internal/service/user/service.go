// Package user 实现注册、登录、个人资料和账号注销
package user

import (
	"context"
	"strings"

	"family_hub_server/internal/dao/rdb/repository"
	myredis "family_hub_server/internal/dao/redis"
	"family_hub_server/internal/dto/request"
	"family_hub_server/internal/dto/respond"
	"family_hub_server/internal/infrastructure/mailer"
	"family_hub_server/internal/model"
	"family_hub_server/internal/service/access"
	"family_hub_server/internal/service/auth"
	"family_hub_server/internal/service/cascade"
	"family_hub_server/internal/storage"
	"family_hub_server/pkg/errorx"

	"go.uber.org/zap"
)

// userService 用户业务逻辑实现
type userService struct {
	repos   *repository.Repositories
	cache   myredis.AsyncCacheService
	auth    *auth.Service
	mailer  mailer.Mailer
	storage storage.Storage
}

// NewUserService 构造函数，注入所有依赖
func NewUserService(
	repos *repository.Repositories,
	cache myredis.AsyncCacheService,
	authSvc *auth.Service,
	mail mailer.Mailer,
	store storage.Storage,
) *userService {
	return &userService{repos: repos, cache: cache, auth: authSvc, mailer: mail, storage: store}
}

// Register 注册并直接登录
func (s *userService) Register(ctx context.Context, req request.RegisterRequest) (*respond.AuthRespond, error) {
	email := normalizeEmail(req.Email)
	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}

	user := &model.User{
		Name:        strings.TrimSpace(req.Name),
		Email:       email,
		RawPassword: req.Password,
	}
	if err := s.repos.User.Create(ctx, user); err != nil {
		return nil, err
	}

	rsp, err := s.login(ctx, user)
	if err != nil {
		return nil, err
	}

	name := user.Name
	s.cache.SubmitTask(func() {
		if err := s.mailer.SendWelcome(context.Background(), email, name); err != nil {
			zap.L().Warn("send welcome email failed", zap.String("email", email), zap.Error(err))
		}
	})
	return rsp, nil
}

// Login 邮箱密码登录，邮箱不存在和密码错误返回同样的提示
func (s *userService) Login(ctx context.Context, req request.LoginRequest) (*respond.AuthRespond, error) {
	user, err := s.repos.User.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUnauthorized, "Invalid email or password")
		}
		return nil, err
	}
	if !user.CheckPassword(req.Password) {
		return nil, errorx.New(errorx.CodeUnauthorized, "Invalid email or password")
	}
	return s.login(ctx, user)
}

func (s *userService) login(ctx context.Context, user *model.User) (*respond.AuthRespond, error) {
	accessToken, refreshToken, err := s.auth.IssueTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &respond.AuthRespond{User: user, Token: accessToken, RefreshToken: refreshToken}, nil
}

// RefreshToken 用 Refresh Token 换取新的 Access Token
func (s *userService) RefreshToken(ctx context.Context, req request.RefreshTokenRequest) (*respond.TokenRespond, error) {
	return s.auth.Refresh(ctx, req.RefreshToken)
}

// Logout 注销当前会话
func (s *userService) Logout(ctx context.Context, userID string) error {
	return s.auth.Revoke(ctx, userID)
}

// GetProfile 获取个人资料
func (s *userService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	return access.FindUser(ctx, s.repos, userID)
}

// UpdateProfile 更新个人资料，修改邮箱时校验唯一性
func (s *userService) UpdateProfile(ctx context.Context, userID string, req request.UpdateProfileRequest) (*model.User, error) {
	user, err := access.FindUser(ctx, s.repos, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errorx.BadRequest("Name cannot be empty")
		}
		user.Name = name
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if req.Avatar != nil {
		user.Avatar = strings.TrimSpace(*req.Avatar)
	}
	if req.Password != nil {
		user.RawPassword = *req.Password
	}

	if err := s.repos.User.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers 平台管理员分页查询用户
func (s *userService) ListUsers(ctx context.Context, callerID string, query request.ListUsersQuery) (*respond.UserListRespond, error) {
	caller, err := access.FindUser(ctx, s.repos, callerID)
	if err != nil {
		return nil, err
	}
	if !caller.IsPlatformAdmin() {
		return nil, errorx.Forbidden("Only platform admins can list users")
	}

	page, limit := query.Normalize()
	users, total, err := s.repos.User.List(ctx, strings.TrimSpace(query.Search), repository.Page{Page: page, PageSize: limit})
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = make([]model.User, 0)
	}
	return &respond.UserListRespond{Users: users, Pagination: respond.NewPagination(total, page, limit)}, nil
}

// DeleteAccount 注销账号并级联删除用户产生的全部数据
// 上传文件在事务提交后尽力删除，失败只记录日志
func (s *userService) DeleteAccount(ctx context.Context, userID string) error {
	if _, err := access.FindUser(ctx, s.repos, userID); err != nil {
		return err
	}

	var (
		affected    []string
		storageKeys []string
	)
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		familyIDs := make([]string, 0)
		families, err := tx.Family.FindByMember(ctx, userID)
		if err != nil {
			return err
		}
		for _, f := range families {
			familyIDs = append(familyIDs, f.ID)
		}
		if affected, err = tx.FamilyMember.ListUserIDsInFamilies(ctx, familyIDs); err != nil {
			return err
		}

		if err := tx.Like.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		commentIDs, err := tx.Comment.ListIDsByUser(ctx, userID)
		if err != nil {
			return err
		}
		if err := cascade.DeleteComments(ctx, tx, commentIDs); err != nil {
			return err
		}
		postIDs, err := tx.Post.ListIDsByCreator(ctx, userID)
		if err != nil {
			return err
		}
		if err := cascade.DeletePosts(ctx, tx, postIDs); err != nil {
			return err
		}
		if err := tx.EventAttendee.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.EventInvitation.DeleteByUser(ctx, userID); err != nil {
			return err
		}

		created, err := tx.Family.FindIDsByCreator(ctx, userID)
		if err != nil {
			return err
		}
		for _, familyID := range created {
			if err := cascade.DeleteFamily(ctx, tx, familyID); err != nil {
				return err
			}
		}
		if err := tx.FamilyMember.DeleteByUser(ctx, userID); err != nil {
			return err
		}

		media, _, err := tx.Media.ListByUploader(ctx, userID, repository.MediaFilter{})
		if err != nil {
			return err
		}
		for _, m := range media {
			storageKeys = append(storageKeys, m.StorageKey)
			if m.ThumbKey != "" {
				storageKeys = append(storageKeys, m.ThumbKey)
			}
		}
		if err := tx.Media.DeleteByUploader(ctx, userID); err != nil {
			return err
		}
		return tx.User.Delete(ctx, userID)
	})
	if err != nil {
		return err
	}

	for _, key := range storageKeys {
		if err := s.storage.Delete(ctx, key); err != nil {
			zap.L().Warn("delete blob of removed user failed", zap.String("key", key), zap.Error(err))
		}
	}
	if err := s.auth.Revoke(ctx, userID); err != nil {
		zap.L().Warn("revoke session of removed user failed", zap.Error(err))
	}
	if err := myredis.InvalidateFamilyLists(ctx, s.cache, append(affected, userID)...); err != nil {
		zap.L().Warn("invalidate family list cache failed", zap.Error(err))
	}
	return nil
}

// ensureEmailFree 邮箱已被其他用户占用时返回 400
func (s *userService) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.repos.User.FindByEmail(ctx, email)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return errorx.BadRequest("User already exists with this email")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
