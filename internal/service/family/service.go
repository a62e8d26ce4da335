// Package family 实现家庭及成员管理
package family

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"family_hub_server/internal/dao/rdb/repository"
	myredis "family_hub_server/internal/dao/redis"
	"family_hub_server/internal/dto/request"
	"family_hub_server/internal/dto/respond"
	"family_hub_server/internal/infrastructure/mq"
	"family_hub_server/internal/model"
	"family_hub_server/internal/service/access"
	"family_hub_server/internal/service/cascade"
	"family_hub_server/internal/service/feed"
	"family_hub_server/pkg/errorx"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const familyListTTL = 10 * time.Minute

// familyService 家庭业务逻辑实现
// 通过构造函数注入 Repository、Cache 和动态发布器
type familyService struct {
	repos    *repository.Repositories
	cache    myredis.AsyncCacheService
	notifier *feed.Notifier
}

// NewFamilyService 构造函数，注入所有依赖
func NewFamilyService(repos *repository.Repositories, cache myredis.AsyncCacheService, notifier *feed.Notifier) *familyService {
	return &familyService{repos: repos, cache: cache, notifier: notifier}
}

// CreateFamily 创建家庭，创建者成为拥有全部权限的管理员
func (s *familyService) CreateFamily(ctx context.Context, userID string, req request.CreateFamilyRequest) (*model.Family, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errorx.BadRequest("Family name is required")
	}
	settings, err := encodeSettings(req.Settings)
	if err != nil {
		return nil, err
	}

	family := &model.Family{
		Name:        name,
		Description: req.Description,
		Settings:    settings,
		CreatedBy:   userID,
	}
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Family.Create(ctx, family); err != nil {
			return err
		}
		return tx.FamilyMember.Create(ctx, &model.FamilyMember{
			FamilyID:    family.ID,
			UserID:      userID,
			Role:        model.FamilyRoleAdmin,
			Permissions: model.PermissionsForRole(model.FamilyRoleAdmin),
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	return family, nil
}

// GetFamily 获取家庭详情，仅成员可见
func (s *familyService) GetFamily(ctx context.Context, familyID, userID string) (*respond.FamilyDetail, error) {
	family, err := access.FindFamily(ctx, s.repos, familyID)
	if err != nil {
		return nil, err
	}
	member, err := access.RequireMember(ctx, s.repos, family.ID, userID)
	if err != nil {
		return nil, err
	}
	members, err := s.memberResponds(ctx, family.ID)
	if err != nil {
		return nil, err
	}
	return &respond.FamilyDetail{
		Family:          family,
		Members:         members,
		UserRole:        member.Role,
		UserPermissions: permissionsOf(member),
	}, nil
}

// ListMyFamilies 获取当前用户所属的全部家庭，结果按用户缓存
func (s *familyService) ListMyFamilies(ctx context.Context, userID string) ([]respond.FamilySummary, error) {
	cacheKey, err := myredis.FamilyListKey(ctx, s.cache, userID)
	if err != nil {
		zap.L().Error("read family list version failed", zap.Error(err))
		cacheKey = ""
	}
	if cacheKey != "" {
		cached, err := s.cache.Get(ctx, cacheKey)
		if err == nil && cached != "" {
			var summaries []respond.FamilySummary
			if err := json.Unmarshal([]byte(cached), &summaries); err == nil {
				return summaries, nil
			}
			zap.L().Error("unmarshal family list cache failed", zap.String("key", cacheKey), zap.Error(err))
		} else if err != nil {
			zap.L().Error("read family list cache failed", zap.Error(err))
		}
	}

	families, err := s.repos.Family.FindByMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	familyIDs := make([]string, 0, len(families))
	for _, f := range families {
		familyIDs = append(familyIDs, f.ID)
	}
	memberships, err := s.repos.FamilyMember.FindInFamilies(ctx, familyIDs, userID)
	if err != nil {
		return nil, err
	}
	byFamily := make(map[string]*model.FamilyMember, len(memberships))
	for i := range memberships {
		byFamily[memberships[i].FamilyID] = &memberships[i]
	}
	counts, err := s.repos.FamilyMember.CountByFamilies(ctx, familyIDs)
	if err != nil {
		return nil, err
	}

	// make 保证序列化为 [] 而不是 null
	summaries := make([]respond.FamilySummary, 0, len(families))
	for _, f := range families {
		summary := respond.FamilySummary{Family: f, MemberCount: int(counts[f.ID])}
		if m, ok := byFamily[f.ID]; ok {
			summary.Role = m.Role
			summary.Permissions = permissionsOf(m)
		}
		summaries = append(summaries, summary)
	}

	if cacheKey == "" {
		return summaries, nil
	}
	s.cache.SubmitTask(func() {
		raw, err := json.Marshal(summaries)
		if err != nil {
			zap.L().Error("marshal family list failed", zap.Error(err))
			return
		}
		if err := s.cache.Set(context.Background(), cacheKey, string(raw), familyListTTL); err != nil {
			zap.L().Error("write family list cache failed", zap.Error(err))
		}
	})
	return summaries, nil
}

// UpdateFamily 更新家庭信息，仅管理员
func (s *familyService) UpdateFamily(ctx context.Context, familyID, userID string, req request.UpdateFamilyRequest) (*model.Family, error) {
	family, err := access.FindFamily(ctx, s.repos, familyID)
	if err != nil {
		return nil, err
	}
	if _, err := access.RequireAdmin(ctx, s.repos, family.ID, userID); err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errorx.BadRequest("Family name cannot be empty")
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Settings != nil {
		settings, err := encodeSettings(req.Settings)
		if err != nil {
			return nil, err
		}
		updates["settings"] = settings
	}
	if len(updates) > 0 {
		if err := s.repos.Family.Update(ctx, family.ID, updates); err != nil {
			return nil, err
		}
		s.invalidateFamily(ctx, family.ID)
	}
	return access.FindFamily(ctx, s.repos, family.ID)
}

// DeleteFamily 删除家庭，仅创建者
func (s *familyService) DeleteFamily(ctx context.Context, familyID, userID string) error {
	family, err := access.FindFamily(ctx, s.repos, familyID)
	if err != nil {
		return err
	}
	if family.CreatedBy != userID {
		return errorx.Forbidden("Only the family creator can delete this family")
	}

	memberIDs, err := s.repos.FamilyMember.ListUserIDs(ctx, family.ID)
	if err != nil {
		return err
	}
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		return cascade.DeleteFamily(ctx, tx, family.ID)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, memberIDs...)
	return nil
}

// ListMembers 成员列表，仅成员可见
func (s *familyService) ListMembers(ctx context.Context, familyID, userID string) ([]respond.MemberRespond, error) {
	family, err := access.FindFamily(ctx, s.repos, familyID)
	if err != nil {
		return nil, err
	}
	if _, err := access.RequireMember(ctx, s.repos, family.ID, userID); err != nil {
		return nil, err
	}
	return s.memberResponds(ctx, family.ID)
}

// AddMember 管理员按邮箱添加成员
func (s *familyService) AddMember(ctx context.Context, familyID, userID string, req request.AddMemberRequest) (*respond.MemberRespond, error) {
	family, err := access.FindFamily(ctx, s.repos, familyID)
	if err != nil {
		return nil, err
	}
	if _, err := access.RequireAdmin(ctx, s.repos, family.ID, userID); err != nil {
		return nil, err
	}

	target, err := s.repos.User.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.NotFound("User not found")
		}
		return nil, err
	}
	existing, err := access.Membership(ctx, s.repos, family.ID, target.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errorx.BadRequest("User is already a member of this family")
	}

	role := req.Role
	if role == "" {
		role = model.FamilyRoleMember
	}
	member := &model.FamilyMember{
		FamilyID:    family.ID,
		UserID:      target.ID,
		Role:        role,
		Permissions: model.PermissionsForRole(role),
	}
	if err := s.repos.FamilyMember.Create(ctx, member); err != nil {
		return nil, err
	}
	// 成员数变化，所有成员的列表都要失效
	s.invalidateFamily(ctx, family.ID)

	s.notifier.Notify(ctx, &mq.Activity{
		Type:       mq.ActivityMemberAdded,
		ActorID:    userID,
		FamilyID:   family.ID,
		Recipients: feed.FamilyRecipients(ctx, s.repos, family.ID),
		Payload: map[string]any{
			"familyName": family.Name,
			"userId":     target.ID,
			"userName":   target.Name,
			"role":       role,
		},
	})
	return &respond.MemberRespond{FamilyMember: *member, User: respond.NewUserBrief(target)}, nil
}

// UpdateMemberRole 管理员修改成员角色，不能降级最后一个管理员
func (s *familyService) UpdateMemberRole(ctx context.Context, familyID, userID, targetID string, req request.UpdateMemberRoleRequest) (*respond.MemberRespond, error) {
	family, err := access.FindFamily(ctx, s.repos, familyID)
	if err != nil {
		return nil, err
	}
	if _, err := access.RequireAdmin(ctx, s.repos, family.ID, userID); err != nil {
		return nil, err
	}
	target, err := s.findTargetMember(ctx, family.ID, targetID)
	if err != nil {
		return nil, err
	}

	if target.IsAdmin() && req.Role != model.FamilyRoleAdmin {
		if err := s.ensureNotLastAdmin(ctx, s.repos, family.ID); err != nil {
			return nil, err
		}
	}
	if target.Role != req.Role {
		if err := s.repos.FamilyMember.UpdateRole(ctx, family.ID, target.UserID, req.Role); err != nil {
			return nil, err
		}
		s.invalidate(ctx, target.UserID)
	}

	updated, err := s.repos.FamilyMember.Find(ctx, family.ID, target.UserID)
	if err != nil {
		return nil, err
	}
	user, err := s.repos.User.FindByID(ctx, target.UserID)
	if err != nil && !errorx.IsNotFound(err) {
		return nil, err
	}
	return &respond.MemberRespond{FamilyMember: *updated, User: respond.NewUserBrief(user)}, nil
}

// RemoveMember 管理员移除成员，创建者和最后一个管理员不可移除
func (s *familyService) RemoveMember(ctx context.Context, familyID, userID, targetID string) error {
	family, err := access.FindFamily(ctx, s.repos, familyID)
	if err != nil {
		return err
	}
	if _, err := access.RequireAdmin(ctx, s.repos, family.ID, userID); err != nil {
		return err
	}
	target, err := s.findTargetMember(ctx, family.ID, targetID)
	if err != nil {
		return err
	}
	return s.removeMember(ctx, family, target)
}

// LeaveFamily 成员主动退出，规则与移除成员一致
func (s *familyService) LeaveFamily(ctx context.Context, familyID, userID string) error {
	family, err := access.FindFamily(ctx, s.repos, familyID)
	if err != nil {
		return err
	}
	member, err := access.RequireMember(ctx, s.repos, family.ID, userID)
	if err != nil {
		return err
	}
	return s.removeMember(ctx, family, member)
}

func (s *familyService) removeMember(ctx context.Context, family *model.Family, target *model.FamilyMember) error {
	if target.UserID == family.CreatedBy {
		return errorx.BadRequest("Cannot remove the family creator")
	}
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if target.IsAdmin() {
			if err := s.ensureNotLastAdmin(ctx, tx, family.ID); err != nil {
				return err
			}
		}
		return tx.FamilyMember.Delete(ctx, family.ID, target.UserID)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, target.UserID)
	s.invalidateFamily(ctx, family.ID)
	return nil
}

// findTargetMember 被操作的成员不存在时返回 404
func (s *familyService) findTargetMember(ctx context.Context, familyID, targetID string) (*model.FamilyMember, error) {
	if !model.IsValidID(targetID) {
		return nil, errorx.NotFound("Member not found")
	}
	member, err := access.Membership(ctx, s.repos, familyID, targetID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, errorx.NotFound("Member not found")
	}
	return member, nil
}

func (s *familyService) ensureNotLastAdmin(ctx context.Context, repos *repository.Repositories, familyID string) error {
	admins, err := repos.FamilyMember.CountByRole(ctx, familyID, model.FamilyRoleAdmin)
	if err != nil {
		return err
	}
	if admins <= 1 {
		return errorx.BadRequest("Cannot remove the last admin of the family")
	}
	return nil
}

func (s *familyService) memberResponds(ctx context.Context, familyID string) ([]respond.MemberRespond, error) {
	members, err := s.repos.FamilyMember.ListByFamily(ctx, familyID)
	if err != nil {
		return nil, err
	}
	userIDs := make([]string, 0, len(members))
	for _, m := range members {
		userIDs = append(userIDs, m.UserID)
	}
	users, err := s.repos.User.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	out := make([]respond.MemberRespond, 0, len(members))
	for _, m := range members {
		out = append(out, respond.MemberRespond{FamilyMember: m, User: respond.NewUserBrief(byID[m.UserID])})
	}
	return out, nil
}

// invalidateFamily 家庭信息变化后清除全部成员的列表缓存
func (s *familyService) invalidateFamily(ctx context.Context, familyID string) {
	ids, err := s.repos.FamilyMember.ListUserIDs(ctx, familyID)
	if err != nil {
		zap.L().Warn("list members for cache invalidation failed", zap.String("family_id", familyID), zap.Error(err))
		return
	}
	s.invalidate(ctx, ids...)
}

func (s *familyService) invalidate(ctx context.Context, userIDs ...string) {
	if len(userIDs) == 0 {
		return
	}
	if err := myredis.InvalidateFamilyLists(ctx, s.cache, userIDs...); err != nil {
		zap.L().Warn("invalidate family list cache failed", zap.Error(err))
	}
}

func permissionsOf(m *model.FamilyMember) []string {
	if len(m.Permissions) == 0 {
		return model.PermissionsForRole(m.Role)
	}
	return m.Permissions
}

func encodeSettings(settings map[string]any) (datatypes.JSON, error) {
	if settings == nil {
		return datatypes.JSON("{}"), nil
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return nil, errorx.BadRequest("Invalid family settings")
	}
	return datatypes.JSON(raw), nil
}
