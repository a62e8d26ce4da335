package access

import (
	"context"

	"family_hub_server/internal/dao/rdb/repository"
	"family_hub_server/internal/model"
	"family_hub_server/pkg/errorx"
)

// CanViewPost 按可见范围判断用户能否查看动态
// public 所有登录用户可见；family 创建者或任一关联家庭的成员可见；private 仅创建者可见
func CanViewPost(ctx context.Context, repos *repository.Repositories, post *model.Post, familyIDs []string, userID string) (bool, error) {
	if post.CreatedBy == userID {
		return true, nil
	}
	switch post.Privacy {
	case model.PrivacyPublic:
		return true, nil
	case model.PrivacyPrivate:
		return false, nil
	}
	if len(familyIDs) == 0 {
		return false, nil
	}
	members, err := repos.FamilyMember.FindInFamilies(ctx, familyIDs, userID)
	if err != nil {
		return false, err
	}
	return len(members) > 0, nil
}

// RequirePostView 查找动态并校验可见性，返回动态及其关联家庭
func RequirePostView(ctx context.Context, repos *repository.Repositories, postID, userID string) (*model.Post, []string, error) {
	post, err := FindPost(ctx, repos, postID)
	if err != nil {
		return nil, nil, err
	}
	familyIDs, err := repos.PostFamily.FamilyIDsByPost(ctx, post.ID)
	if err != nil {
		return nil, nil, err
	}
	ok, err := CanViewPost(ctx, repos, post, familyIDs, userID)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, errorx.Forbidden(MsgPostDenied)
	}
	return post, familyIDs, nil
}

// IsAdminOfAny 用户是否是任一给定家庭的管理员
func IsAdminOfAny(ctx context.Context, repos *repository.Repositories, familyIDs []string, userID string) (bool, error) {
	if len(familyIDs) == 0 {
		return false, nil
	}
	members, err := repos.FamilyMember.FindInFamilies(ctx, familyIDs, userID)
	if err != nil {
		return false, err
	}
	for i := range members {
		if members[i].IsAdmin() {
			return true, nil
		}
	}
	return false, nil
}
