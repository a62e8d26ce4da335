// Package access 实现各业务共用的授权检查
// 所有函数接收 Repositories 参数，事务内外均可使用
package access

import (
	"context"

	"family_hub_server/internal/dao/rdb/repository"
	"family_hub_server/internal/model"
	"family_hub_server/pkg/errorx"
)

// 授权失败的提示信息
const (
	MsgNotMember   = "Not authorized to access this family"
	MsgNotAdmin    = "Only family admins can perform this action"
	MsgEventDenied = "Not authorized to access this event"
	MsgPostDenied  = "Not authorized to access this post"
)

// FindUser 查找用户，非法 ID 按不存在处理
func FindUser(ctx context.Context, repos *repository.Repositories, userID string) (*model.User, error) {
	if !model.IsValidID(userID) {
		return nil, errorx.NotFound("User not found")
	}
	user, err := repos.User.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, "User not found")
	}
	return user, nil
}

// FindFamily 查找家庭，非法 ID 按不存在处理
func FindFamily(ctx context.Context, repos *repository.Repositories, familyID string) (*model.Family, error) {
	if !model.IsValidID(familyID) {
		return nil, errorx.NotFound("Family not found")
	}
	family, err := repos.Family.FindByID(ctx, familyID)
	if err != nil {
		return nil, notFoundAs(err, "Family not found")
	}
	return family, nil
}

// FindEvent 查找日程
func FindEvent(ctx context.Context, repos *repository.Repositories, eventID string) (*model.Event, error) {
	if !model.IsValidID(eventID) {
		return nil, errorx.NotFound("Event not found")
	}
	event, err := repos.Event.FindByID(ctx, eventID)
	if err != nil {
		return nil, notFoundAs(err, "Event not found")
	}
	return event, nil
}

// FindPost 查找动态
func FindPost(ctx context.Context, repos *repository.Repositories, postID string) (*model.Post, error) {
	if !model.IsValidID(postID) {
		return nil, errorx.NotFound("Post not found")
	}
	post, err := repos.Post.FindByID(ctx, postID)
	if err != nil {
		return nil, notFoundAs(err, "Post not found")
	}
	return post, nil
}

// Membership 查询成员关系，不存在时返回 nil 而不是错误
func Membership(ctx context.Context, repos *repository.Repositories, familyID, userID string) (*model.FamilyMember, error) {
	member, err := repos.FamilyMember.Find(ctx, familyID, userID)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return member, nil
}

// RequireMember 要求用户是家庭成员，否则 403
func RequireMember(ctx context.Context, repos *repository.Repositories, familyID, userID string) (*model.FamilyMember, error) {
	member, err := Membership(ctx, repos, familyID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, errorx.Forbidden(MsgNotMember)
	}
	return member, nil
}

// RequireAdmin 要求用户是家庭管理员，否则 403
func RequireAdmin(ctx context.Context, repos *repository.Repositories, familyID, userID string) (*model.FamilyMember, error) {
	member, err := RequireMember(ctx, repos, familyID, userID)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeForbidden {
			return nil, errorx.Forbidden(MsgNotAdmin)
		}
		return nil, err
	}
	if !member.IsAdmin() {
		return nil, errorx.Forbidden(MsgNotAdmin)
	}
	return member, nil
}

// notFoundAs 把仓储层的 CodeNotFound 替换成面向调用方的提示
func notFoundAs(err error, msg string) error {
	if errorx.IsNotFound(err) {
		return errorx.NotFound(msg)
	}
	return err
}
