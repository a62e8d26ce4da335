package access

import (
	"context"

	"family_hub_server/internal/dao/rdb/repository"
	"family_hub_server/internal/model"
	"family_hub_server/pkg/errorx"
)

// EventReach 用户能否接触到某个日程：家庭成员，或持有已接受的邀请
type EventReach struct {
	Member  *model.FamilyMember
	Invited bool
}

// Allowed 是否可访问
func (r EventReach) Allowed() bool {
	return r.Member != nil || r.Invited
}

// CanManage 日程创建者或家庭管理员
func (r EventReach) CanManage(event *model.Event, userID string) bool {
	return event.CreatedBy == userID || (r.Member != nil && r.Member.IsAdmin())
}

// ResolveEventReach 查询用户与日程的关系
func ResolveEventReach(ctx context.Context, repos *repository.Repositories, event *model.Event, userID string) (EventReach, error) {
	var reach EventReach
	member, err := Membership(ctx, repos, event.FamilyID, userID)
	if err != nil {
		return reach, err
	}
	reach.Member = member
	if member != nil {
		return reach, nil
	}

	invitation, err := repos.EventInvitation.FindByEventAndUser(ctx, event.ID, userID)
	if err != nil {
		if errorx.IsNotFound(err) {
			return reach, nil
		}
		return reach, err
	}
	reach.Invited = invitation.Status == model.InvitationAccepted
	return reach, nil
}

// RequireEventReach 要求用户可访问日程，否则 403
func RequireEventReach(ctx context.Context, repos *repository.Repositories, event *model.Event, userID string) (EventReach, error) {
	reach, err := ResolveEventReach(ctx, repos, event, userID)
	if err != nil {
		return reach, err
	}
	if !reach.Allowed() {
		return reach, errorx.Forbidden(MsgEventDenied)
	}
	return reach, nil
}

// RequireEventManager 要求用户是日程创建者或家庭管理员，否则 403
func RequireEventManager(ctx context.Context, repos *repository.Repositories, event *model.Event, userID string) (EventReach, error) {
	reach, err := ResolveEventReach(ctx, repos, event, userID)
	if err != nil {
		return reach, err
	}
	if !reach.CanManage(event, userID) {
		return reach, errorx.Forbidden("Only the event creator or a family admin can perform this action")
	}
	return reach, nil
}
