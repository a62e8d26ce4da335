// Package cascade 实现跨表的级联删除
// 调用方负责开启事务并传入事务内的 Repositories
package cascade

import (
	"context"

	"family_hub_server/internal/dao/rdb/repository"
	"family_hub_server/internal/model"
)

// DeletePosts 删除动态及其评论（含回复）、点赞和关联行
func DeletePosts(ctx context.Context, repos *repository.Repositories, postIDs []string) error {
	if len(postIDs) == 0 {
		return nil
	}
	commentIDs, err := repos.Comment.ListIDsByPosts(ctx, postIDs)
	if err != nil {
		return err
	}
	if err := repos.Like.DeleteByTargets(ctx, model.TargetComment, commentIDs); err != nil {
		return err
	}
	if err := repos.Comment.DeleteByIDs(ctx, commentIDs); err != nil {
		return err
	}
	if err := repos.Like.DeleteByTargets(ctx, model.TargetPost, postIDs); err != nil {
		return err
	}
	if err := repos.PostFamily.DeleteByPosts(ctx, postIDs); err != nil {
		return err
	}
	if err := repos.PostEvent.DeleteByPosts(ctx, postIDs); err != nil {
		return err
	}
	return repos.Post.DeleteByIDs(ctx, postIDs)
}

// DeleteComments 删除评论及其全部后代回复和这些评论上的点赞
func DeleteComments(ctx context.Context, repos *repository.Repositories, commentIDs []string) error {
	all := make([]string, 0, len(commentIDs))
	seen := make(map[string]struct{})
	frontier := commentIDs
	for len(frontier) > 0 {
		next := make([]string, 0)
		for _, id := range frontier {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			all = append(all, id)
			next = append(next, id)
		}
		if len(next) == 0 {
			break
		}
		children, err := repos.Comment.ListIDsByParents(ctx, next)
		if err != nil {
			return err
		}
		frontier = children
	}
	if len(all) == 0 {
		return nil
	}
	if err := repos.Like.DeleteByTargets(ctx, model.TargetComment, all); err != nil {
		return err
	}
	return repos.Comment.DeleteByIDs(ctx, all)
}

// DeleteEvents 删除日程及其出席记录、邀请和动态关联
func DeleteEvents(ctx context.Context, repos *repository.Repositories, eventIDs []string) error {
	if len(eventIDs) == 0 {
		return nil
	}
	if err := repos.EventAttendee.DeleteByEvents(ctx, eventIDs); err != nil {
		return err
	}
	if err := repos.EventInvitation.DeleteByEvents(ctx, eventIDs); err != nil {
		return err
	}
	if err := repos.PostEvent.DeleteByEvents(ctx, eventIDs); err != nil {
		return err
	}
	return repos.Event.DeleteByIDs(ctx, eventIDs)
}

// DeleteFamily 删除家庭：成员、日程（含级联）、动态关联，并解除媒体与家庭的关联
// 动态本身保留，它们可能还关联着其他家庭
func DeleteFamily(ctx context.Context, repos *repository.Repositories, familyID string) error {
	eventIDs, err := repos.Event.ListIDsByFamily(ctx, familyID)
	if err != nil {
		return err
	}
	if err := DeleteEvents(ctx, repos, eventIDs); err != nil {
		return err
	}
	if err := repos.PostFamily.DeleteByFamily(ctx, familyID); err != nil {
		return err
	}
	if err := repos.Media.ClearFamily(ctx, familyID); err != nil {
		return err
	}
	if err := repos.FamilyMember.DeleteByFamily(ctx, familyID); err != nil {
		return err
	}
	return repos.Family.Delete(ctx, familyID)
}
