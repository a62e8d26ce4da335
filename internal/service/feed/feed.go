// Package feed 把业务事件转换为家庭动态并发布到消息总线
package feed

import (
	"context"
	"time"

	"family_hub_server/internal/dao/rdb/repository"
	"family_hub_server/internal/infrastructure/mq"

	"go.uber.org/zap"
)

// Notifier 动态发布器，发布失败只记录日志，不影响业务请求
type Notifier struct {
	publisher mq.Publisher
}

// NewNotifier 创建 Notifier，publisher 为 nil 时丢弃所有动态
func NewNotifier(publisher mq.Publisher) *Notifier {
	if publisher == nil {
		publisher = mq.NopPublisher{}
	}
	return &Notifier{publisher: publisher}
}

// Notify 发布动态，接收者中会去掉操作者本人
func (n *Notifier) Notify(ctx context.Context, activity *mq.Activity) {
	recipients := make([]string, 0, len(activity.Recipients))
	seen := make(map[string]struct{}, len(activity.Recipients))
	for _, id := range activity.Recipients {
		if id == activity.ActorID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		recipients = append(recipients, id)
	}
	if len(recipients) == 0 {
		return
	}
	activity.Recipients = recipients
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now()
	}
	if err := n.publisher.Publish(ctx, activity); err != nil {
		zap.L().Warn("publish activity failed", zap.String("type", activity.Type), zap.Error(err))
	}
}

// FamilyRecipients 返回给定家庭的全部成员 ID
// 查询失败时返回空列表，动态推送是尽力而为的
func FamilyRecipients(ctx context.Context, repos *repository.Repositories, familyIDs ...string) []string {
	if len(familyIDs) == 0 {
		return nil
	}
	ids, err := repos.FamilyMember.ListUserIDsInFamilies(ctx, familyIDs)
	if err != nil {
		zap.L().Warn("list activity recipients failed", zap.Strings("family_ids", familyIDs), zap.Error(err))
		return nil
	}
	return ids
}
