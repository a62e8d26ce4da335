// Package mq 提供家庭动态（Activity）的消息总线
// 支持进程内 Channel 和 Kafka 两种实现，消费端统一投递给 Sink
package mq

import (
	"context"
	"time"
)

// 动态类型
const (
	ActivityMemberAdded  = "family.member_added"
	ActivityEventCreated = "event.created"
	ActivityEventInvited = "event.invited"
	ActivityPostCreated  = "post.created"
	ActivityCommentAdded = "comment.created"
)

// Activity 一条家庭动态，Recipients 为需要推送的用户
type Activity struct {
	Type       string         `json:"type"`
	ActorID    string         `json:"actorId"`
	FamilyID   string         `json:"familyId,omitempty"`
	Recipients []string       `json:"recipients"`
	Payload    map[string]any `json:"payload,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// Publisher Service 层只依赖发布能力
type Publisher interface {
	Publish(ctx context.Context, activity *Activity) error
}

// Sink 动态的最终消费者，例如 WebSocket Hub
type Sink interface {
	Deliver(activity *Activity)
}

// Broker 消息代理，Start 启动消费循环，Close 释放资源
type Broker interface {
	Publisher
	Start()
	Close()
}

// NopPublisher 丢弃所有动态，用于不需要推送的场景
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *Activity) error { return nil }
