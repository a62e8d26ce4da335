// Package handler 提供 HTTP 请求处理器
// 本文件定义 Handler 聚合结构和构造函数
package handler

import (
	"family_hub_server/internal/gateway/websocket"
	"family_hub_server/internal/service"
)

// Handlers 聚合所有 Handler 实例
// Router 层通过此结构访问各个 Handler
type Handlers struct {
	User   *UserHandler
	Family *FamilyHandler
	Event  *EventHandler
	Post   *PostHandler
	Media  *MediaHandler
	Feed   *FeedHandler
}

// NewHandlers 创建并注入所有 Handler 实例
func NewHandlers(svc *service.Services, hub *websocket.Hub) *Handlers {
	return &Handlers{
		User:   NewUserHandler(svc.User),
		Family: NewFamilyHandler(svc.Family),
		Event:  NewEventHandler(svc.Event),
		Post:   NewPostHandler(svc.Post),
		Media:  NewMediaHandler(svc.Media),
		Feed:   NewFeedHandler(hub),
	}
}
