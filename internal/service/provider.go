// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"time"

	"family_hub_server/internal/dao/rdb/repository"
	myredis "family_hub_server/internal/dao/redis"
	"family_hub_server/internal/infrastructure/mailer"
	"family_hub_server/internal/infrastructure/mq"
	"family_hub_server/internal/service/auth"
	"family_hub_server/internal/service/event"
	"family_hub_server/internal/service/family"
	"family_hub_server/internal/service/feed"
	"family_hub_server/internal/service/media"
	"family_hub_server/internal/service/post"
	"family_hub_server/internal/service/user"
	"family_hub_server/internal/storage"
)

// Dependencies Service 层的全部外部依赖
type Dependencies struct {
	Repos         *repository.Repositories
	Cache         myredis.AsyncCacheService
	Storage       storage.Storage
	Mailer        mailer.Mailer
	Publisher     mq.Publisher
	PresignExpiry time.Duration
}

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层通过它访问各个 Service
type Services struct {
	User   UserService
	Family FamilyService
	Event  EventService
	Post   PostService
	Media  MediaService
}

// NewServices 创建并注入所有 Service 实例
func NewServices(deps Dependencies) *Services {
	authSvc := auth.NewAuthService(deps.Cache)
	notifier := feed.NewNotifier(deps.Publisher)

	return &Services{
		User:   user.NewUserService(deps.Repos, deps.Cache, authSvc, deps.Mailer, deps.Storage),
		Family: family.NewFamilyService(deps.Repos, deps.Cache, notifier),
		Event:  event.NewEventService(deps.Repos, deps.Cache, deps.Mailer, notifier),
		Post:   post.NewPostService(deps.Repos, notifier),
		Media:  media.NewMediaService(deps.Repos, deps.Storage, deps.PresignExpiry),
	}
}
