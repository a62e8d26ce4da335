// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"net/http"

	"family_hub_server/internal/handler"
	"family_hub_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// Router 持有 Handler 聚合和路由相关配置
type Router struct {
	handlers    *handler.Handlers
	maxUploadMB int
}

// NewRouter 创建路由管理器
func NewRouter(handlers *handler.Handlers, maxUploadMB int) *Router {
	return &Router{handlers: handlers, maxUploadMB: maxUploadMB}
}

// RegisterRoutes 注册所有路由
// 除注册、登录、刷新 Token 和健康检查外，/api 下的接口都需要认证
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
	})

	api := r.Group("/api")
	rt.RegisterPublicRoutes(api)

	// WebSocket 无法设置请求头，允许通过 ?token= 认证
	api.GET("/feed/ws", middleware.JWTAuthWithQuery(), rt.handlers.Feed.Connect)

	authed := api.Group("")
	authed.Use(middleware.JWTAuth())
	{
		rt.RegisterUserRoutes(authed)   // 个人资料和用户管理
		rt.RegisterFamilyRoutes(authed) // 家庭和成员
		rt.RegisterEventRoutes(authed)  // 日程、出席和邀请
		rt.RegisterPostRoutes(authed)   // 动态、评论和点赞
		rt.RegisterMediaRoutes(authed)  // 媒体上传
	}
}
