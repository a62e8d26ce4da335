package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterPublicRoutes 注册无需认证的路由
func (rt *Router) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/users/register", rt.handlers.User.Register)
	rg.POST("/users/login", rt.handlers.User.Login)
	rg.POST("/auth/refresh", rt.handlers.User.RefreshToken)
}

// RegisterUserRoutes 注册用户相关路由（需要认证）
func (rt *Router) RegisterUserRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/logout", rt.handlers.User.Logout)

	userGroup := rg.Group("/users")
	{
		userGroup.GET("", rt.handlers.User.ListUsers) // 仅平台管理员
		userGroup.GET("/profile", rt.handlers.User.GetProfile)
		userGroup.PUT("/profile", rt.handlers.User.UpdateProfile)
		userGroup.DELETE("/profile", rt.handlers.User.DeleteAccount)
	}
}
