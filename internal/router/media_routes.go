package router

import (
	"family_hub_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterMediaRoutes 注册媒体路由，上传接口经过大小和类型过滤
func (rt *Router) RegisterMediaRoutes(rg *gin.RouterGroup) {
	mediaGroup := rg.Group("/media")
	{
		mediaGroup.POST("/upload", middleware.UploadFilter(rt.maxUploadMB), rt.handlers.Media.Upload)
		mediaGroup.GET("", rt.handlers.Media.ListMyMedia)
		mediaGroup.GET("/:id", rt.handlers.Media.GetMedia)
		mediaGroup.DELETE("/:id", rt.handlers.Media.DeleteMedia)
	}
}
