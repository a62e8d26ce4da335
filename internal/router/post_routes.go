package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterPostRoutes 注册动态、评论和点赞路由
func (rt *Router) RegisterPostRoutes(rg *gin.RouterGroup) {
	postGroup := rg.Group("/posts")
	{
		postGroup.POST("", rt.handlers.Post.CreatePost)
		postGroup.GET("/:id", rt.handlers.Post.GetPost)
		postGroup.PUT("/:id", rt.handlers.Post.UpdatePost)
		postGroup.DELETE("/:id", rt.handlers.Post.DeletePost)
		postGroup.POST("/:id/like", rt.handlers.Post.LikePost)
		postGroup.GET("/:id/comments", rt.handlers.Post.GetComments)
		postGroup.POST("/:id/comments", rt.handlers.Post.AddComment)
	}

	commentGroup := rg.Group("/comments")
	{
		commentGroup.POST("/:id/like", rt.handlers.Post.LikeComment)
		commentGroup.DELETE("/:id", rt.handlers.Post.DeleteComment)
	}
}
