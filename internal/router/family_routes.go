package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterFamilyRoutes 注册家庭相关路由
// 家庭下的日程、动态和媒体列表也挂在这里
func (rt *Router) RegisterFamilyRoutes(rg *gin.RouterGroup) {
	familyGroup := rg.Group("/families")
	{
		// ===== 家庭基本操作 =====
		familyGroup.POST("", rt.handlers.Family.CreateFamily)
		familyGroup.GET("", rt.handlers.Family.ListMyFamilies)
		familyGroup.GET("/:id", rt.handlers.Family.GetFamily)
		familyGroup.PUT("/:id", rt.handlers.Family.UpdateFamily)
		familyGroup.DELETE("/:id", rt.handlers.Family.DeleteFamily) // 仅创建者

		// ===== 成员管理 =====
		familyGroup.GET("/:id/members", rt.handlers.Family.ListMembers)
		familyGroup.POST("/:id/members", rt.handlers.Family.AddMember)
		familyGroup.PUT("/:id/members/:userId", rt.handlers.Family.UpdateMemberRole)
		familyGroup.DELETE("/:id/members/:userId", rt.handlers.Family.RemoveMember)
		familyGroup.POST("/:id/leave", rt.handlers.Family.LeaveFamily)

		// ===== 家庭内容 =====
		familyGroup.POST("/:id/events", rt.handlers.Event.CreateEvent)
		familyGroup.GET("/:id/events", rt.handlers.Event.ListFamilyEvents)
		familyGroup.GET("/:id/posts", rt.handlers.Post.ListFamilyPosts)
		familyGroup.GET("/:id/media", rt.handlers.Media.ListFamilyMedia)
	}
}
