package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterEventRoutes 注册日程相关路由
func (rt *Router) RegisterEventRoutes(rg *gin.RouterGroup) {
	eventGroup := rg.Group("/events")
	{
		eventGroup.GET("/:id", rt.handlers.Event.GetEvent)
		eventGroup.PUT("/:id", rt.handlers.Event.UpdateEvent)
		eventGroup.DELETE("/:id", rt.handlers.Event.DeleteEvent)

		// ===== 出席 =====
		eventGroup.GET("/:id/attendees", rt.handlers.Event.ListAttendees)
		eventGroup.POST("/:id/attendees", rt.handlers.Event.ManageAttendance)

		// ===== 邀请 =====
		eventGroup.GET("/:id/invitations", rt.handlers.Event.ListEventInvitations)
		eventGroup.POST("/:id/invitations", rt.handlers.Event.SendInvitation)
		eventGroup.PUT("/:id/invitations/:invitationId", rt.handlers.Event.RespondInvitation)

		eventGroup.GET("/:id/posts", rt.handlers.Post.ListEventPosts)
	}

	rg.GET("/invitations", rt.handlers.Event.ListMyInvitations) // 我收到的邀请
}
