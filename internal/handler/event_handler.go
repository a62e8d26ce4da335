package handler

import (
	"family_hub_server/internal/dto/request"
	"family_hub_server/internal/service"

	"github.com/gin-gonic/gin"
)

// EventHandler 日程、出席和邀请请求处理器
type EventHandler struct {
	eventSvc service.EventService
}

// NewEventHandler 创建日程处理器实例
func NewEventHandler(eventSvc service.EventService) *EventHandler {
	return &EventHandler{eventSvc: eventSvc}
}

// CreateEvent 创建家庭日程
// POST /api/families/:id/events
// 请求体: request.CreateEventRequest
// 响应: 201 { event }
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req request.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	event, err := h.eventSvc.CreateEvent(c.Request.Context(), c.Param("id"), currentUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, gin.H{"event": event})
}

// ListFamilyEvents 家庭日程列表
// GET /api/families/:id/events?from=2024-01-01&to=2024-01-31&category=xxx
func (h *EventHandler) ListFamilyEvents(c *gin.Context) {
	var query request.EventListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		HandleParamError(c, err)
		return
	}
	events, err := h.eventSvc.ListFamilyEvents(c.Request.Context(), c.Param("id"), currentUserID(c), query)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"events": events})
}

// GetEvent GET /api/events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	event, err := h.eventSvc.GetEvent(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"event": event})
}

// UpdateEvent PUT /api/events/:id
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	var req request.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	event, err := h.eventSvc.UpdateEvent(c.Request.Context(), c.Param("id"), currentUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"event": event})
}

// DeleteEvent DELETE /api/events/:id
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	if err := h.eventSvc.DeleteEvent(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		HandleError(c, err)
		return
	}
	HandleMessage(c, "Event deleted")
}

// ManageAttendance 设置自己或他人的出席状态
// POST /api/events/:id/attendees
// 请求体: request.ManageAttendanceRequest
func (h *EventHandler) ManageAttendance(c *gin.Context) {
	var req request.ManageAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	attendee, err := h.eventSvc.ManageAttendance(c.Request.Context(), c.Param("id"), currentUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"attendee": attendee})
}

// ListAttendees GET /api/events/:id/attendees
func (h *EventHandler) ListAttendees(c *gin.Context) {
	attendees, err := h.eventSvc.ListAttendees(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"attendees": attendees})
}

// SendInvitation 邀请家庭外的用户
// POST /api/events/:id/invitations
// 请求体: request.SendInvitationRequest
// 响应: 201 { invitation }
func (h *EventHandler) SendInvitation(c *gin.Context) {
	var req request.SendInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	invitation, err := h.eventSvc.SendInvitation(c.Request.Context(), c.Param("id"), currentUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, gin.H{"invitation": invitation})
}

// ListEventInvitations GET /api/events/:id/invitations
func (h *EventHandler) ListEventInvitations(c *gin.Context) {
	invitations, err := h.eventSvc.ListEventInvitations(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"invitations": invitations})
}

// RespondInvitation 接受或拒绝邀请
// PUT /api/events/:id/invitations/:invitationId
func (h *EventHandler) RespondInvitation(c *gin.Context) {
	var req request.UpdateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	invitation, err := h.eventSvc.RespondInvitation(c.Request.Context(), c.Param("id"), c.Param("invitationId"), currentUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"invitation": invitation})
}

// ListMyInvitations GET /api/invitations
func (h *EventHandler) ListMyInvitations(c *gin.Context) {
	invitations, err := h.eventSvc.ListMyInvitations(c.Request.Context(), currentUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"invitations": invitations})
}
