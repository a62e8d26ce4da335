package handler

import (
	"family_hub_server/internal/dto/request"
	"family_hub_server/internal/service"

	"github.com/gin-gonic/gin"
)

// FamilyHandler 家庭请求处理器
type FamilyHandler struct {
	familySvc service.FamilyService
}

// NewFamilyHandler 创建家庭处理器实例
func NewFamilyHandler(familySvc service.FamilyService) *FamilyHandler {
	return &FamilyHandler{familySvc: familySvc}
}

// CreateFamily 创建家庭，创建者成为管理员
// POST /api/families
// 请求体: request.CreateFamilyRequest
// 响应: 201 { family }
func (h *FamilyHandler) CreateFamily(c *gin.Context) {
	var req request.CreateFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	family, err := h.familySvc.CreateFamily(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, gin.H{"family": family})
}

// ListMyFamilies 我加入的家庭
// GET /api/families
func (h *FamilyHandler) ListMyFamilies(c *gin.Context) {
	families, err := h.familySvc.ListMyFamilies(c.Request.Context(), currentUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"families": families})
}

// GetFamily 家庭详情，包含成员、当前用户角色和权限
// GET /api/families/:id
func (h *FamilyHandler) GetFamily(c *gin.Context) {
	detail, err := h.familySvc.GetFamily(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{
		"family":          detail.Family,
		"members":         detail.Members,
		"userRole":        detail.UserRole,
		"userPermissions": detail.UserPermissions,
	})
}

// UpdateFamily 更新家庭信息
// PUT /api/families/:id
func (h *FamilyHandler) UpdateFamily(c *gin.Context) {
	var req request.UpdateFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	family, err := h.familySvc.UpdateFamily(c.Request.Context(), c.Param("id"), currentUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"family": family})
}

// DeleteFamily 解散家庭
// DELETE /api/families/:id
func (h *FamilyHandler) DeleteFamily(c *gin.Context) {
	if err := h.familySvc.DeleteFamily(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		HandleError(c, err)
		return
	}
	HandleMessage(c, "Family deleted")
}

// ListMembers GET /api/families/:id/members
func (h *FamilyHandler) ListMembers(c *gin.Context) {
	members, err := h.familySvc.ListMembers(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"members": members})
}

// AddMember 通过邮箱添加成员
// POST /api/families/:id/members
// 请求体: request.AddMemberRequest
// 响应: 201 { member }
func (h *FamilyHandler) AddMember(c *gin.Context) {
	var req request.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	member, err := h.familySvc.AddMember(c.Request.Context(), c.Param("id"), currentUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, gin.H{"member": member})
}

// UpdateMemberRole PUT /api/families/:id/members/:userId
func (h *FamilyHandler) UpdateMemberRole(c *gin.Context) {
	var req request.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	member, err := h.familySvc.UpdateMemberRole(c.Request.Context(), c.Param("id"), currentUserID(c), c.Param("userId"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"member": member})
}

// RemoveMember DELETE /api/families/:id/members/:userId
func (h *FamilyHandler) RemoveMember(c *gin.Context) {
	if err := h.familySvc.RemoveMember(c.Request.Context(), c.Param("id"), currentUserID(c), c.Param("userId")); err != nil {
		HandleError(c, err)
		return
	}
	HandleMessage(c, "Member removed")
}

// LeaveFamily POST /api/families/:id/leave
func (h *FamilyHandler) LeaveFamily(c *gin.Context) {
	if err := h.familySvc.LeaveFamily(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		HandleError(c, err)
		return
	}
	HandleMessage(c, "Left family")
}
