// Package handler 提供 HTTP 请求处理器
// 本文件处理注册、登录、会话和个人资料相关的 API 请求
package handler

import (
	"family_hub_server/internal/dto/request"
	"family_hub_server/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户请求处理器
// 通过构造函数注入 UserService，遵循依赖倒置原则
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建用户处理器实例
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// Register 用户注册
// POST /api/users/register
// 请求体: request.RegisterRequest
// 响应: 201 { user, token, refreshToken }
func (h *UserHandler) Register(c *gin.Context) {
	var req request.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.userSvc.Register(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, gin.H{"user": data.User, "token": data.Token, "refreshToken": data.RefreshToken})
}

// Login 邮箱密码登录
// POST /api/users/login
// 请求体: request.LoginRequest
// 响应: { user, token, refreshToken }
func (h *UserHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.userSvc.Login(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"user": data.User, "token": data.Token, "refreshToken": data.RefreshToken})
}

// RefreshToken 刷新 Access Token
// POST /api/auth/refresh
// 请求体: request.RefreshTokenRequest
// 响应: { token, expiresAt }
//
// 用户在其他设备登录后旧的 Refresh Token 会被拒绝（单点互踢）
func (h *UserHandler) RefreshToken(c *gin.Context) {
	var req request.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.userSvc.RefreshToken(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"token": data.Token, "expiresAt": data.ExpiresAt})
}

// Logout 注销当前会话
// POST /api/auth/logout
func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.userSvc.Logout(c.Request.Context(), currentUserID(c)); err != nil {
		HandleError(c, err)
		return
	}
	HandleMessage(c, "Logged out")
}

// GetProfile 获取个人资料
// GET /api/users/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.userSvc.GetProfile(c.Request.Context(), currentUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"user": user})
}

// UpdateProfile 更新个人资料
// PUT /api/users/profile
// 请求体: request.UpdateProfileRequest
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req request.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	user, err := h.userSvc.UpdateProfile(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"user": user})
}

// DeleteAccount 注销账号
// DELETE /api/users/profile
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	if err := h.userSvc.DeleteAccount(c.Request.Context(), currentUserID(c)); err != nil {
		HandleError(c, err)
		return
	}
	HandleMessage(c, "Account deleted")
}

// ListUsers 平台管理员查询用户
// GET /api/users?page=1&limit=20&search=xxx
func (h *UserHandler) ListUsers(c *gin.Context) {
	var query request.ListUsersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.userSvc.ListUsers(c.Request.Context(), currentUserID(c), query)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"users": data.Users, "pagination": data.Pagination})
}
