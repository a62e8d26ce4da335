// Package respond 定义 HTTP 响应中的业务数据结构
package respond

import (
	"time"

	"family_hub_server/internal/model"
)

// UserBrief 嵌入在其他响应中的用户摘要
type UserBrief struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

// NewUserBrief 由用户模型构造摘要，nil 安全
func NewUserBrief(u *model.User) *UserBrief {
	if u == nil {
		return nil
	}
	return &UserBrief{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar}
}

// AuthRespond 注册/登录响应
type AuthRespond struct {
	User         *model.User `json:"user"`
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
}

// TokenRespond 刷新 Token 响应
type TokenRespond struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Pagination 分页信息
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// NewPagination 计算总页数
func NewPagination(total int64, page, limit int) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Total: total, Page: page, Limit: limit, Pages: pages}
}

// UserListRespond 用户列表
type UserListRespond struct {
	Users      []model.User `json:"users"`
	Pagination Pagination   `json:"pagination"`
}
