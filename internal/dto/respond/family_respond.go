package respond

import "family_hub_server/internal/model"

// MemberRespond 家庭成员及其用户信息
type MemberRespond struct {
	model.FamilyMember
	User *UserBrief `json:"user,omitempty"`
}

// FamilyDetail 家庭详情，附带当前用户的角色和权限
type FamilyDetail struct {
	Family          *model.Family   `json:"family"`
	Members         []MemberRespond `json:"members"`
	UserRole        string          `json:"userRole"`
	UserPermissions []string        `json:"userPermissions"`
}

// FamilySummary "我的家庭" 列表项
type FamilySummary struct {
	model.Family
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	MemberCount int      `json:"memberCount"`
}
