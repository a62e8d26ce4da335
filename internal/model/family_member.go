package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 家庭内角色
const (
	FamilyRoleAdmin  = "admin"
	FamilyRoleMember = "member"
)

// 家庭内权限
const (
	PermView          = "view"
	PermPost          = "post"
	PermComment       = "comment"
	PermCreateEvents  = "create_events"
	PermInvite        = "invite"
	PermManageMembers = "manage_members"
	PermManageFamily  = "manage_family"
)

// PermissionsForRole 返回角色对应的默认权限集合
func PermissionsForRole(role string) []string {
	if role == FamilyRoleAdmin {
		return []string{PermView, PermPost, PermComment, PermCreateEvents, PermInvite, PermManageMembers, PermManageFamily}
	}
	return []string{PermView, PermPost, PermComment, PermCreateEvents}
}

// IsValidFamilyRole 校验家庭角色
func IsValidFamilyRole(role string) bool {
	return role == FamilyRoleAdmin || role == FamilyRoleMember
}

// FamilyMember 家庭成员关系，(family_id, user_id) 唯一
type FamilyMember struct {
	ID          string                      `gorm:"column:id;primaryKey;type:char(36)" json:"id"`
	FamilyID    string                      `gorm:"column:family_id;type:char(36);not null;uniqueIndex:idx_family_user" json:"familyId"`
	UserID      string                      `gorm:"column:user_id;type:char(36);not null;uniqueIndex:idx_family_user;index" json:"userId"`
	Role        string                      `gorm:"column:role;type:varchar(20);not null" json:"role"`
	Permissions datatypes.JSONSlice[string] `gorm:"column:permissions" json:"permissions"`
	JoinedAt    time.Time                   `gorm:"column:joined_at" json:"joinedAt"`
}

func (FamilyMember) TableName() string {
	return "family_members"
}

func (m *FamilyMember) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	if m.Permissions == nil {
		m.Permissions = PermissionsForRole(m.Role)
	}
	return nil
}

// IsAdmin 是否为家庭管理员
func (m *FamilyMember) IsAdmin() bool {
	return m.Role == FamilyRoleAdmin
}
