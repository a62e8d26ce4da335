package request

// CreateFamilyRequest 创建家庭
type CreateFamilyRequest struct {
	Name        string         `json:"name" binding:"required,max=100"`
	Description string         `json:"description" binding:"max=1000"`
	Settings    map[string]any `json:"settings"`
}

// UpdateFamilyRequest 更新家庭信息
type UpdateFamilyRequest struct {
	Name        *string        `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string        `json:"description" binding:"omitempty,max=1000"`
	Settings    map[string]any `json:"settings"`
}

// AddMemberRequest 通过邮箱添加成员
type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"omitempty,oneof=admin member"`
}

// UpdateMemberRoleRequest 修改成员角色
type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin member"`
}
