package request

import "time"

// RecurringRule 重复规则
type RecurringRule struct {
	Frequency string     `json:"frequency" binding:"required,oneof=daily weekly monthly yearly"`
	Interval  int        `json:"interval" binding:"omitempty,min=1"`
	EndDate   *time.Time `json:"endDate"`
}

// Reminder 提醒设置，offset 为提前的分钟数
type Reminder struct {
	Type   string `json:"type" binding:"omitempty,oneof=notification email"`
	Offset int    `json:"offset" binding:"min=0"`
}

// CreateEventRequest 创建日程
type CreateEventRequest struct {
	Title       string         `json:"title" binding:"required,max=200"`
	Description string         `json:"description"`
	StartDate   time.Time      `json:"startDate" binding:"required"`
	EndDate     *time.Time     `json:"endDate"`
	Location    string         `json:"location" binding:"max=255"`
	Category    string         `json:"category" binding:"max=50"`
	Recurring   *RecurringRule `json:"recurring"`
	Reminders   []Reminder     `json:"reminders" binding:"omitempty,dive"`
}

// UpdateEventRequest 更新日程，未传的字段保持不变
type UpdateEventRequest struct {
	Title       *string        `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string        `json:"description"`
	StartDate   *time.Time     `json:"startDate"`
	EndDate     *time.Time     `json:"endDate"`
	Location    *string        `json:"location" binding:"omitempty,max=255"`
	Category    *string        `json:"category" binding:"omitempty,max=50"`
	Recurring   *RecurringRule `json:"recurring"`
	Reminders   *[]Reminder    `json:"reminders"`
}

// EventListQuery 日程列表过滤，时间格式 RFC3339 或 2006-01-02
type EventListQuery struct {
	From     string `form:"from"`
	To       string `form:"to"`
	Category string `form:"category"`
}

// ManageAttendanceRequest 设置出席状态，UserID 为空表示自己
type ManageAttendanceRequest struct {
	Status string `json:"status" binding:"required"`
	UserID string `json:"userId"`
}

// SendInvitationRequest 邀请家庭外的用户，UserID 与 Email 二选一
type SendInvitationRequest struct {
	UserID  string `json:"userId"`
	Email   string `json:"email" binding:"omitempty,email"`
	Message string `json:"message" binding:"max=500"`
}

// UpdateInvitationRequest 接受或拒绝邀请
type UpdateInvitationRequest struct {
	Status string `json:"status" binding:"required,oneof=accepted declined"`
}
