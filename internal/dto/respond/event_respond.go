package respond

import (
	"time"

	"family_hub_server/internal/model"
)

// AttendeeRespond 出席记录及其用户信息
type AttendeeRespond struct {
	model.EventAttendee
	User *UserBrief `json:"user,omitempty"`
}

// EventDetail 日程详情
type EventDetail struct {
	model.Event
	Creator    *UserBrief        `json:"creator,omitempty"`
	Attendees  []AttendeeRespond `json:"attendees"`
	UserStatus string            `json:"userStatus,omitempty"`
}

// EventBrief 嵌入在邀请中的日程摘要
type EventBrief struct {
	ID        string     `json:"id"`
	FamilyID  string     `json:"familyId"`
	Title     string     `json:"title"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// InvitationRespond 邀请及相关用户、日程信息
type InvitationRespond struct {
	model.EventInvitation
	User    *UserBrief  `json:"user,omitempty"`
	Inviter *UserBrief  `json:"inviter,omitempty"`
	Event   *EventBrief `json:"event,omitempty"`
}
