package model

import (
	"time"

	"gorm.io/gorm"
)

// 邀请状态
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
)

// EventInvitation 邀请非家庭成员参加某个日程
type EventInvitation struct {
	ID        string    `gorm:"column:id;primaryKey;type:char(36)" json:"id"`
	EventID   string    `gorm:"column:event_id;type:char(36);index;not null" json:"eventId"`
	UserID    string    `gorm:"column:user_id;type:char(36);index;not null" json:"userId"`
	InvitedBy string    `gorm:"column:invited_by;type:char(36);index;not null" json:"invitedBy"`
	Message   string    `gorm:"column:message;type:text" json:"message"`
	Status    string    `gorm:"column:status;type:varchar(20);not null" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (EventInvitation) TableName() string {
	return "event_invitations"
}

func (i *EventInvitation) BeforeCreate(tx *gorm.DB) error {
	ensureID(&i.ID)
	if i.Status == "" {
		i.Status = InvitationPending
	}
	return nil
}
