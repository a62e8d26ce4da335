package model

import (
	"time"

	"gorm.io/gorm"
)

// 出席状态
const (
	AttendeePending   = "pending"
	AttendeeAttending = "attending"
	AttendeeMaybe     = "maybe"
	AttendeeDeclined  = "declined"
)

// NormalizeAttendeeStatus 校验并归一化出席状态，"accepted" 视为 "attending"
func NormalizeAttendeeStatus(status string) (string, bool) {
	switch status {
	case AttendeePending, AttendeeAttending, AttendeeMaybe, AttendeeDeclined:
		return status, true
	case "accepted":
		return AttendeeAttending, true
	}
	return "", false
}

// EventAttendee 日程出席记录，(event_id, user_id) 唯一
type EventAttendee struct {
	ID        string    `gorm:"column:id;primaryKey;type:char(36)" json:"id"`
	EventID   string    `gorm:"column:event_id;type:char(36);not null;uniqueIndex:idx_event_user" json:"eventId"`
	UserID    string    `gorm:"column:user_id;type:char(36);not null;uniqueIndex:idx_event_user;index" json:"userId"`
	Status    string    `gorm:"column:status;type:varchar(20);not null" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (EventAttendee) TableName() string {
	return "event_attendees"
}

func (a *EventAttendee) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
