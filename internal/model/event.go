package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Event 家庭日程
type Event struct {
	ID          string         `gorm:"column:id;primaryKey;type:char(36)" json:"id"`
	FamilyID    string         `gorm:"column:family_id;type:char(36);index;not null" json:"familyId"`
	Title       string         `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Description string         `gorm:"column:description;type:text" json:"description"`
	StartDate   time.Time      `gorm:"column:start_date;index;not null" json:"startDate"`
	EndDate     *time.Time     `gorm:"column:end_date" json:"endDate,omitempty"`
	Location    string         `gorm:"column:location;type:varchar(255)" json:"location"`
	Category    string         `gorm:"column:category;type:varchar(50);index" json:"category"`
	Recurring   datatypes.JSON `gorm:"column:recurring" json:"recurring,omitempty"`
	Reminders   datatypes.JSON `gorm:"column:reminders" json:"reminders,omitempty"`
	CreatedBy   string         `gorm:"column:created_by;type:char(36);index;not null" json:"createdBy"`
	CreatedAt   time.Time      `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"column:updated_at" json:"updatedAt"`
}

func (Event) TableName() string {
	return "events"
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	ensureID(&e.ID)
	if len(e.Recurring) == 0 {
		e.Recurring = datatypes.JSON("null")
	}
	if len(e.Reminders) == 0 {
		e.Reminders = datatypes.JSON("[]")
	}
	return nil
}
