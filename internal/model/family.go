package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Family 家庭
type Family struct {
	ID          string         `gorm:"column:id;primaryKey;type:char(36)" json:"id"`
	Name        string         `gorm:"column:name;type:varchar(100);not null" json:"name"`
	Description string         `gorm:"column:description;type:text" json:"description"`
	Settings    datatypes.JSON `gorm:"column:settings" json:"settings"`
	CreatedBy   string         `gorm:"column:created_by;type:char(36);index;not null" json:"createdBy"`
	CreatedAt   time.Time      `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"column:updated_at" json:"updatedAt"`
}

func (Family) TableName() string {
	return "families"
}

func (f *Family) BeforeCreate(tx *gorm.DB) error {
	ensureID(&f.ID)
	if len(f.Settings) == 0 {
		f.Settings = datatypes.JSON("{}")
	}
	return nil
}
