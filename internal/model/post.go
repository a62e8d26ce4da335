package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 动态可见范围
const (
	PrivacyFamily  = "family"
	PrivacyPublic  = "public"
	PrivacyPrivate = "private"
)

// 动态类型
const (
	PostTypeText  = "text"
	PostTypePhoto = "photo"
	PostTypeVideo = "video"
	PostTypeEvent = "event"
	PostTypeMixed = "mixed"
)

// Post 家庭动态，通过 PostFamily / PostEvent 关联到多个家庭和日程
type Post struct {
	ID        string                      `gorm:"column:id;primaryKey;type:char(36)" json:"id"`
	Content   string                      `gorm:"column:content;type:text" json:"content"`
	MediaURLs datatypes.JSONSlice[string] `gorm:"column:media_urls" json:"mediaUrls"`
	Type      string                      `gorm:"column:type;type:varchar(20);not null" json:"type"`
	Privacy   string                      `gorm:"column:privacy;type:varchar(20);not null" json:"privacy"`
	Tags      datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	Location  string                      `gorm:"column:location;type:varchar(255)" json:"location"`
	CreatedBy string                      `gorm:"column:created_by;type:char(36);index;not null" json:"createdBy"`
	CreatedAt time.Time                   `gorm:"column:created_at;index" json:"createdAt"`
	UpdatedAt time.Time                   `gorm:"column:updated_at" json:"updatedAt"`
}

func (Post) TableName() string {
	return "posts"
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	if p.MediaURLs == nil {
		p.MediaURLs = datatypes.JSONSlice[string]{}
	}
	if p.Tags == nil {
		p.Tags = datatypes.JSONSlice[string]{}
	}
	return nil
}

// PostFamily 动态与家庭的关联
type PostFamily struct {
	PostID   string `gorm:"column:post_id;primaryKey;type:char(36)" json:"postId"`
	FamilyID string `gorm:"column:family_id;primaryKey;type:char(36);index" json:"familyId"`
}

func (PostFamily) TableName() string {
	return "post_families"
}

// PostEvent 动态与日程的关联
type PostEvent struct {
	PostID  string `gorm:"column:post_id;primaryKey;type:char(36)" json:"postId"`
	EventID string `gorm:"column:event_id;primaryKey;type:char(36);index" json:"eventId"`
}

func (PostEvent) TableName() string {
	return "post_events"
}
