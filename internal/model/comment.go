package model

import (
	"time"

	"gorm.io/gorm"
)

// Comment 动态评论，ParentID 非空时为回复
type Comment struct {
	ID        string    `gorm:"column:id;primaryKey;type:char(36)" json:"id"`
	PostID    string    `gorm:"column:post_id;type:char(36);index;not null" json:"postId"`
	UserID    string    `gorm:"column:user_id;type:char(36);index;not null" json:"userId"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	MediaURL  string    `gorm:"column:media_url;type:varchar(512)" json:"mediaUrl,omitempty"`
	ParentID  *string   `gorm:"column:parent_id;type:char(36);index" json:"parentId"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
