package model

import (
	"time"

	"gorm.io/gorm"
)

// TargetKind 点赞目标类型
type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

// LikeTarget 点赞目标：动态或评论之一
type LikeTarget struct {
	Kind TargetKind
	ID   string
}

// PostTarget / CommentTarget 构造点赞目标
func PostTarget(postID string) LikeTarget { return LikeTarget{Kind: TargetPost, ID: postID} }

func CommentTarget(commentID string) LikeTarget {
	return LikeTarget{Kind: TargetComment, ID: commentID}
}

// DefaultReaction 未指定表情时的默认值
const DefaultReaction = "like"

// Like 点赞记录，(user_id, target_type, target_id) 唯一
type Like struct {
	ID         string     `gorm:"column:id;primaryKey;type:char(36)" json:"id"`
	UserID     string     `gorm:"column:user_id;type:char(36);not null;uniqueIndex:idx_like_user_target" json:"userId"`
	TargetType TargetKind `gorm:"column:target_type;type:varchar(20);not null;uniqueIndex:idx_like_user_target;index:idx_like_target" json:"targetType"`
	TargetID   string     `gorm:"column:target_id;type:char(36);not null;uniqueIndex:idx_like_user_target;index:idx_like_target" json:"targetId"`
	Reaction   string     `gorm:"column:reaction;type:varchar(20);not null" json:"reaction"`
	CreatedAt  time.Time  `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt  time.Time  `gorm:"column:updated_at" json:"updatedAt"`
}

func (Like) TableName() string {
	return "likes"
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	ensureID(&l.ID)
	return nil
}

// Target 返回记录对应的点赞目标
func (l *Like) Target() LikeTarget {
	return LikeTarget{Kind: l.TargetType, ID: l.TargetID}
}
