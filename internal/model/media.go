package model

import (
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 媒体类型
const (
	MediaImage    = "image"
	MediaVideo    = "video"
	MediaAudio    = "audio"
	MediaDocument = "document"
)

// MediaTypeFromMIME 按 MIME 类型归类，不支持的类型返回空串
func MediaTypeFromMIME(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	switch {
	case strings.HasPrefix(mime, "image/"):
		return MediaImage
	case strings.HasPrefix(mime, "video/"):
		return MediaVideo
	case strings.HasPrefix(mime, "audio/"):
		return MediaAudio
	case mime == "application/pdf",
		mime == "application/msword",
		mime == "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return MediaDocument
	}
	return ""
}

// Media 上传文件元数据，文件本体位于存储后端
type Media struct {
	ID           string         `gorm:"column:id;primaryKey;type:char(36)" json:"id"`
	URL          string         `gorm:"column:url;type:varchar(512);index;not null" json:"url"`
	ThumbURL     string         `gorm:"column:thumb_url;type:varchar(512)" json:"thumbnailUrl,omitempty"`
	StorageKey   string         `gorm:"column:storage_key;type:varchar(255);not null" json:"-"`
	ThumbKey     string         `gorm:"column:thumb_key;type:varchar(255)" json:"-"`
	Type         string         `gorm:"column:type;type:varchar(20);index;not null" json:"type"`
	MimeType     string         `gorm:"column:mime_type;type:varchar(100)" json:"mimeType"`
	Size         int64          `gorm:"column:size" json:"size"`
	OriginalName string         `gorm:"column:original_name;type:varchar(255)" json:"originalName"`
	Metadata     datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	UploadedByID string         `gorm:"column:uploaded_by_id;type:char(36);index;not null" json:"uploadedById"`
	FamilyID     *string        `gorm:"column:family_id;type:char(36);index" json:"familyId,omitempty"`
	CreatedAt    time.Time      `gorm:"column:created_at;index" json:"createdAt"`
}

func (Media) TableName() string {
	return "media"
}

func (m *Media) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	if len(m.Metadata) == 0 {
		m.Metadata = datatypes.JSON("{}")
	}
	return nil
}

// AllModels 返回需要 AutoMigrate 的全部模型
func AllModels() []any {
	return []any{
		&User{}, &Family{}, &FamilyMember{},
		&Event{}, &EventAttendee{}, &EventInvitation{},
		&Post{}, &PostFamily{}, &PostEvent{},
		&Comment{}, &Like{}, &Media{},
	}
}
