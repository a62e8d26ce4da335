package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 平台角色
const (
	UserRoleUser  = "user"
	UserRoleAdmin = "admin"
)

// User 平台用户
type User struct {
	ID        string    `gorm:"column:id;primaryKey;type:char(36)" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(100);not null" json:"name"`
	Email     string    `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"column:password;type:varchar(100);not null" json:"-"`
	Role      string    `gorm:"column:role;type:varchar(20);not null;default:user" json:"role"`
	Avatar    string    `gorm:"column:avatar;type:varchar(512)" json:"avatar"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`

	// RawPassword 明文密码，不落库，在 BeforeSave 中哈希到 Password
	RawPassword string `gorm:"-" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	ensureID(&u.ID)
	if u.Role == "" {
		u.Role = UserRoleUser
	}
	return nil
}

// BeforeSave 创建和更新前把 RawPassword 哈希后写入 Password
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.RawPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.RawPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.Password = string(hash)
		u.RawPassword = ""
	}
	return nil
}

// CheckPassword 校验明文密码
func (u *User) CheckPassword(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plaintext)) == nil
}

// IsPlatformAdmin 是否为平台管理员（区别于家庭管理员）
func (u *User) IsPlatformAdmin() bool {
	return u.Role == UserRoleAdmin
}
