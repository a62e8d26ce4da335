// Package repository 定义数据访问层接口和聚合结构
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package repository

import (
	"context"
	"errors"
	"time"

	"family_hub_server/internal/model"
	"family_hub_server/pkg/errorx"

	"gorm.io/gorm"
)

// ==================== 错误包装 ====================

// wrapDBError 包装数据库错误
//   - ErrRecordNotFound -> CodeNotFound
//   - 其他错误 -> CodeDBError
func wrapDBError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrap(err, errorx.CodeNotFound, msg)
	}
	return errorx.Wrap(err, errorx.CodeDBError, msg)
}

// wrapDBErrorf 同 wrapDBError，支持格式化消息
func wrapDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrapf(err, errorx.CodeNotFound, format, args...)
	}
	return errorx.Wrapf(err, errorx.CodeDBError, format, args...)
}

// ==================== 查询参数 ====================

// Page 分页参数，Page 从 1 开始
type Page struct {
	Page     int
	PageSize int
}

// Offset 返回 SQL OFFSET
func (p Page) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// paginate 分页 scope，PageSize <= 0 时不分页
func paginate(p Page) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.PageSize <= 0 {
			return db
		}
		return db.Offset(p.Offset()).Limit(p.PageSize)
	}
}

// EventFilter 日程列表过滤条件
type EventFilter struct {
	From     *time.Time
	To       *time.Time
	Category string
}

// MediaFilter 媒体列表过滤条件
type MediaFilter struct {
	Type string
	Page
}

// ==================== Repository 接口 ====================

// UserRepository 用户数据访问接口
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.User, error)
	// List 分页查询用户，search 对姓名和邮箱做模糊匹配
	List(ctx context.Context, search string, page Page) ([]model.User, int64, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
}

// FamilyRepository 家庭数据访问接口
type FamilyRepository interface {
	FindByID(ctx context.Context, id string) (*model.Family, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Family, error)
	// FindByMember 查询用户所属的全部家庭
	FindByMember(ctx context.Context, userID string) ([]model.Family, error)
	FindIDsByCreator(ctx context.Context, userID string) ([]string, error)
	Create(ctx context.Context, family *model.Family) error
	Update(ctx context.Context, id string, updates map[string]any) error
	Delete(ctx context.Context, id string) error
}

// FamilyMemberRepository 家庭成员关系数据访问接口
type FamilyMemberRepository interface {
	// Find 查找成员关系，不存在返回 CodeNotFound
	Find(ctx context.Context, familyID, userID string) (*model.FamilyMember, error)
	// FindInFamilies 查找用户在给定家庭中的全部成员关系
	FindInFamilies(ctx context.Context, familyIDs []string, userID string) ([]model.FamilyMember, error)
	ListByFamily(ctx context.Context, familyID string) ([]model.FamilyMember, error)
	ListUserIDs(ctx context.Context, familyID string) ([]string, error)
	ListUserIDsInFamilies(ctx context.Context, familyIDs []string) ([]string, error)
	CountByRole(ctx context.Context, familyID, role string) (int64, error)
	CountByFamilies(ctx context.Context, familyIDs []string) (map[string]int64, error)
	Create(ctx context.Context, member *model.FamilyMember) error
	UpdateRole(ctx context.Context, familyID, userID, role string) error
	Delete(ctx context.Context, familyID, userID string) error
	DeleteByFamily(ctx context.Context, familyID string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// EventRepository 日程数据访问接口
type EventRepository interface {
	FindByID(ctx context.Context, id string) (*model.Event, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Event, error)
	ListByFamily(ctx context.Context, familyID string, filter EventFilter) ([]model.Event, error)
	ListIDsByFamily(ctx context.Context, familyID string) ([]string, error)
	Create(ctx context.Context, event *model.Event) error
	Update(ctx context.Context, id string, updates map[string]any) error
	DeleteByIDs(ctx context.Context, ids []string) error
}

// EventAttendeeRepository 出席记录数据访问接口
type EventAttendeeRepository interface {
	Find(ctx context.Context, eventID, userID string) (*model.EventAttendee, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.EventAttendee, error)
	CreateBatch(ctx context.Context, attendees []model.EventAttendee) error
	// Upsert 按 (event_id, user_id) 插入或更新状态，保证每人只有一条记录
	Upsert(ctx context.Context, eventID, userID, status string) error
	DeleteByEvents(ctx context.Context, eventIDs []string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// EventInvitationRepository 日程邀请数据访问接口
type EventInvitationRepository interface {
	FindByID(ctx context.Context, id string) (*model.EventInvitation, error)
	// FindByEventAndUser 查找某人在某日程上的邀请（任意状态）
	FindByEventAndUser(ctx context.Context, eventID, userID string) (*model.EventInvitation, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.EventInvitation, error)
	ListByUser(ctx context.Context, userID string) ([]model.EventInvitation, error)
	Create(ctx context.Context, invitation *model.EventInvitation) error
	UpdateStatus(ctx context.Context, id, status string) error
	DeleteByEvents(ctx context.Context, eventIDs []string) error
	// DeleteByUser 删除用户收到或发出的全部邀请
	DeleteByUser(ctx context.Context, userID string) error
}

// PostRepository 动态数据访问接口
type PostRepository interface {
	FindByID(ctx context.Context, id string) (*model.Post, error)
	// ListByFamily / ListByEvent 按创建时间倒序分页，只返回 viewerID 可见的动态
	ListByFamily(ctx context.Context, familyID, viewerID string, page Page) ([]model.Post, int64, error)
	ListByEvent(ctx context.Context, eventID, viewerID string, page Page) ([]model.Post, int64, error)
	ListIDsByCreator(ctx context.Context, userID string) ([]string, error)
	// MediaURLsByFamily 收集关联到家庭的非 private 动态中引用的媒体 URL
	MediaURLsByFamily(ctx context.Context, familyID string) ([]string, error)
	Create(ctx context.Context, post *model.Post) error
	Update(ctx context.Context, id string, updates map[string]any) error
	DeleteByIDs(ctx context.Context, ids []string) error
}

// PostFamilyRepository 动态-家庭关联数据访问接口
type PostFamilyRepository interface {
	CreateBatch(ctx context.Context, links []model.PostFamily) error
	FamilyIDsByPost(ctx context.Context, postID string) ([]string, error)
	FamilyIDsByPosts(ctx context.Context, postIDs []string) (map[string][]string, error)
	DeleteByPosts(ctx context.Context, postIDs []string) error
	DeleteByFamily(ctx context.Context, familyID string) error
}

// PostEventRepository 动态-日程关联数据访问接口
type PostEventRepository interface {
	CreateBatch(ctx context.Context, links []model.PostEvent) error
	EventIDsByPost(ctx context.Context, postID string) ([]string, error)
	EventIDsByPosts(ctx context.Context, postIDs []string) (map[string][]string, error)
	DeleteByPosts(ctx context.Context, postIDs []string) error
	DeleteByEvents(ctx context.Context, eventIDs []string) error
}

// CommentRepository 评论数据访问接口
type CommentRepository interface {
	FindByID(ctx context.Context, id string) (*model.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]model.Comment, error)
	ListIDsByPosts(ctx context.Context, postIDs []string) ([]string, error)
	ListIDsByUser(ctx context.Context, userID string) ([]string, error)
	ListIDsByParents(ctx context.Context, parentIDs []string) ([]string, error)
	CountByPosts(ctx context.Context, postIDs []string) (map[string]int64, error)
	Create(ctx context.Context, comment *model.Comment) error
	DeleteByIDs(ctx context.Context, ids []string) error
}

// LikeRepository 点赞数据访问接口，目标为动态或评论
type LikeRepository interface {
	Find(ctx context.Context, userID string, target model.LikeTarget) (*model.Like, error)
	CountByTarget(ctx context.Context, target model.LikeTarget) (int64, error)
	CountByTargets(ctx context.Context, kind model.TargetKind, ids []string) (map[string]int64, error)
	// ReactionsByUser 返回用户对一批目标的表态，key 为目标 ID
	ReactionsByUser(ctx context.Context, userID string, kind model.TargetKind, ids []string) (map[string]string, error)
	Create(ctx context.Context, like *model.Like) error
	UpdateReaction(ctx context.Context, id, reaction string) error
	Delete(ctx context.Context, id string) error
	DeleteByTargets(ctx context.Context, kind model.TargetKind, ids []string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// MediaRepository 媒体元数据访问接口
type MediaRepository interface {
	FindByID(ctx context.Context, id string) (*model.Media, error)
	ListByUploader(ctx context.Context, userID string, filter MediaFilter) ([]model.Media, int64, error)
	// ListForFamily 返回 URL 被家庭动态引用或上传时指定了该家庭的媒体
	ListForFamily(ctx context.Context, familyID string, urls []string, filter MediaFilter) ([]model.Media, int64, error)
	Create(ctx context.Context, media *model.Media) error
	Delete(ctx context.Context, id string) error
	DeleteByUploader(ctx context.Context, userID string) error
	ClearFamily(ctx context.Context, familyID string) error
}

// ==================== Repository 聚合 ====================

// Repositories 聚合所有 Repository 实例，Service 层通过此结构访问数据层
type Repositories struct {
	db              *gorm.DB
	User            UserRepository
	Family          FamilyRepository
	FamilyMember    FamilyMemberRepository
	Event           EventRepository
	EventAttendee   EventAttendeeRepository
	EventInvitation EventInvitationRepository
	Post            PostRepository
	PostFamily      PostFamilyRepository
	PostEvent       PostEventRepository
	Comment         CommentRepository
	Like            LikeRepository
	Media           MediaRepository
}

// NewRepositories 基于同一个 *gorm.DB 创建所有 Repository
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:              db,
		User:            NewUserRepository(db),
		Family:          NewFamilyRepository(db),
		FamilyMember:    NewFamilyMemberRepository(db),
		Event:           NewEventRepository(db),
		EventAttendee:   NewEventAttendeeRepository(db),
		EventInvitation: NewEventInvitationRepository(db),
		Post:            NewPostRepository(db),
		PostFamily:      NewPostFamilyRepository(db),
		PostEvent:       NewPostEventRepository(db),
		Comment:         NewCommentRepository(db),
		Like:            NewLikeRepository(db),
		Media:           NewMediaRepository(db),
	}
}

// Transaction 在数据库事务中执行 fn
// fn 返回 nil 时提交，否则回滚；fn 内只能使用 txRepos
func (r *Repositories) Transaction(ctx context.Context, fn func(txRepos *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
